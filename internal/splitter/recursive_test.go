// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package splitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecursiveSplitter_SplitText(t *testing.T) {
	cases := []struct {
		name    string
		opts    Options
		text    string
		want    []string
	}{
		{"short", Options{ChunkSize: 10}, "short", []string{"short"}},
		{"empty", Options{ChunkSize: 10}, "", nil},
		{"words", Options{ChunkSize: 10}, "aaaa bbbb cccc dddd", []string{"aaaa bbbb", "cccc dddd"}},
		{"overlap", Options{ChunkSize: 10, ChunkOverlap: 5}, "aaaa bbbb cccc dddd", []string{"aaaa bbbb", "bbbb cccc", "cccc dddd"}},
		{"recurse into paragraph", Options{ChunkSize: 10}, "hello world\n\nfoo", []string{"hello", "world", "foo"}},
		{"runes", Options{ChunkSize: 2}, "勞工契約", []string{"勞工", "契約"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewRecursiveSplitter(tc.opts)
			require.NoError(t, err)
			got, err := s.SplitText(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRecursiveSplitter_ChunksWithinSize(t *testing.T) {
	s, err := NewRecursiveSplitter(Options{ChunkSize: 50, ChunkOverlap: 10})
	require.NoError(t, err)
	text := "Task decomposition breaks a hard task into smaller steps.\n\n" +
		"Chain of thought prompts the model to think step by step.\n" +
		"Tree of thoughts explores multiple reasoning possibilities at each step."
	chunks, err := s.SplitText(text)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, length(c), 50, c)
		assert.Equal(t, c, trim(c))
	}
}

func TestRecursiveSplitter_InvalidOptions(t *testing.T) {
	_, err := NewRecursiveSplitter(Options{ChunkSize: 0})
	assert.Error(t, err)
	_, err = NewRecursiveSplitter(Options{ChunkSize: 10, ChunkOverlap: 20})
	assert.Error(t, err)
}

func TestSplitKeepingSeparator(t *testing.T) {
	assert.Equal(t, []string{"a", "\nb", "\nc"}, splitKeepingSeparator("a\nb\nc", "\n"))
	assert.Equal(t, []string{"\na"}, splitKeepingSeparator("\na", "\n"))
	assert.Equal(t, []string{"x", "y"}, splitKeepingSeparator("xy", ""))
}

func trim(s string) string {
	text, _ := join([]string{s}, "")
	return text
}
