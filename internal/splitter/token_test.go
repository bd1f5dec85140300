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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordTokenizer 以空白分词，测试中替代 BPE 编码
type wordTokenizer struct {
	vocab []string
	index map[string]int
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{index: make(map[string]int)}
}

func (w *wordTokenizer) Encode(text string) []int {
	var ids []int
	for _, f := range strings.Fields(text) {
		id, ok := w.index[f]
		if !ok {
			id = len(w.vocab)
			w.vocab = append(w.vocab, f)
			w.index[f] = id
		}
		ids = append(ids, id)
	}
	return ids
}

func (w *wordTokenizer) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, id := range tokens {
		words[i] = w.vocab[id]
	}
	return strings.Join(words, " ")
}

func TestTokenSplitter_Windows(t *testing.T) {
	s, err := NewTokenSplitter(Options{ChunkSize: 3, ChunkOverlap: 1}, newWordTokenizer())
	require.NoError(t, err)
	got, err := s.SplitText("a b c d e f g")
	require.NoError(t, err)
	assert.Equal(t, []string{"a b c", "c d e", "e f g"}, got)
}

func TestTokenSplitter_ShortAndEmpty(t *testing.T) {
	s, err := NewTokenSplitter(Options{ChunkSize: 10}, newWordTokenizer())
	require.NoError(t, err)

	got, err := s.SplitText("hello world")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world"}, got)

	got, err = s.SplitText("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenSplitter_Invalid(t *testing.T) {
	_, err := NewTokenSplitter(Options{ChunkSize: 3, ChunkOverlap: 3}, newWordTokenizer())
	assert.Error(t, err)
	_, err = NewTokenSplitter(Options{ChunkSize: 3}, nil)
	assert.Error(t, err)
}

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 2, CountTokens(nil, "12345678"))
	assert.Equal(t, 3, CountTokens(newWordTokenizer(), "x y z"))
}
