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

func TestEngine_Split(t *testing.T) {
	e := NewEngine(newWordTokenizer())
	assert.Equal(t, []string{"recursive", "token"}, e.Names())

	chunks, err := e.Split("aaaa bbbb cccc dddd", "recursive", Options{ChunkSize: 10})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[1].Index)
	assert.Equal(t, "cccc dddd", chunks[1].Content)
	assert.Equal(t, 2, chunks[1].TokenCount)
	assert.Equal(t, "recursive", chunks[0].Metadata["splitter"])
	assert.NotEqual(t, chunks[0].ID, chunks[1].ID)

	chunks, err = e.Split("a b c d", "token", Options{ChunkSize: 2})
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestEngine_Unknown(t *testing.T) {
	e := NewEngine(nil)
	_, err := e.Split("x", "semantic", DefaultOptions)
	assert.Error(t, err)
	_, err = e.Split("x", "token", DefaultOptions)
	assert.Error(t, err)
}
