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

package query

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-lab/internal/model/modeltest"
	"chain-lab/internal/pipeline/common"
)

func TestSearch_String(t *testing.T) {
	year := 2023
	assert.Equal(t, "query='RAG' publish_year=2023", Search{Query: "RAG", PublishYear: &year}.String())
	assert.Equal(t, "query='build RAG agent' publish_year=None", Search{Query: "build RAG agent"}.String())
	assert.Equal(t, `query="what's RAG" publish_year=None`, Search{Query: "what's RAG"}.String())
}

func TestParseSearch(t *testing.T) {
	ctx := context.Background()
	s, err := ParseSearch(ctx, modeltest.ToolCall("1", "Search", `{"query":"RAG tutorial","publish_year":2023}`))
	require.NoError(t, err)
	assert.Equal(t, "RAG tutorial", s.Query)
	require.NotNil(t, s.PublishYear)
	assert.Equal(t, 2023, *s.PublishYear)

	s, err = ParseSearch(ctx, modeltest.Reply("Sure: {\"query\": \"rag agent\", \"publish_year\": null}"))
	require.NoError(t, err)
	assert.Nil(t, s.PublishYear)

	_, err = ParseSearch(ctx, modeltest.Reply("no idea"))
	assert.True(t, common.IsValidationError(err))
	_, err = ParseSearch(ctx, modeltest.ToolCall("1", "Search", `{"publish_year":2023}`))
	assert.True(t, common.IsValidationError(err))
}

func TestQueryAnalyzer_RetrieveWithSearch(t *testing.T) {
	ctx := context.Background()
	cm := modeltest.NewChatModel(
		modeltest.ToolCall("call_1", "Search", `{"query":"rag agent","publish_year":2024}`),
	)
	analyzer, err := NewQueryAnalyzer(ctx, cm)
	require.NoError(t, err)
	require.Len(t, cm.Tools, 1)
	assert.Equal(t, "Search", cm.Tools[0].Name)

	s, err := analyzer.Invoke(ctx, "RAG agent videos published in 2024")
	require.NoError(t, err)
	require.Len(t, cm.Calls, 1)
	msgs := cm.Calls[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, AnalyzerSystemPrompt, msgs[0].Content)
	assert.Equal(t, "RAG agent videos published in 2024", msgs[1].Content)
	require.Len(t, cm.ToolChoices, 1)
	require.NotNil(t, cm.ToolChoices[0])
	assert.Equal(t, schema.ToolChoiceForced, *cm.ToolChoices[0])
	assert.Equal(t, []string{"Search"}, cm.AllowedTools[0])

	emb := modeltest.NewHashEmbedder()
	ret, err := NewMemoryRetriever(&MemoryRetrieverConfig{VectorStore: seedStore(t, emb), Embedding: emb})
	require.NoError(t, err)
	docs, err := RetrieveWithSearch(ctx, ret, s)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "build a rag agent with langgraph", docs[0].Content)
}
