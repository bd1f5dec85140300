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

package ingest

import (
	"context"
	"testing"

	einoindexer "github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-lab/internal/model/modeltest"
	"chain-lab/internal/storage/vector"
)

func TestMemoryIndexer_Store(t *testing.T) {
	ctx := context.Background()
	store := vector.NewMemoryStore()
	emb := modeltest.NewHashEmbedder()
	idx, err := NewMemoryIndexer(&MemoryIndexerConfig{
		VectorStore:       store,
		DefaultCollection: "blog",
		BatchSize:         1,
		Embedding:         emb,
	})
	require.NoError(t, err)

	docs := []*schema.Document{
		{ID: "doc1", Content: "hello", MetaData: map[string]any{"publish_year": 2023, "title": "t"}},
		{Content: "world"},
	}
	ids, err := idx.Store(ctx, docs)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, "doc1", ids[0])
	assert.NotEmpty(t, ids[1])

	v, err := store.Get(ctx, "blog", "doc1")
	require.NoError(t, err)
	assert.Len(t, v.Values, emb.Dim)
	assert.Equal(t, "2023", v.Metadata["publish_year"])
	assert.Equal(t, "hello", v.Metadata[vector.ContentKey])
}

func TestMemoryIndexer_SubIndexAndPrecomputed(t *testing.T) {
	ctx := context.Background()
	store := vector.NewMemoryStore()
	idx, err := NewMemoryIndexer(&MemoryIndexerConfig{VectorStore: store})
	require.NoError(t, err)

	d := &schema.Document{ID: "x", Content: "x"}
	d.WithDenseVector([]float64{1, 0})
	_, err = idx.Store(ctx, []*schema.Document{d}, einoindexer.WithSubIndexes([]string{"other"}))
	require.NoError(t, err)
	n, err := store.Count(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = idx.Store(ctx, []*schema.Document{{ID: "y", Content: "no vector"}})
	assert.Error(t, err)
}

func TestMetadataToStrings(t *testing.T) {
	got := MetadataToStrings(map[string]any{
		"s": "a", "i": 7, "f": 1.5, "b": true, "nil": nil, "slice": []int{1},
	})
	assert.Equal(t, map[string]string{"s": "a", "i": "7", "f": "1.5", "b": "true"}, got)
}
