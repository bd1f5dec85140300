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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-lab/internal/model/modeltest"
	"chain-lab/internal/splitter"
	"chain-lab/internal/storage/vector"
)

func TestChain_Ingest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(blogHTML))
	}))
	defer srv.Close()

	ctx := context.Background()
	store := vector.NewMemoryStore()
	idx, err := NewMemoryIndexer(&MemoryIndexerConfig{
		VectorStore: store,
		Embedding:   modeltest.NewHashEmbedder(),
	})
	require.NoError(t, err)
	s, err := splitter.NewRecursiveSplitter(splitter.Options{ChunkSize: 40, ChunkOverlap: 10})
	require.NoError(t, err)

	enriched := 0
	c, err := NewChain(ctx, ChainConfig{
		Loader: NewWebLoader(nil),
		Enrich: func(docs []*schema.Document) error {
			enriched += len(docs)
			return nil
		},
		Transformer: NewSplitterTransformer(s),
		Indexer:     idx,
	})
	require.NoError(t, err)

	ids, err := c.Ingest(ctx, srv.URL)
	require.NoError(t, err)
	assert.Greater(t, len(ids), 1)
	assert.Equal(t, 1, enriched)

	n, err := store.Count(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, len(ids), n)
}

func TestChain_IngestAllSkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(blogHTML))
	}))
	defer srv.Close()

	ctx := context.Background()
	idx, err := NewMemoryIndexer(&MemoryIndexerConfig{
		VectorStore: vector.NewMemoryStore(),
		Embedding:   modeltest.NewHashEmbedder(),
	})
	require.NoError(t, err)
	s, err := splitter.NewRecursiveSplitter(splitter.DefaultOptions)
	require.NoError(t, err)
	c, err := NewChain(ctx, ChainConfig{
		Loader: NewWebLoader(nil),
		Enrich: func(docs []*schema.Document) error {
			if docs[0].MetaData["source"] == srv.URL+"/bad" {
				return errors.New("bad source")
			}
			return nil
		},
		Transformer: NewSplitterTransformer(s),
		Indexer:     idx,
	})
	require.NoError(t, err)

	ids, err := c.IngestAll(ctx, []string{srv.URL + "/bad", srv.URL}, true)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	_, err = c.IngestAll(ctx, []string{srv.URL + "/bad"}, false)
	assert.Error(t, err)
}

func TestNewChain_RequiresComponents(t *testing.T) {
	_, err := NewChain(context.Background(), ChainConfig{})
	assert.Error(t, err)
}
