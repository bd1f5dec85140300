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

package einoext

import (
	"context"
	"fmt"

	redisindexer "github.com/cloudwego/eino-ext/components/indexer/redis"
	redisretriever "github.com/cloudwego/eino-ext/components/retriever/redis"
	einoembed "github.com/cloudwego/eino/components/embedding"
	einoindexer "github.com/cloudwego/eino/components/indexer"
	einoretriever "github.com/cloudwego/eino/components/retriever"
	"github.com/redis/go-redis/v9"

	"chain-lab/internal/pipeline/ingest"
	"chain-lab/internal/pipeline/query"
	"chain-lab/internal/storage/vector"
	"chain-lab/pkg/config"
	"chain-lab/pkg/utils"
)

const (
	defaultBatchSize  = 100
	defaultCollection = "default"
)

// Backend 同一集合上的 Indexer 与 Retriever
type Backend struct {
	Indexer   einoindexer.Indexer
	Retriever einoretriever.Retriever
	// Store memory/chromem 时非空
	Store  vector.Store
	closer func() error
}

// Close 释放底层连接
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

// NewBackend 按 cfg.Type 创建 memory | chromem | redis 后端；collection 为空时用 cfg.Collection。
// memory/chromem 每次从空集合开始
func NewBackend(ctx context.Context, cfg config.VectorConfig, collection string, embedder einoembed.Embedder) (*Backend, error) {
	collection = utils.CoalesceString(collection, cfg.Collection, defaultCollection)
	topK := utils.PositiveInt(cfg.TopK, query.DefaultTopK)

	switch cfg.Type {
	case "", "memory", "chromem":
		store, err := vector.NewStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := vector.Reset(ctx, store, collection); err != nil {
			_ = store.Close()
			return nil, err
		}
		idx, err := ingest.NewMemoryIndexer(&ingest.MemoryIndexerConfig{
			VectorStore:       store,
			DefaultCollection: collection,
			BatchSize:         defaultBatchSize,
			Embedding:         embedder,
		})
		if err != nil {
			return nil, err
		}
		ret, err := query.NewMemoryRetriever(&query.MemoryRetrieverConfig{
			VectorStore:  store,
			DefaultIndex: collection,
			DefaultTopK:  topK,
			Embedding:    embedder,
		})
		if err != nil {
			return nil, err
		}
		return &Backend{Indexer: idx, Retriever: ret, Store: store, closer: store.Close}, nil

	case "redis":
		opts, err := RedisOptionsFromVectorConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("redis options: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		if err := EnsureRedisIndex(ctx, client, collection, KeyPrefix(collection), cfg.Dimension); err != nil {
			_ = client.Close()
			return nil, err
		}
		idx, err := redisindexer.NewIndexer(ctx, &redisindexer.IndexerConfig{
			Client:           client,
			KeyPrefix:        KeyPrefix(collection),
			DocumentToHashes: documentToHashes,
			BatchSize:        defaultBatchSize,
			Embedding:        embedder,
		})
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis indexer: %w", err)
		}
		ret, err := redisretriever.NewRetriever(ctx, &redisretriever.RetrieverConfig{
			Client:       client,
			Index:        collection,
			VectorField:  FieldVector,
			ReturnFields: append([]string{FieldContent}, MetadataFields...),
			TopK:         topK,
			Embedding:    embedder,
		})
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis retriever: %w", err)
		}
		return &Backend{Indexer: idx, Retriever: ret, closer: client.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported vector type: %s", cfg.Type)
	}
}
