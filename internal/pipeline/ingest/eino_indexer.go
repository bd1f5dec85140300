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
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	einoindexer "github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"chain-lab/internal/storage/vector"
)

// MemoryIndexer 将文档向量写入 vector.Store（memory 或 chromem），实现 eino indexer.Indexer
type MemoryIndexer struct {
	vectorStore       vector.Store
	defaultCollection string
	batchSize         int
	embedding         embedding.Embedder
}

// MemoryIndexerConfig 配置
type MemoryIndexerConfig struct {
	VectorStore       vector.Store
	DefaultCollection string
	BatchSize         int
	// Embedding 默认 embedder，可被 indexer.WithEmbedding 覆盖
	Embedding embedding.Embedder
}

var _ einoindexer.Indexer = (*MemoryIndexer)(nil)

// NewMemoryIndexer 创建 Indexer
func NewMemoryIndexer(cfg *MemoryIndexerConfig) (*MemoryIndexer, error) {
	if cfg == nil || cfg.VectorStore == nil {
		return nil, fmt.Errorf("MemoryIndexer 需要 VectorStore")
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	collection := cfg.DefaultCollection
	if collection == "" {
		collection = "default"
	}
	return &MemoryIndexer{
		vectorStore:       cfg.VectorStore,
		defaultCollection: collection,
		batchSize:         batchSize,
		embedding:         cfg.Embedding,
	}, nil
}

// Store 批量向量化并写入；文档无 ID 时生成 uuid
func (m *MemoryIndexer) Store(ctx context.Context, docs []*schema.Document, opts ...einoindexer.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	options := einoindexer.GetCommonOptions(&einoindexer.Options{Embedding: m.embedding}, opts...)
	indexName := m.defaultCollection
	if len(options.SubIndexes) > 0 && options.SubIndexes[0] != "" {
		indexName = options.SubIndexes[0]
	}
	if err := vector.EnsureIndex(ctx, m.vectorStore, indexName, 0, "cosine"); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for start := 0; start < len(docs); start += m.batchSize {
		batch := docs[start:min(start+m.batchSize, len(docs))]
		if err := m.embedBatch(ctx, batch, options); err != nil {
			return nil, err
		}
		vecs := make([]*vector.Vector, 0, len(batch))
		for _, doc := range batch {
			if doc == nil {
				continue
			}
			if doc.ID == "" {
				doc.ID = uuid.New().String()
			}
			meta := MetadataToStrings(doc.MetaData)
			meta[vector.ContentKey] = doc.Content
			vecs = append(vecs, &vector.Vector{
				ID:       doc.ID,
				Values:   doc.DenseVector(),
				Metadata: meta,
			})
			ids = append(ids, doc.ID)
		}
		if err := m.vectorStore.Add(ctx, indexName, vecs); err != nil {
			return nil, fmt.Errorf("vector store add: %w", err)
		}
	}
	return ids, nil
}

// embedBatch 对缺少向量的文档一次性调用 embedding
func (m *MemoryIndexer) embedBatch(ctx context.Context, batch []*schema.Document, options *einoindexer.Options) error {
	var texts []string
	var targets []*schema.Document
	for _, doc := range batch {
		if doc != nil && len(doc.DenseVector()) == 0 {
			texts = append(texts, doc.Content)
			targets = append(targets, doc)
		}
	}
	if len(texts) == 0 {
		return nil
	}
	if options.Embedding == nil {
		return fmt.Errorf("doc %s has no vector and no Embedding option", targets[0].ID)
	}
	vecs, err := options.Embedding.EmbedStrings(ctx, texts)
	if err != nil {
		return fmt.Errorf("indexer embedding: %w", err)
	}
	if len(vecs) != len(texts) {
		return fmt.Errorf("indexer embedding: got %d vectors for %d texts", len(vecs), len(texts))
	}
	for i, doc := range targets {
		doc.WithDenseVector(vecs[i])
	}
	return nil
}

// MetadataToStrings 标量 metadata 转为字符串（fmt 格式），向量存储只保存字符串
func MetadataToStrings(meta map[string]any) map[string]string {
	out := make(map[string]string, len(meta)+1)
	for k, v := range meta {
		switch val := v.(type) {
		case nil:
		case string:
			out[k] = val
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, bool:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
