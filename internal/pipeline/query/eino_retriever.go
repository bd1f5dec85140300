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
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	einoretriever "github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/storage/vector"
	"chain-lab/pkg/metrics"
)

// DefaultTopK 默认返回条数
const DefaultTopK = 4

// MemoryRetriever 基于 vector.Store（memory 或 chromem）的检索器，实现 eino retriever.Retriever；
// retriever.WithDSLInfo 传入的 map 作为元数据等值过滤
type MemoryRetriever struct {
	vectorStore      vector.Store
	defaultIndex     string
	defaultTopK      int
	defaultThreshold float64
	embedding        embedding.Embedder
}

// MemoryRetrieverConfig 配置
type MemoryRetrieverConfig struct {
	VectorStore      vector.Store
	DefaultIndex     string
	DefaultTopK      int
	DefaultThreshold float64
	// Embedding 默认 embedder，可被 retriever.WithEmbedding 覆盖
	Embedding embedding.Embedder
}

var _ einoretriever.Retriever = (*MemoryRetriever)(nil)

// NewMemoryRetriever 创建检索器
func NewMemoryRetriever(cfg *MemoryRetrieverConfig) (*MemoryRetriever, error) {
	if cfg == nil || cfg.VectorStore == nil {
		return nil, fmt.Errorf("MemoryRetriever requires VectorStore")
	}
	idx := cfg.DefaultIndex
	if idx == "" {
		idx = "default"
	}
	topK := cfg.DefaultTopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &MemoryRetriever{
		vectorStore:      cfg.VectorStore,
		defaultIndex:     idx,
		defaultTopK:      topK,
		defaultThreshold: cfg.DefaultThreshold,
		embedding:        cfg.Embedding,
	}, nil
}

func (m *MemoryRetriever) Retrieve(ctx context.Context, query string, opts ...einoretriever.Option) ([]*schema.Document, error) {
	options := einoretriever.GetCommonOptions(&einoretriever.Options{
		Index:          &m.defaultIndex,
		TopK:           &m.defaultTopK,
		ScoreThreshold: &m.defaultThreshold,
		Embedding:      m.embedding,
	}, opts...)

	if options.Embedding == nil {
		return nil, fmt.Errorf("retriever requires an embedder (WithEmbedding)")
	}
	vecs, err := options.Embedding.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("retriever embedding: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding returned empty")
	}

	filter, err := DSLFilter(options.DSLInfo)
	if err != nil {
		return nil, err
	}
	results, err := m.vectorStore.Search(ctx, *options.Index, vecs[0], &vector.SearchOptions{
		TopK:      *options.TopK,
		Threshold: *options.ScoreThreshold,
		Filter:    filter,
	})
	if err != nil {
		return nil, fmt.Errorf("vector store search: %w", err)
	}

	docs := make([]*schema.Document, 0, len(results))
	for _, sr := range results {
		meta := make(map[string]any, len(sr.Metadata))
		for k, v := range sr.Metadata {
			if k != vector.ContentKey {
				meta[k] = v
			}
		}
		d := &schema.Document{
			ID:       sr.ID,
			Content:  sr.Metadata[vector.ContentKey],
			MetaData: meta,
		}
		docs = append(docs, d.WithScore(sr.Score))
	}
	metrics.RetrievalDocs.WithLabelValues(*options.Index).Observe(float64(len(docs)))
	return docs, nil
}

// DSLFilter 将 DSLInfo 转为等值过滤；值可为标量或 {"$eq": 标量}
func DSLFilter(dsl map[string]any) (map[string]string, error) {
	if len(dsl) == 0 {
		return nil, nil
	}
	filter := make(map[string]string, len(dsl))
	for k, v := range dsl {
		if op, ok := v.(map[string]any); ok {
			eq, ok := op["$eq"]
			if !ok || len(op) != 1 {
				return nil, fmt.Errorf("unsupported filter operator for %s: only $eq", k)
			}
			v = eq
		}
		switch v.(type) {
		case string, bool, int, int32, int64, float32, float64:
			filter[k] = strings.TrimSpace(fmt.Sprint(v))
		default:
			return nil, fmt.Errorf("unsupported filter value for %s: %T", k, v)
		}
	}
	return filter, nil
}
