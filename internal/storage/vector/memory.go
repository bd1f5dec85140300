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

package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore 内存向量存储实现
type MemoryStore struct {
	indexes map[string]*index
	mu      sync.RWMutex
}

// index 内存索引；order 保留写入顺序，同分时结果稳定
type index struct {
	index   *Index
	vectors map[string]*Vector
	order   []string
}

// NewMemoryStore 创建新的内存向量存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		indexes: make(map[string]*index),
	}
}

// Create 创建向量索引
func (s *MemoryStore) Create(ctx context.Context, idx *Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.indexes[idx.Name]; exists {
		return errIndexExists(idx.Name)
	}
	cp := *idx
	s.indexes[idx.Name] = &index{
		index:   &cp,
		vectors: make(map[string]*Vector),
	}
	return nil
}

// Add 添加向量
func (s *MemoryStore) Add(ctx context.Context, indexName string, vectors []*Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.indexes[indexName]
	if !exists {
		return errIndexNotFound(indexName)
	}

	for _, v := range vectors {
		if idx.index.Dimension == 0 {
			idx.index.Dimension = len(v.Values)
		}
		if len(v.Values) != idx.index.Dimension {
			return fmt.Errorf("向量维度 %d 与索引维度 %d 不一致", len(v.Values), idx.index.Dimension)
		}
		if _, seen := idx.vectors[v.ID]; !seen {
			idx.order = append(idx.order, v.ID)
		}
		idx.vectors[v.ID] = v
	}
	return nil
}

// Search 搜索向量
func (s *MemoryStore) Search(ctx context.Context, indexName string, query []float64, options *SearchOptions) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.indexes[indexName]
	if !exists {
		return nil, errIndexNotFound(indexName)
	}
	if idx.index.Dimension > 0 && len(query) != idx.index.Dimension {
		return nil, fmt.Errorf("查询向量维度 %d 与索引维度 %d 不一致", len(query), idx.index.Dimension)
	}
	if options == nil {
		options = &SearchOptions{TopK: 4}
	}

	results := make([]*SearchResult, 0, len(idx.order))
	for _, id := range idx.order {
		v := idx.vectors[id]
		if !matchFilter(v.Metadata, options.Filter) {
			continue
		}
		score := similarity(query, v.Values, idx.index.Distance)
		if score < options.Threshold {
			continue
		}
		r := &SearchResult{ID: id, Score: score, Metadata: v.Metadata}
		if options.IncludeVectors {
			r.Values = v.Values
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if options.TopK > 0 && len(results) > options.TopK {
		results = results[:options.TopK]
	}
	return results, nil
}

// Get 根据 ID 获取向量
func (s *MemoryStore) Get(ctx context.Context, indexName string, id string) (*Vector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.indexes[indexName]
	if !exists {
		return nil, errIndexNotFound(indexName)
	}
	v, exists := idx.vectors[id]
	if !exists {
		return nil, errVectorNotFound(indexName, id)
	}
	return v, nil
}

// Count 索引内向量数
func (s *MemoryStore) Count(ctx context.Context, indexName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, exists := s.indexes[indexName]
	if !exists {
		return 0, errIndexNotFound(indexName)
	}
	return len(idx.vectors), nil
}

// Delete 删除向量
func (s *MemoryStore) Delete(ctx context.Context, indexName string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.indexes[indexName]
	if !exists {
		return errIndexNotFound(indexName)
	}
	if _, exists := idx.vectors[id]; !exists {
		return errVectorNotFound(indexName, id)
	}
	delete(idx.vectors, id)
	for i, oid := range idx.order {
		if oid == id {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteIndex 删除索引
func (s *MemoryStore) DeleteIndex(ctx context.Context, indexName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.indexes[indexName]; !exists {
		return errIndexNotFound(indexName)
	}
	delete(s.indexes, indexName)
	return nil
}

// ListIndexes 列出所有索引（按名称排序）
func (s *MemoryStore) ListIndexes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close 关闭存储连接
func (s *MemoryStore) Close() error {
	return nil
}

// similarity 计算向量相似度，越大越相近
func similarity(a, b []float64, distance string) float64 {
	if len(a) != len(b) {
		return 0
	}
	if distance == "euclidean" {
		sum := 0.0
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return 1.0 / (1.0 + math.Sqrt(sum))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
