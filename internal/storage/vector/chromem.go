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
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/philippgille/chromem-go"
)

// ChromemStore 基于 chromem-go 的嵌入式向量存储，可选文件持久化
type ChromemStore struct {
	db      *chromem.DB
	indexes map[string]*Index
	mu      sync.RWMutex
}

// precomputed chromem 要求的 embedding 函数；本存储只接收已计算好的向量
func precomputed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("chromem: embedding must be precomputed")
}

// NewChromemStore 创建 chromem 存储；persistPath 为空时纯内存
func NewChromemStore(persistPath string) (*ChromemStore, error) {
	db := chromem.NewDB()
	if persistPath != "" {
		if err := os.MkdirAll(filepath.Dir(persistPath), 0755); err != nil {
			return nil, fmt.Errorf("创建持久化目录失败: %w", err)
		}
		var err error
		db, err = chromem.NewPersistentDB(persistPath, false)
		if err != nil {
			return nil, fmt.Errorf("打开 chromem 数据库失败: %w", err)
		}
	}
	s := &ChromemStore{db: db, indexes: make(map[string]*Index)}
	for name := range db.ListCollections() {
		s.indexes[name] = &Index{Name: name, Distance: "cosine"}
	}
	return s, nil
}

// Create 创建向量索引（chromem 仅支持 cosine）
func (s *ChromemStore) Create(ctx context.Context, idx *Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.indexes[idx.Name]; exists {
		return errIndexExists(idx.Name)
	}
	if idx.Distance != "" && idx.Distance != "cosine" {
		return fmt.Errorf("chromem: unsupported distance %s", idx.Distance)
	}
	if _, err := s.db.CreateCollection(idx.Name, idx.Metadata, precomputed); err != nil {
		return fmt.Errorf("创建集合失败: %w", err)
	}
	cp := *idx
	cp.Distance = "cosine"
	s.indexes[idx.Name] = &cp
	return nil
}

func (s *ChromemStore) collection(name string) (*chromem.Collection, *Index, error) {
	idx, exists := s.indexes[name]
	if !exists {
		return nil, nil, errIndexNotFound(name)
	}
	col := s.db.GetCollection(name, precomputed)
	if col == nil {
		return nil, nil, errIndexNotFound(name)
	}
	return col, idx, nil
}

// Add 添加向量；Metadata[ContentKey] 作为文档原文
func (s *ChromemStore) Add(ctx context.Context, indexName string, vectors []*Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, idx, err := s.collection(indexName)
	if err != nil {
		return err
	}
	docs := make([]chromem.Document, 0, len(vectors))
	for _, v := range vectors {
		if idx.Dimension == 0 {
			idx.Dimension = len(v.Values)
		}
		if len(v.Values) != idx.Dimension {
			return fmt.Errorf("向量维度 %d 与索引维度 %d 不一致", len(v.Values), idx.Dimension)
		}
		docs = append(docs, chromem.Document{
			ID:        v.ID,
			Content:   v.Metadata[ContentKey],
			Metadata:  v.Metadata,
			Embedding: toFloat32(v.Values),
		})
	}
	if len(docs) == 0 {
		return nil
	}
	return col.AddDocuments(ctx, docs, runtime.NumCPU())
}

// Search 搜索向量；TopK 超过集合大小时按集合大小截断
func (s *ChromemStore) Search(ctx context.Context, indexName string, query []float64, options *SearchOptions) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, _, err := s.collection(indexName)
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = &SearchOptions{TopK: 4}
	}
	n := col.Count()
	if options.TopK > 0 && options.TopK < n {
		n = options.TopK
	}
	if n == 0 {
		return nil, nil
	}

	var where map[string]string
	if len(options.Filter) > 0 {
		where = options.Filter
	}

	res, err := col.QueryEmbedding(ctx, toFloat32(query), n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem 查询失败: %w", err)
	}
	out := make([]*SearchResult, 0, len(res))
	for _, r := range res {
		score := float64(r.Similarity)
		if score < options.Threshold {
			continue
		}
		sr := &SearchResult{ID: r.ID, Score: score, Metadata: r.Metadata}
		if options.IncludeVectors {
			sr.Values = toFloat64(r.Embedding)
		}
		out = append(out, sr)
	}
	return out, nil
}

// Get 根据 ID 获取向量
func (s *ChromemStore) Get(ctx context.Context, indexName string, id string) (*Vector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, _, err := s.collection(indexName)
	if err != nil {
		return nil, err
	}
	doc, err := col.GetByID(ctx, id)
	if err != nil {
		return nil, errVectorNotFound(indexName, id)
	}
	return &Vector{ID: doc.ID, Values: toFloat64(doc.Embedding), Metadata: doc.Metadata}, nil
}

// Count 索引内向量数
func (s *ChromemStore) Count(ctx context.Context, indexName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, _, err := s.collection(indexName)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

// Delete 删除向量
func (s *ChromemStore) Delete(ctx context.Context, indexName string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, _, err := s.collection(indexName)
	if err != nil {
		return err
	}
	if _, err := col.GetByID(ctx, id); err != nil {
		return errVectorNotFound(indexName, id)
	}
	return col.Delete(ctx, nil, nil, id)
}

// DeleteIndex 删除索引
func (s *ChromemStore) DeleteIndex(ctx context.Context, indexName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.indexes[indexName]; !exists {
		return errIndexNotFound(indexName)
	}
	if err := s.db.DeleteCollection(indexName); err != nil {
		return fmt.Errorf("删除集合失败: %w", err)
	}
	delete(s.indexes, indexName)
	return nil
}

// ListIndexes 列出所有索引（按名称排序）
func (s *ChromemStore) ListIndexes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close 关闭存储
func (s *ChromemStore) Close() error {
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
