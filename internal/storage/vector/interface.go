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

	"chain-lab/pkg/errors"
)

// ContentKey 元数据中保存原文的键
const ContentKey = "content"

// Store 向量存储接口
type Store interface {
	// Create 创建向量索引
	Create(ctx context.Context, index *Index) error
	// Add 添加向量（同 ID 覆盖）
	Add(ctx context.Context, indexName string, vectors []*Vector) error
	// Search 搜索向量
	Search(ctx context.Context, indexName string, query []float64, options *SearchOptions) ([]*SearchResult, error)
	// Get 根据 ID 获取向量
	Get(ctx context.Context, indexName string, id string) (*Vector, error)
	// Count 索引内向量数
	Count(ctx context.Context, indexName string) (int, error)
	// Delete 删除向量
	Delete(ctx context.Context, indexName string, id string) error
	// DeleteIndex 删除索引
	DeleteIndex(ctx context.Context, indexName string) error
	// ListIndexes 列出所有索引
	ListIndexes(ctx context.Context) ([]string, error)
	// Close 关闭存储连接
	Close() error
}

// Index 向量索引；Dimension 为 0 时由第一批写入的向量决定
type Index struct {
	Name      string            `json:"name"`
	Dimension int               `json:"dimension"`
	Distance  string            `json:"distance"` // cosine | euclidean
	Metadata  map[string]string `json:"metadata"`
}

// Vector 向量数据
type Vector struct {
	ID       string            `json:"id"`
	Values   []float64         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

// SearchOptions 搜索选项
type SearchOptions struct {
	TopK           int               `json:"top_k"`
	Filter         map[string]string `json:"filter"` // 元数据等值过滤，全部满足才命中
	Threshold      float64           `json:"threshold"`
	IncludeVectors bool              `json:"include_vectors"`
}

// SearchResult 搜索结果
type SearchResult struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata"`
	Values   []float64         `json:"values,omitempty"`
}

// matchFilter 元数据是否满足等值过滤
func matchFilter(meta, filter map[string]string) bool {
	for k, v := range filter {
		if meta == nil || meta[k] != v {
			return false
		}
	}
	return true
}

func errIndexNotFound(name string) error {
	return errors.Wrapf(errors.ErrNotFound, "向量索引 %s", name)
}

func errVectorNotFound(index, id string) error {
	return errors.Wrapf(errors.ErrNotFound, "向量 %s/%s", index, id)
}

func errIndexExists(name string) error {
	return errors.Wrapf(errors.ErrInvalidArg, "向量索引 %s 已存在", name)
}
