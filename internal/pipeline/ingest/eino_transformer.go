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
	"maps"

	einodoc "github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"chain-lab/internal/splitter"
)

// SplitterTransformer 用 splitter 切分文档，实现 eino document.Transformer；
// 每个切片复制原文档 metadata 并追加 chunk_index
type SplitterTransformer struct {
	splitter splitter.Splitter
}

var _ einodoc.Transformer = (*SplitterTransformer)(nil)

// NewSplitterTransformer 创建切片 Transformer
func NewSplitterTransformer(s splitter.Splitter) *SplitterTransformer {
	return &SplitterTransformer{splitter: s}
}

func (t *SplitterTransformer) Transform(ctx context.Context, src []*schema.Document, opts ...einodoc.TransformerOption) ([]*schema.Document, error) {
	var out []*schema.Document
	for _, d := range src {
		if d == nil {
			continue
		}
		texts, err := t.splitter.SplitText(d.Content)
		if err != nil {
			return nil, fmt.Errorf("切分文档 %s 失败: %w", d.ID, err)
		}
		for i, text := range texts {
			meta := make(map[string]any, len(d.MetaData)+1)
			maps.Copy(meta, d.MetaData)
			meta["chunk_index"] = i
			out = append(out, &schema.Document{
				ID:       uuid.New().String(),
				Content:  text,
				MetaData: meta,
			})
		}
	}
	return out, nil
}
