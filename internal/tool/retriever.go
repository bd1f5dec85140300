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

package tool

import (
	"context"

	"github.com/cloudwego/eino/components/retriever"

	"chain-lab/internal/pipeline/query"
)

// RetrieverTool 检索并返回拼接后的文档正文
type RetrieverTool struct {
	r    retriever.Retriever
	name string
	desc string
}

// NewRetrieverTool 以给定名称与描述包装检索器
func NewRetrieverTool(r retriever.Retriever, name, desc string) *RetrieverTool {
	return &RetrieverTool{r: r, name: name, desc: desc}
}

// Name 实现 Tool
func (t *RetrieverTool) Name() string { return t.name }

// Description 实现 Tool
func (t *RetrieverTool) Description() string { return t.desc }

// Schema 实现 Tool
func (t *RetrieverTool) Schema() Schema { return QuerySchema("query to look up in retriever") }

// Execute 实现 Tool
func (t *RetrieverTool) Execute(ctx context.Context, input map[string]any) (ToolResult, error) {
	q := StringArg(input, "query")
	if q == "" {
		return ToolResult{Err: "query 不能为空"}, nil
	}
	docs, err := t.r.Retrieve(ctx, q)
	if err != nil {
		return ToolResult{}, err
	}
	return ToolResult{Content: query.FormatDocs(docs)}, nil
}
