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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	einoretriever "github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/pipeline/common"
)

// AnalyzerSystemPrompt 查询分析系统提示
const AnalyzerSystemPrompt = "You are an expert at converting user questions into database queries. " +
	"You have access to a database of tutorial videos about a software library for building LLM-powered applications. " +
	"Given a question, return a list of database queries optimized to retrieve the most relevant results.\n\n" +
	"If there are acronyms or words you are not familiar with, do not try to rephrase them."

// Search 结构化检索请求
type Search struct {
	Query       string `json:"query"`
	PublishYear *int   `json:"publish_year"`
}

// String 形如 query='rag agent' publish_year=2023
func (s Search) String() string {
	year := "None"
	if s.PublishYear != nil {
		year = strconv.Itoa(*s.PublishYear)
	}
	return fmt.Sprintf("query=%s publish_year=%s", pyQuote(s.Query), year)
}

func pyQuote(s string) string {
	if strings.Contains(s, "'") && !strings.Contains(s, "\"") {
		return "\"" + s + "\""
	}
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

// SearchToolInfo 绑定给模型的唯一工具
func SearchToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: "Search",
		Desc: "Search over a database of tutorial videos about a software library.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "Similarity search query applied to video transcripts.",
				Required: true,
			},
			"publish_year": {
				Type: schema.Integer,
				Desc: "Year video was published",
			},
		}),
	}
}

// QueryAnalyzer 问题 → Search，prompt → 绑定 Search 工具的模型 → 解析工具参数
type QueryAnalyzer struct {
	runnable compose.Runnable[string, *Search]
}

// NewQueryAnalyzer 编译查询分析链
func NewQueryAnalyzer(ctx context.Context, cm model.ToolCallingChatModel) (*QueryAnalyzer, error) {
	bound, err := cm.WithTools([]*schema.ToolInfo{SearchToolInfo()})
	if err != nil {
		return nil, fmt.Errorf("绑定 Search 工具失败: %w", err)
	}
	tpl := prompt.FromMessages(schema.FString,
		schema.SystemMessage(AnalyzerSystemPrompt),
		schema.UserMessage("{question}"),
	)

	chain := compose.NewChain[string, *Search]()
	chain.
		AppendLambda(compose.InvokableLambda(func(ctx context.Context, q string) (map[string]any, error) {
			return map[string]any{"question": q}, nil
		})).
		AppendChatTemplate(tpl).
		AppendChatModel(bound).
		AppendLambda(compose.InvokableLambda(ParseSearch))

	r, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("编译 query analyzer 失败: %w", err)
	}
	return &QueryAnalyzer{runnable: r}, nil
}

// Invoke 分析一个问题；强制模型调用 Search，不允许直接回复正文
func (a *QueryAnalyzer) Invoke(ctx context.Context, question string) (*Search, error) {
	return a.runnable.Invoke(ctx, question, compose.WithChatModelOption(
		model.WithToolChoice(schema.ToolChoiceForced, SearchToolInfo().Name),
	))
}

// ParseSearch 从第一个工具调用（或正文中的 JSON 对象）解析 Search
func ParseSearch(ctx context.Context, msg *schema.Message) (*Search, error) {
	var raw string
	switch {
	case len(msg.ToolCalls) > 0:
		raw = msg.ToolCalls[0].Function.Arguments
	default:
		start := strings.Index(msg.Content, "{")
		end := strings.LastIndex(msg.Content, "}")
		if start < 0 || end < start {
			return nil, common.NewValidationError("query", "model returned no structured output")
		}
		raw = msg.Content[start : end+1]
	}
	var s Search
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, common.NewValidationError("Search", "invalid arguments: "+err.Error())
	}
	if strings.TrimSpace(s.Query) == "" {
		return nil, common.NewValidationError("query", "field required")
	}
	return &s, nil
}

// RetrieveWithSearch 按 Search 检索，有 publish_year 时作为过滤条件
func RetrieveWithSearch(ctx context.Context, r einoretriever.Retriever, s *Search, opts ...einoretriever.Option) ([]*schema.Document, error) {
	if s.PublishYear != nil {
		opts = append(opts, einoretriever.WithDSLInfo(map[string]any{
			"publish_year": map[string]any{"$eq": *s.PublishYear},
		}))
	}
	docs, err := r.Retrieve(ctx, s.Query, opts...)
	if err != nil {
		return nil, common.NewPipelineError(common.StageRetrieve, "检索失败", err)
	}
	return docs, nil
}
