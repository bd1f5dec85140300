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

// Package modeltest 提供确定性的 ChatModel 与 Embedder，供各包测试使用
package modeltest

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModel 按脚本返回消息的聊天模型
type ChatModel struct {
	mu sync.Mutex
	// Respond 非 nil 时优先使用
	Respond   func(input []*schema.Message) (*schema.Message, error)
	Responses []*schema.Message
	Calls     [][]*schema.Message
	Stops     [][]string
	Tools     []*schema.ToolInfo
	// ToolChoices 每次调用收到的 tool_choice，未设置时为 nil
	ToolChoices  []*schema.ToolChoice
	AllowedTools [][]string
}

var _ model.ToolCallingChatModel = (*ChatModel)(nil)

// NewChatModel 依次返回给定消息
func NewChatModel(responses ...*schema.Message) *ChatModel {
	return &ChatModel{Responses: responses}
}

// Reply 便捷构造 assistant 文本消息
func Reply(content string) *schema.Message {
	return schema.AssistantMessage(content, nil)
}

// ToolCall 便捷构造只含一个工具调用的 assistant 消息
func ToolCall(id, name, args string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       id,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})
}

func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]*schema.Message, len(input))
	copy(cp, input)
	m.Calls = append(m.Calls, cp)
	o := model.GetCommonOptions(&model.Options{}, opts...)
	m.Stops = append(m.Stops, o.Stop)
	m.ToolChoices = append(m.ToolChoices, o.ToolChoice)
	m.AllowedTools = append(m.AllowedTools, o.AllowedToolNames)

	if m.Respond != nil {
		return m.Respond(input)
	}
	if len(m.Responses) == 0 {
		return nil, fmt.Errorf("modeltest: no scripted response for call %d", len(m.Calls))
	}
	out := m.Responses[0]
	m.Responses = m.Responses[1:]
	return out, nil
}

// Stream 将回复按空格切块输出
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	var chunks []*schema.Message
	words := strings.SplitAfter(msg.Content, " ")
	for i, w := range words {
		c := &schema.Message{Role: schema.Assistant, Content: w}
		if i == len(words)-1 {
			c.ToolCalls = msg.ToolCalls
		}
		chunks = append(chunks, c)
	}
	return schema.StreamReaderFromArray(chunks), nil
}

func (m *ChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tools = tools
	return m, nil
}

// CallCount 已发生的调用次数
func (m *ChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// HashEmbedder 词袋哈希向量，相同词越多越相似
type HashEmbedder struct {
	Dim   int
	mu    sync.Mutex
	Texts []string
}

var _ embedding.Embedder = (*HashEmbedder)(nil)

// NewHashEmbedder 默认 256 维
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{Dim: 256}
}

func (e *HashEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	e.mu.Lock()
	e.Texts = append(e.Texts, texts...)
	e.mu.Unlock()

	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = e.Embed(t)
	}
	return out, nil
}

// Embed 计算单条文本向量（单位长度；空文本为全 0 外加一个常量分量）
func (e *HashEmbedder) Embed(text string) []float64 {
	vec := make([]float64, e.Dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[int(h.Sum32())%e.Dim]++
	}
	if len(words) == 0 {
		vec[0] = 1
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
