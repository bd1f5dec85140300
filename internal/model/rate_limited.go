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

package model

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/splitter"
)

// RateLimitedChatModel 在调用前经过 RateLimiter，token 用 Tokenizer 估算
type RateLimitedChatModel struct {
	inner     model.ToolCallingChatModel
	limiter   *RateLimiter
	tokenizer splitter.Tokenizer
}

var _ model.ToolCallingChatModel = (*RateLimitedChatModel)(nil)

// NewRateLimitedChatModel 包装聊天模型；tokenizer 为 nil 时按字符数估算
func NewRateLimitedChatModel(inner model.ToolCallingChatModel, limiter *RateLimiter, tokenizer splitter.Tokenizer) *RateLimitedChatModel {
	return &RateLimitedChatModel{inner: inner, limiter: limiter, tokenizer: tokenizer}
}

func (m *RateLimitedChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if err := m.limiter.Wait(ctx, m.estimate(input)); err != nil {
		return nil, err
	}
	defer m.limiter.Release()
	return m.inner.Generate(ctx, input, opts...)
}

// Stream 流建立后即释放并发 slot
func (m *RateLimitedChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if err := m.limiter.Wait(ctx, m.estimate(input)); err != nil {
		return nil, err
	}
	defer m.limiter.Release()
	return m.inner.Stream(ctx, input, opts...)
}

func (m *RateLimitedChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	inner, err := m.inner.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &RateLimitedChatModel{inner: inner, limiter: m.limiter, tokenizer: m.tokenizer}, nil
}

func (m *RateLimitedChatModel) estimate(input []*schema.Message) int {
	var sb strings.Builder
	for _, msg := range input {
		sb.WriteString(string(msg.Role))
		sb.WriteString(msg.Content)
	}
	return splitter.CountTokens(m.tokenizer, sb.String())
}
