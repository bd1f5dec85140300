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

package chain

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/runtime/session"
)

// ConversationalRAG 按会话保存历史的检索问答
type ConversationalRAG struct {
	chain    *RetrievalChain
	sessions *session.Manager
}

// NewConversationalRAG 创建会话式检索问答
func NewConversationalRAG(chain *RetrievalChain, sessions *session.Manager) *ConversationalRAG {
	return &ConversationalRAG{chain: chain, sessions: sessions}
}

// Invoke 读取会话历史（不存在视为空），问答后追加 Human、AI 两条消息
func (c *ConversationalRAG) Invoke(ctx context.Context, sessionID, input string) (*RetrievalOutput, error) {
	hist, err := c.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out, err := c.chain.Invoke(ctx, RetrievalInput{Input: input, ChatHistory: hist})
	if err != nil {
		return nil, err
	}
	if err := c.sessions.Append(ctx, sessionID, schema.UserMessage(input), schema.AssistantMessage(out.Answer, nil)); err != nil {
		return nil, err
	}
	return out, nil
}

// History 会话当前的消息副本
func (c *ConversationalRAG) History(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	return c.sessions.History(ctx, sessionID)
}
