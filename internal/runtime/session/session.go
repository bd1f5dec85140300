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

// Package session 会话历史：session_id 到有序对话消息的映射。
package session

import (
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

// Session 单个会话的消息历史
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	mu       sync.RWMutex
	messages []*schema.Message
}

// NewID 生成会话 ID
func NewID() string {
	return "session-" + uuid.New().String()
}

// New 创建空会话，id 为空时分配
func New(id string) *Session {
	if id == "" {
		id = NewID()
	}
	now := time.Now()
	return &Session{ID: id, CreatedAt: now, UpdatedAt: now}
}

// AddMessages 按顺序追加消息，nil 跳过
func (s *Session) AddMessages(msgs ...*schema.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		if m != nil {
			s.messages = append(s.messages, m)
		}
	}
	s.UpdatedAt = time.Now()
}

// CopyMessages 历史的浅拷贝，调用方修改不影响会话
func (s *Session) CopyMessages() []*schema.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return nil
	}
	out := make([]*schema.Message, len(s.messages))
	for i, m := range s.messages {
		cp := *m
		out[i] = &cp
	}
	return out
}

// Len 消息条数
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
