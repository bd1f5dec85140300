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

package session

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// Manager 以会话 ID 为键维护对话历史，对应 session_id -> ChatMessageHistory
type Manager struct {
	store Store
	// 串行化同一进程内的读-改-写
	mu sync.Mutex
}

// NewManager 基于 store 创建 Manager
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// History 返回会话历史副本；会话不存在时为空
func (m *Manager) History(ctx context.Context, id string) ([]*schema.Message, error) {
	s, err := m.store.Load(ctx, id)
	if err != nil || s == nil {
		return nil, err
	}
	return s.CopyMessages(), nil
}

// Append 将消息按序追加到会话，会话不存在时以该 id 创建
func (m *Manager) Append(ctx context.Context, id string, msgs ...*schema.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		s = New(id)
	}
	s.AddMessages(msgs...)
	return m.store.Save(ctx, s)
}

// Reset 删除会话
func (m *Manager) Reset(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Delete(ctx, id)
}

// Sessions 当前全部会话 ID
func (m *Manager) Sessions(ctx context.Context) ([]string, error) {
	return m.store.IDs(ctx)
}
