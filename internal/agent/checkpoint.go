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

package agent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	_ "modernc.org/sqlite"
)

// Checkpointer 按 thread 保存对话消息
type Checkpointer interface {
	// Get 未保存过的 thread 返回空列表
	Get(ctx context.Context, threadID string) ([]*schema.Message, error)
	Put(ctx context.Context, threadID string, msgs []*schema.Message) error
}

// MemorySaver 内存实现
type MemorySaver struct {
	mu      sync.RWMutex
	threads map[string][]*schema.Message
}

// NewMemorySaver 创建内存版 Checkpointer
func NewMemorySaver() *MemorySaver {
	return &MemorySaver{threads: make(map[string][]*schema.Message)}
}

// Get 实现 Checkpointer，返回副本
func (m *MemorySaver) Get(ctx context.Context, threadID string) ([]*schema.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneMessages(m.threads[threadID]), nil
}

// Put 实现 Checkpointer
func (m *MemorySaver) Put(ctx context.Context, threadID string, msgs []*schema.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads[threadID] = cloneMessages(msgs)
	return nil
}

func cloneMessages(msgs []*schema.Message) []*schema.Message {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]*schema.Message, len(msgs))
	for i, m := range msgs {
		cp := *m
		out[i] = &cp
	}
	return out
}

// SQLiteSaver 每个 thread 一行 JSON
type SQLiteSaver struct {
	db *sql.DB
}

// NewSQLiteSaver 打开 dsn（空则 ":memory:"）并建表
func NewSQLiteSaver(ctx context.Context, dsn string) (*SQLiteSaver, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}
	db.SetMaxOpenConns(1)
	const ddl = `CREATE TABLE IF NOT EXISTS checkpoints (
		thread_id TEXT PRIMARY KEY,
		messages_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize checkpoint schema: %w", err)
	}
	return &SQLiteSaver{db: db}, nil
}

// Get 实现 Checkpointer
func (s *SQLiteSaver) Get(ctx context.Context, threadID string) ([]*schema.Message, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT messages_json FROM checkpoints WHERE thread_id = ?", threadID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", threadID, err)
	}
	var msgs []*schema.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", threadID, err)
	}
	return msgs, nil
}

// Put 实现 Checkpointer
func (s *SQLiteSaver) Put(ctx context.Context, threadID string, msgs []*schema.Message) error {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", threadID, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO checkpoints (thread_id, messages_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET messages_json = excluded.messages_json, updated_at = excluded.updated_at`,
		threadID, string(raw), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", threadID, err)
	}
	return nil
}

// Close 关闭数据库
func (s *SQLiteSaver) Close() error {
	return s.db.Close()
}
