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

package splitter

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"chain-lab/internal/pipeline/common"
)

// Factory 按参数构造切片器
type Factory func(opts Options) (Splitter, error)

// Engine 切片器注册表
type Engine struct {
	factories map[string]Factory
	tokenizer Tokenizer
}

// NewEngine 创建切片引擎，内置 recursive 与 token；tokenizer 用于 token 切片与 TokenCount
func NewEngine(tokenizer Tokenizer) *Engine {
	e := &Engine{
		factories: make(map[string]Factory),
		tokenizer: tokenizer,
	}
	e.Register("recursive", func(opts Options) (Splitter, error) {
		return NewRecursiveSplitter(opts)
	})
	e.Register("token", func(opts Options) (Splitter, error) {
		return NewTokenSplitter(opts, e.tokenizer)
	})
	return e
}

// Register 注册切片器，同名覆盖
func (e *Engine) Register(name string, f Factory) {
	e.factories[name] = f
}

// Get 按名称与参数构造切片器
func (e *Engine) Get(name string, opts Options) (Splitter, error) {
	f, ok := e.factories[name]
	if !ok {
		return nil, fmt.Errorf("splitter not found: %s", name)
	}
	return f(opts)
}

// Names 已注册切片器名（排序）
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.factories))
	for name := range e.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Split 切片并包装为 Chunk
func (e *Engine) Split(content, name string, opts Options) ([]common.Chunk, error) {
	s, err := e.Get(name, opts)
	if err != nil {
		return nil, err
	}
	texts, err := s.SplitText(content)
	if err != nil {
		return nil, fmt.Errorf("split failed: %w", err)
	}
	chunks := make([]common.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, common.Chunk{
			ID:         uuid.New().String(),
			Content:    text,
			Metadata:   map[string]any{"splitter": s.Name()},
			Index:      i,
			TokenCount: CountTokens(e.tokenizer, text),
		})
	}
	return chunks, nil
}
