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

import "fmt"

// Splitter 文本切片器
type Splitter interface {
	// SplitText 将文本切为若干片段，顺序与原文一致
	SplitText(text string) ([]string, error)
	Name() string
}

// Options 切片参数，长度单位由具体切片器决定（字符或 token）
type Options struct {
	ChunkSize    int
	ChunkOverlap int
}

// DefaultOptions 通用默认值
var DefaultOptions = Options{ChunkSize: 4000, ChunkOverlap: 200}

func (o Options) validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", o.ChunkSize)
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap > o.ChunkSize {
		return fmt.Errorf("got a larger chunk overlap (%d) than chunk size (%d), should be smaller", o.ChunkOverlap, o.ChunkSize)
	}
	return nil
}
