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

// TokenSplitter 按 token 窗口切片：每块 ChunkSize 个 token，步长 ChunkSize-ChunkOverlap
type TokenSplitter struct {
	opts      Options
	tokenizer Tokenizer
}

// NewTokenSplitter 创建 token 切片器
func NewTokenSplitter(opts Options, tokenizer Tokenizer) (*TokenSplitter, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.ChunkOverlap == opts.ChunkSize {
		return nil, fmt.Errorf("chunk overlap must be smaller than chunk size")
	}
	if tokenizer == nil {
		return nil, fmt.Errorf("token splitter requires a tokenizer")
	}
	return &TokenSplitter{opts: opts, tokenizer: tokenizer}, nil
}

func (s *TokenSplitter) Name() string {
	return "token"
}

func (s *TokenSplitter) SplitText(text string) ([]string, error) {
	ids := s.tokenizer.Encode(text)
	var splits []string
	step := s.opts.ChunkSize - s.opts.ChunkOverlap
	for start := 0; start < len(ids); start += step {
		end := min(start+s.opts.ChunkSize, len(ids))
		splits = append(splits, s.tokenizer.Decode(ids[start:end]))
		if end == len(ids) {
			break
		}
	}
	return splits, nil
}
