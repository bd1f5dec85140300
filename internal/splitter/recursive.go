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
	"log/slog"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators 由粗到细的分隔符，空串表示逐字符切分
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplitter 递归字符切片器：依次尝试分隔符，长度按字符（rune）计算，
// 分隔符保留在片段开头，片段首尾空白被去掉
type RecursiveSplitter struct {
	opts       Options
	separators []string
}

// NewRecursiveSplitter 创建递归字符切片器
func NewRecursiveSplitter(opts Options, separators ...string) (*RecursiveSplitter, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &RecursiveSplitter{opts: opts, separators: separators}, nil
}

func (s *RecursiveSplitter) Name() string {
	return "recursive"
}

func (s *RecursiveSplitter) SplitText(text string) ([]string, error) {
	return s.split(text, s.separators), nil
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	var final []string

	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	var good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if length(piece) < s.opts.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, "")...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, "")...)
	}
	return final
}

// merge 将小片段拼成不超过 ChunkSize 的块，相邻块保留不超过 ChunkOverlap 的重叠
func (s *RecursiveSplitter) merge(splits []string, separator string) []string {
	sepLen := length(separator)
	var docs []string
	var current []string
	total := 0

	joinedLen := func(extra int) int {
		if len(current) > 0 {
			return total + extra + sepLen
		}
		return total + extra
	}

	for _, d := range splits {
		l := length(d)
		if joinedLen(l) > s.opts.ChunkSize {
			if total > s.opts.ChunkSize {
				slog.Warn("created a chunk larger than chunk size", "size", total, "chunk_size", s.opts.ChunkSize)
			}
			if len(current) > 0 {
				if doc, ok := join(current, separator); ok {
					docs = append(docs, doc)
				}
				for len(current) > 0 && (total > s.opts.ChunkOverlap || (joinedLen(l) > s.opts.ChunkSize && total > 0)) {
					drop := length(current[0])
					if len(current) > 1 {
						drop += sepLen
					}
					total -= drop
					current = current[1:]
				}
			}
		}
		current = append(current, d)
		total += l
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc, ok := join(current, separator); ok {
		docs = append(docs, doc)
	}
	return docs
}

// splitKeepingSeparator 按分隔符切分，分隔符并入后一段开头；空分隔符逐字符切分
func splitKeepingSeparator(text, separator string) []string {
	var parts []string
	if separator == "" {
		parts = make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	}
	raw := strings.Split(text, separator)
	parts = make([]string, 0, len(raw))
	for i, p := range raw {
		if i > 0 {
			p = separator + p
		}
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func join(parts []string, separator string) (string, bool) {
	text := strings.TrimSpace(strings.Join(parts, separator))
	return text, text != ""
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
