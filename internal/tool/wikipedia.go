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

package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"chain-lab/pkg/config"
	"chain-lab/pkg/utils"
)

// NoWikipediaResult 无检索结果时的输出
const NoWikipediaResult = "No good Wikipedia Search Result was found"

const (
	wikipediaName        = "wikipedia"
	wikipediaDescription = "A wrapper around Wikipedia. Useful for when you need to answer general questions about " +
		"people, places, companies, facts, historical events, or other subjects. Input should be a search query."
	maxQueryLength = 300
)

// WikipediaTool MediaWiki 搜索 + 摘要
type WikipediaTool struct {
	client   *resty.Client
	baseURL  string
	topK     int
	maxChars int
}

// NewWikipediaTool 由配置创建；BaseURL 为空时按 Lang 拼出 api.php 地址
func NewWikipediaTool(cfg config.WikipediaConfig) *WikipediaTool {
	base := utils.CoalesceString(cfg.BaseURL,
		"https://"+utils.CoalesceString(cfg.Lang, "en")+".wikipedia.org/w/api.php")
	return &WikipediaTool{
		client:   resty.New().SetTimeout(30 * time.Second).SetHeader("User-Agent", "chain-lab/1.0"),
		baseURL:  base,
		topK:     utils.PositiveInt(cfg.TopK, 3),
		maxChars: utils.PositiveInt(cfg.MaxChars, 4000),
	}
}

// Name 实现 Tool
func (w *WikipediaTool) Name() string { return wikipediaName }

// Description 实现 Tool
func (w *WikipediaTool) Description() string { return wikipediaDescription }

// Schema 实现 Tool
func (w *WikipediaTool) Schema() Schema { return QuerySchema("query to look up on wikipedia") }

// Execute 实现 Tool
func (w *WikipediaTool) Execute(ctx context.Context, input map[string]any) (ToolResult, error) {
	q := StringArg(input, "query")
	if q == "" {
		return ToolResult{Err: "query 不能为空"}, nil
	}
	out, err := w.Run(ctx, q)
	if err != nil {
		return ToolResult{Err: err.Error()}, nil
	}
	return ToolResult{Content: out}, nil
}

// Run 检索前 topK 个标题，逐个取摘要，拼成 "Page: …\nSummary: …" 块并截断
func (w *WikipediaTool) Run(ctx context.Context, query string) (string, error) {
	if r := []rune(query); len(r) > maxQueryLength {
		query = string(r[:maxQueryLength])
	}
	titles, err := w.search(ctx, query)
	if err != nil {
		return "", err
	}
	var summaries []string
	for _, title := range titles {
		extract, ok, err := w.summary(ctx, title)
		if err != nil {
			return "", err
		}
		if ok {
			summaries = append(summaries, fmt.Sprintf("Page: %s\nSummary: %s", title, extract))
		}
	}
	if len(summaries) == 0 {
		return NoWikipediaResult, nil
	}
	out := strings.Join(summaries, "\n\n")
	if r := []rune(out); len(r) > w.maxChars {
		out = string(r[:w.maxChars])
	}
	return out, nil
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string  `json:"title"`
			Extract string  `json:"extract"`
			Missing *string `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

func (w *WikipediaTool) search(ctx context.Context, query string) ([]string, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":   "query",
			"list":     "search",
			"srsearch": query,
			"srlimit":  strconv.Itoa(w.topK),
			"srprop":   "",
			"format":   "json",
		}).
		Get(w.baseURL)
	if err != nil {
		return nil, fmt.Errorf("wikipedia search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("wikipedia search: HTTP %d", resp.StatusCode())
	}
	var sr searchResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("wikipedia search: %w", err)
	}
	titles := make([]string, 0, len(sr.Query.Search))
	for _, s := range sr.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

func (w *WikipediaTool) summary(ctx context.Context, title string) (string, bool, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":      "query",
			"prop":        "extracts",
			"exintro":     "1",
			"explaintext": "1",
			"redirects":   "1",
			"titles":      title,
			"format":      "json",
		}).
		Get(w.baseURL)
	if err != nil {
		return "", false, fmt.Errorf("wikipedia page %q: %w", title, err)
	}
	if resp.IsError() {
		return "", false, fmt.Errorf("wikipedia page %q: HTTP %d", title, resp.StatusCode())
	}
	var er extractResponse
	if err := json.Unmarshal(resp.Body(), &er); err != nil {
		return "", false, fmt.Errorf("wikipedia page %q: %w", title, err)
	}
	ids := make([]string, 0, len(er.Query.Pages))
	for id := range er.Query.Pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := er.Query.Pages[id]
		if p.Missing != nil || strings.TrimSpace(p.Extract) == "" {
			continue
		}
		return strings.TrimSpace(p.Extract), true, nil
	}
	return "", false, nil
}
