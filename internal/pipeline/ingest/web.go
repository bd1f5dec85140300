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

package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	einodoc "github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
	"github.com/go-resty/resty/v2"
)

// DefaultPostClasses 博客正文相关的 class
var DefaultPostClasses = []string{"post-content", "post-title", "post-header"}

// DefaultUserAgent 未配置时使用的 UA
const DefaultUserAgent = "chain-lab/1.0"

// WebLoaderConfig 网页加载配置
type WebLoaderConfig struct {
	// Client 为空时新建，超时 30s、重试 2 次
	Client    *resty.Client
	UserAgent string
	// Classes 只保留 class 命中的元素；为空时取整个 body
	Classes []string
}

// WebLoader 抓取网页并抽取正文，实现 eino document.Loader
type WebLoader struct {
	client  *resty.Client
	ua      string
	classes []string
}

var _ einodoc.Loader = (*WebLoader)(nil)

// NewWebLoader 创建网页加载器
func NewWebLoader(cfg *WebLoaderConfig) *WebLoader {
	if cfg == nil {
		cfg = &WebLoaderConfig{Classes: DefaultPostClasses}
	}
	client := cfg.Client
	if client == nil {
		client = resty.New().
			SetTimeout(30 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(time.Second)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &WebLoader{client: client, ua: ua, classes: cfg.Classes}
}

// Load 抓取 src.URI，返回一个文档
func (l *WebLoader) Load(ctx context.Context, src einodoc.Source, opts ...einodoc.LoaderOption) ([]*schema.Document, error) {
	url := strings.TrimSpace(src.URI)
	if url == "" {
		return nil, fmt.Errorf("Source.URI 为空")
	}
	resp, err := l.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", l.ua).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("抓取 %s 失败: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("抓取 %s 失败: HTTP %d", url, resp.StatusCode())
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("解析 HTML 失败: %w", err)
	}
	return []*schema.Document{{
		ID:       url,
		Content:  l.extract(page),
		MetaData: pageMetadata(page, url),
	}}, nil
}

// extract 按 class 取最外层命中元素的文本，文档顺序拼接
func (l *WebLoader) extract(page *goquery.Document) string {
	if len(l.classes) == 0 {
		return page.Find("body").Text()
	}
	selectors := make([]string, len(l.classes))
	for i, c := range l.classes {
		selectors[i] = "." + c
	}
	selector := strings.Join(selectors, ", ")

	var sb strings.Builder
	page.Find(selector).
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.ParentsFiltered(selector).Length() == 0
		}).
		Each(func(_ int, s *goquery.Selection) {
			sb.WriteString(s.Text())
		})
	return sb.String()
}

func pageMetadata(page *goquery.Document, url string) map[string]any {
	meta := map[string]any{"source": url}
	if title := page.Find("title").First(); title.Length() > 0 {
		meta["title"] = title.Text()
	}
	meta["description"] = "No description found."
	if desc, ok := page.Find(`meta[name="description"]`).Attr("content"); ok {
		meta["description"] = strings.TrimSpace(desc)
	}
	meta["language"] = "No language found."
	if lang, ok := page.Find("html").Attr("lang"); ok {
		meta["language"] = lang
	}
	return meta
}
