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
	"context"
	"fmt"
	"os"
	"strings"

	einodoc "github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
	"github.com/ledongthuc/pdf"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// PDF 文本抽取引擎
const (
	PDFEngineLedongthuc = "ledongthuc"
	PDFEngineUnipdf     = "unipdf"
)

// PDFLoader 每页一个文档，metadata 含 source 与从 0 开始的 page
type PDFLoader struct {
	extract func(path string) ([]string, error)
}

var _ einodoc.Loader = (*PDFLoader)(nil)

// NewPDFLoader engine 为空时使用 ledongthuc
func NewPDFLoader(engine string) (*PDFLoader, error) {
	switch engine {
	case "", PDFEngineLedongthuc:
		return &PDFLoader{extract: ledongthucPages}, nil
	case PDFEngineUnipdf:
		return &PDFLoader{extract: unipdfPages}, nil
	default:
		return nil, fmt.Errorf("不支持的 PDF 引擎: %s", engine)
	}
}

func (l *PDFLoader) Load(ctx context.Context, src einodoc.Source, opts ...einodoc.LoaderOption) ([]*schema.Document, error) {
	path := strings.TrimPrefix(strings.TrimSpace(src.URI), "file://")
	if path == "" {
		return nil, fmt.Errorf("Source.URI 为空")
	}
	pages, err := l.extract(path)
	if err != nil {
		return nil, err
	}
	docs := make([]*schema.Document, 0, len(pages))
	for i, text := range pages {
		docs = append(docs, &schema.Document{
			ID:      fmt.Sprintf("%s#%d", path, i),
			Content: text,
			MetaData: map[string]any{
				"source": path,
				"page":   i,
			},
		})
	}
	return docs, nil
}

func ledongthucPages(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 PDF 失败: %w", err)
	}
	defer f.Close()

	n := reader.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("提取第 %d 页文本失败: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func unipdfPages(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 PDF 失败: %w", err)
	}
	defer f.Close()

	reader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, fmt.Errorf("打开 PDF 失败: %w", err)
	}
	n, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("获取页数失败: %w", err)
	}
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("获取第 %d 页失败: %w", i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("创建第 %d 页提取器失败: %w", i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("提取第 %d 页文本失败: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
