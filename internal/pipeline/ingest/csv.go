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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	einodoc "github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
)

// Table CSV 表头与数据行
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV 读取带表头的 CSV；行长度与表头不一致视为错误
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("读取 CSV 失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV 为空")
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return &Table{Header: header, Rows: records[1:]}, nil
}

// ReadCSVFile 读取 CSV 文件
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 CSV 失败: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// CSVLoader 每行一个文档，内容为 "列: 值" 逐行排列
type CSVLoader struct{}

var _ einodoc.Loader = (*CSVLoader)(nil)

func (CSVLoader) Load(ctx context.Context, src einodoc.Source, opts ...einodoc.LoaderOption) ([]*schema.Document, error) {
	path := strings.TrimPrefix(strings.TrimSpace(src.URI), "file://")
	table, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	docs := make([]*schema.Document, 0, len(table.Rows))
	for i, row := range table.Rows {
		lines := make([]string, len(table.Header))
		for j, col := range table.Header {
			lines[j] = strings.TrimSpace(col) + ": " + strings.TrimSpace(row[j])
		}
		docs = append(docs, &schema.Document{
			ID:       fmt.Sprintf("%s#%d", path, i),
			Content:  strings.Join(lines, "\n"),
			MetaData: map[string]any{"source": path, "row": i},
		})
	}
	return docs, nil
}
