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

// Package dataframe 把 CSV 读成带类型的表，并放进内存 SQLite 供 Agent 查询
package dataframe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chain-lab/internal/pipeline/ingest"
	"chain-lab/internal/sqldb"
)

// 列类型，与 SQLite 亲和类型一致
const (
	TypeInteger = "INTEGER"
	TypeReal    = "REAL"
	TypeText    = "TEXT"
)

// TableName 导入 SQLite 后的表名
const TableName = "df"

// Column 列名与推断出的类型
type Column struct {
	Name string
	Type string
}

// Frame 内存中的二维表；空单元格为 nil
type Frame struct {
	Columns []Column
	Rows    [][]any
}

// ReadCSVFile 读取 CSV 文件并推断列类型
func ReadCSVFile(path string) (*Frame, error) {
	t, err := ingest.ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	return FromTable(t)
}

// FromTable 由 CSV 表构建 Frame：整列可解析为整数则 INTEGER，可解析为浮点则 REAL，否则 TEXT
func FromTable(t *ingest.Table) (*Frame, error) {
	cols := make([]Column, len(t.Header))
	for j, name := range t.Header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", j)
		}
		cols[j] = Column{Name: name, Type: inferType(t.Rows, j)}
	}

	rows := make([][]any, len(t.Rows))
	for i, raw := range t.Rows {
		if len(raw) != len(cols) {
			return nil, fmt.Errorf("第 %d 行有 %d 列，表头有 %d 列", i+1, len(raw), len(cols))
		}
		row := make([]any, len(cols))
		for j, cell := range raw {
			row[j] = convert(cell, cols[j].Type)
		}
		rows[i] = row
	}
	return &Frame{Columns: cols, Rows: rows}, nil
}

func inferType(rows [][]string, j int) string {
	typ := TypeInteger
	seen := false
	for _, r := range rows {
		if j >= len(r) {
			continue
		}
		cell := strings.TrimSpace(r[j])
		if cell == "" {
			continue
		}
		seen = true
		if typ == TypeInteger {
			if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
				continue
			}
			typ = TypeReal
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return TypeText
		}
	}
	if !seen {
		return TypeText
	}
	return typ
}

func convert(cell, typ string) any {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	switch typ {
	case TypeInteger:
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	case TypeReal:
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	return cell
}

// Len 行数
func (f *Frame) Len() int { return len(f.Rows) }

// ColumnNames 列名
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Head 前 n 行的 markdown 表格预览，第一列为行号
func (f *Frame) Head(n int) string {
	if n < 0 || n > len(f.Rows) {
		n = len(f.Rows)
	}
	header := append([]string{""}, f.ColumnNames()...)
	cells := make([][]string, n)
	for i := 0; i < n; i++ {
		line := []string{strconv.Itoa(i)}
		for _, v := range f.Rows[i] {
			line = append(line, cellString(v))
		}
		cells[i] = line
	}

	widths := make([]int, len(header))
	for j, h := range header {
		widths[j] = max(len([]rune(h)), 3)
		for _, line := range cells {
			widths[j] = max(widths[j], len([]rune(line[j])))
		}
	}
	right := func(j int) bool {
		return j == 0 || f.Columns[j-1].Type != TypeText
	}

	var b strings.Builder
	writeRow := func(line []string) {
		b.WriteString("|")
		for j, c := range line {
			pad := strings.Repeat(" ", widths[j]-len([]rune(c)))
			if right(j) {
				b.WriteString(" " + pad + c + " |")
			} else {
				b.WriteString(" " + c + pad + " |")
			}
		}
		b.WriteString("\n")
	}
	writeRow(header)
	b.WriteString("|")
	for j, w := range widths {
		if right(j) {
			b.WriteString(strings.Repeat("-", w+1) + ":|")
		} else {
			b.WriteString(":" + strings.Repeat("-", w+1) + "|")
		}
	}
	b.WriteString("\n")
	for _, line := range cells {
		writeRow(line)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return "nan"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// ToSQLite 把 Frame 写入新的内存 SQLite 库的 df 表
func (f *Frame) ToSQLite(ctx context.Context) (*sqldb.DB, error) {
	db, err := sqldb.Open(ctx, "sqlite://"+sqldb.MemoryPath, nil)
	if err != nil {
		return nil, err
	}
	if err := f.writeTo(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (f *Frame) writeTo(ctx context.Context, db *sqldb.DB) error {
	defs := make([]string, len(f.Columns))
	marks := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		defs[i] = quoteIdent(c.Name) + " " + c.Type
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", TableName, strings.Join(defs, ", "))
	if err := db.Exec(ctx, create); err != nil {
		return fmt.Errorf("建表失败: %w", err)
	}

	tx, err := db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", TableName, strings.Join(marks, ", ")))
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for i, row := range f.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			tx.Rollback()
			return fmt.Errorf("写入第 %d 行失败: %w", i, err)
		}
	}
	return tx.Commit()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
