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

package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"chain-lab/internal/pipeline/common"
)

// 默认值
const (
	DefaultSampleRows      = 3
	DefaultMaxStringLength = 300
	sampleValueLength      = 100
)

// Options 打开数据库时的选项
type Options struct {
	// SampleRows 表信息中附带的样例行数，负数表示不附带
	SampleRows int
	// MaxStringLength Run 结果中字符串的最大长度
	MaxStringLength int
	// IncludeTables 非空时只暴露这些表
	IncludeTables []string
}

// DB database/sql 之上的只读问答视图
type DB struct {
	db      *sql.DB
	dialect string
	opts    Options
}

// Open 按 URI 打开数据库并 Ping；opts 为 nil 时使用默认值
func Open(ctx context.Context, uri string, opts *Options) (*DB, error) {
	t, err := parseURI(uri)
	if err != nil {
		return nil, err
	}
	o := Options{SampleRows: DefaultSampleRows, MaxStringLength: DefaultMaxStringLength}
	if opts != nil {
		o = *opts
		if o.SampleRows == 0 {
			o.SampleRows = DefaultSampleRows
		}
		if o.MaxStringLength == 0 {
			o.MaxStringLength = DefaultMaxStringLength
		}
	}
	if t.dialect == DialectSQLite && t.path != MemoryPath {
		if _, err := os.Stat(t.path); err != nil {
			return nil, fmt.Errorf("sqlite database %s: %w", t.path, err)
		}
	}

	db, err := sql.Open(t.driver, t.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if t.dialect == DialectSQLite {
		// 内存库每个连接各自独立，单连接保证同一份数据
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Debug("数据库已连接", "dialect", t.dialect)
	return &DB{db: db, dialect: t.dialect, opts: o}, nil
}

// Dialect sqlite | postgresql | mysql
func (d *DB) Dialect() string { return d.dialect }

// SQL 底层连接
func (d *DB) SQL() *sql.DB { return d.db }

// Close 关闭连接
func (d *DB) Close() error { return d.db.Close() }

// Exec 执行非查询语句
func (d *DB) Exec(ctx context.Context, query string, args ...any) error {
	_, err := d.db.ExecContext(ctx, query, args...)
	return err
}

// UsableTableNames 可用表名（升序）
func (d *DB) UsableTableNames(ctx context.Context) ([]string, error) {
	if len(d.opts.IncludeTables) > 0 {
		names := slices.Clone(d.opts.IncludeTables)
		slices.Sort(names)
		return names, nil
	}
	return d.allTables(ctx)
}

func (d *DB) allTables(ctx context.Context) ([]string, error) {
	var q string
	switch d.dialect {
	case DialectSQLite:
		q = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'"
	case DialectPostgreSQL:
		q = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'"
	default:
		q = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'"
	}
	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// TableInfo 每张表的 CREATE 语句与样例行，表间空行分隔；未指定表时为全部可用表
func (d *DB) TableInfo(ctx context.Context, tables ...string) (string, error) {
	usable, err := d.UsableTableNames(ctx)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		tables = usable
	} else {
		var missing []string
		for _, t := range tables {
			if !slices.Contains(usable, t) {
				missing = append(missing, t)
			}
		}
		if len(missing) > 0 {
			return "", common.NewValidationError("table_names", fmt.Sprintf("table_names %v not found in database", missing))
		}
	}

	infos := make([]string, 0, len(tables))
	for _, t := range tables {
		create, err := d.createStatement(ctx, t)
		if err != nil {
			return "", err
		}
		info := strings.TrimRight(create, " \n\t")
		if d.opts.SampleRows > 0 {
			sample, err := d.sampleRows(ctx, t)
			if err != nil {
				return "", err
			}
			info += "\n\n/*\n" + sample + "\n*/"
		}
		infos = append(infos, info)
	}
	return strings.Join(infos, "\n\n"), nil
}

func (d *DB) quoteIdent(name string) string {
	if d.dialect == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return "\"" + strings.ReplaceAll(name, "\"", "\"\"") + "\""
}

func (d *DB) createStatement(ctx context.Context, table string) (string, error) {
	switch d.dialect {
	case DialectSQLite:
		var ddl string
		err := d.db.QueryRowContext(ctx, "SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&ddl)
		if err != nil {
			return "", fmt.Errorf("read schema of %s: %w", table, err)
		}
		return "\n" + ddl, nil
	case DialectMySQL:
		var name, ddl string
		if err := d.db.QueryRowContext(ctx, "SHOW CREATE TABLE "+d.quoteIdent(table)).Scan(&name, &ddl); err != nil {
			return "", fmt.Errorf("read schema of %s: %w", table, err)
		}
		return "\n" + ddl, nil
	default:
		return d.columnsDDL(ctx, table)
	}
}

// columnsDDL 由列元数据拼出 CREATE TABLE
func (d *DB) columnsDDL(ctx context.Context, table string) (string, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT * FROM "+d.quoteIdent(table)+" LIMIT 0")
	if err != nil {
		return "", fmt.Errorf("read schema of %s: %w", table, err)
	}
	defer rows.Close()
	types, err := rows.ColumnTypes()
	if err != nil {
		return "", err
	}
	cols := make([]string, len(types))
	for i, ct := range types {
		col := "\t" + d.quoteIdent(ct.Name()) + " " + ct.DatabaseTypeName()
		if nullable, ok := ct.Nullable(); ok && !nullable {
			col += " NOT NULL"
		}
		cols[i] = col
	}
	return "\nCREATE TABLE " + d.quoteIdent(table) + " (\n" + strings.Join(cols, ", \n") + "\n)", nil
}

func (d *DB) sampleRows(ctx context.Context, table string) (string, error) {
	q := fmt.Sprintf("SELECT * FROM %s LIMIT %d", d.quoteIdent(table), d.opts.SampleRows)
	cols, rows, err := d.query(ctx, q)
	if err != nil {
		return "", fmt.Errorf("sample rows of %s: %w", table, err)
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = truncateRunes(pyStr(v), sampleValueLength)
		}
		lines = append(lines, strings.Join(vals, "\t"))
	}
	return fmt.Sprintf("%d rows from %s table:\n%s\n%s", d.opts.SampleRows, table, strings.Join(cols, "\t"), strings.Join(lines, "\n")), nil
}

// Run 执行查询并以 Python 元组列表形式返回结果；无结果返回 ""
func (d *DB) Run(ctx context.Context, query string) (string, error) {
	slog.Debug("执行 SQL", "query", query)
	_, rows, err := d.query(ctx, query)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	parts := make([]string, len(rows))
	for i, row := range rows {
		for j, v := range row {
			if s, ok := v.(string); ok {
				row[j] = truncateWord(s, d.opts.MaxStringLength)
			}
		}
		parts[i] = tupleRepr(row)
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

// RunNoThrow 同 Run，失败时返回 "Error: <msg>"
func (d *DB) RunNoThrow(ctx context.Context, query string) string {
	out, err := d.Run(ctx, query)
	if err != nil {
		return "Error: " + err.Error()
	}
	return out
}

func (d *DB) query(ctx context.Context, q string) ([]string, [][]any, error) {
	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, err
	}
	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range vals {
			vals[i] = normalize(v, types[i].DatabaseTypeName())
		}
		out = append(out, vals)
	}
	return cols, out, rows.Err()
}

// normalize 统一驱动返回的值类型：整数 int64、浮点 float64、文本 string
func normalize(v any, dbType string) any {
	switch x := v.(type) {
	case []byte:
		s := string(x)
		t := strings.ToUpper(dbType)
		switch {
		case strings.Contains(t, "INT"):
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		case strings.Contains(t, "FLOAT"), strings.Contains(t, "DOUBLE"), strings.Contains(t, "REAL"),
			strings.Contains(t, "DECIMAL"), strings.Contains(t, "NUMERIC"):
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		case strings.Contains(t, "BLOB"), strings.Contains(t, "BINARY"), t == "BYTEA":
			return x
		}
		return s
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
