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

	"chain-lab/internal/sqldb"
)

const sqlQueryDescription = "Input to this tool is a detailed and correct SQL query, output is a result from the database. " +
	"If the query is not correct, an error message will be returned. " +
	"If an error is returned, rewrite the query, check the query, and try again."

// SQLQueryTool sql_db_query：执行 SQL，失败时返回 "Error: …"
type SQLQueryTool struct {
	db   *sqldb.DB
	name string
}

// NewSQLQueryTool 创建 sql_db_query 工具
func NewSQLQueryTool(db *sqldb.DB) *SQLQueryTool {
	return &SQLQueryTool{db: db, name: "sql_db_query"}
}

// Name 实现 Tool
func (t *SQLQueryTool) Name() string { return t.name }

// Description 实现 Tool
func (t *SQLQueryTool) Description() string { return sqlQueryDescription }

// Schema 实现 Tool
func (t *SQLQueryTool) Schema() Schema { return QuerySchema("A detailed and correct SQL query.") }

// Execute 实现 Tool
func (t *SQLQueryTool) Execute(ctx context.Context, input map[string]any) (ToolResult, error) {
	return ToolResult{Content: t.Run(ctx, StringArg(input, "query"))}, nil
}

// Run 直接执行一条查询
func (t *SQLQueryTool) Run(ctx context.Context, q string) string {
	return t.db.RunNoThrow(ctx, q)
}
