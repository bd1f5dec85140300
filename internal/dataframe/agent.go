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

package dataframe

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"chain-lab/internal/agent"
	"chain-lab/internal/sqldb"
	"chain-lab/internal/tool"
)

// QueryToolName 查询 df 的工具名
const QueryToolName = "dataframe_query"

const instructionTemplate = "You are working with a table in a SQLite database. The name of the table is `df`.\n" +
	"You should use the tools below to answer the question posed of you:\n\n" +
	"%s: Runs a SQLite SELECT statement against `df` and returns the result. " +
	"When using this tool, sometimes output is abbreviated - make sure it does not look abbreviated before using it in your answer.\n\n" +
	"This is the result of `print(df.head())`:\n%s"

// QueryTool 在 df 表上执行 SQL
type QueryTool struct {
	db *sqldb.DB
}

// NewQueryTool 创建 dataframe_query 工具
func NewQueryTool(db *sqldb.DB) *QueryTool {
	return &QueryTool{db: db}
}

func (t *QueryTool) Name() string { return QueryToolName }

func (t *QueryTool) Description() string {
	return "A SQLite shell over the table `df`. Input should be a valid SQLite SELECT statement."
}

func (t *QueryTool) Schema() tool.Schema {
	return tool.QuerySchema("SQLite SELECT statement over the table df")
}

func (t *QueryTool) Execute(ctx context.Context, input map[string]any) (tool.ToolResult, error) {
	q := tool.StringArg(input, "query")
	if q == "" {
		return tool.ToolResult{Err: "query is required"}, nil
	}
	return tool.ToolResult{Content: t.db.RunNoThrow(ctx, q)}, nil
}

// Instruction Agent 的 system 提示，附带前 5 行预览
func Instruction(f *Frame) string {
	return fmt.Sprintf(instructionTemplate, QueryToolName, f.Head(5))
}

// Agent 数据表问答 Agent
type Agent struct {
	*agent.ReactAgent
	db *sqldb.DB
}

// NewAgent 把 Frame 导入内存 SQLite，并创建带 dataframe_query 工具的 ReAct Agent
func NewAgent(ctx context.Context, cm model.ToolCallingChatModel, f *Frame) (*Agent, error) {
	db, err := f.ToSQLite(ctx)
	if err != nil {
		return nil, err
	}
	ra, err := agent.NewReactAgent(ctx, &agent.ReactConfig{
		Name:        "dataframe_agent",
		Description: "answers questions about a tabular dataset",
		Instruction: Instruction(f),
		Model:       cm,
		Tools:       tool.EinoTools(NewQueryTool(db)),
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Agent{ReactAgent: ra, db: db}, nil
}

// Close 关闭内存库
func (a *Agent) Close() error { return a.db.Close() }
