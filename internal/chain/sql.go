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

package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/pipeline/common"
	"chain-lab/internal/sqldb"
	"chain-lab/internal/tool"
	"chain-lab/pkg/utils"
)

// DefaultSQLTopK 生成 SQL 时默认的 LIMIT
const DefaultSQLTopK = 5

// SQLStop 生成 SQL 时的停止词
const SQLStop = "\nSQLResult:"

const sqlFormatSuffix = `

Use the following format:

Question: Question here
SQLQuery: SQL Query to run
SQLResult: Result of the SQLQuery
Answer: Final answer here

Only use the following tables:
{table_info}

Question: {input}`

var sqlPrompts = map[string]string{
	sqldb.DialectSQLite: `You are a SQLite expert. Given an input question, first create a syntactically correct SQLite query to run, then look at the results of the query and return the answer to the input question.
Unless the user specifies in the question a specific number of examples to obtain, query for at most {top_k} results using the LIMIT clause as per SQLite. You can order the results to return the most informative data in the database.
Never query for all columns from a table. You must query only the columns that are needed to answer the question. Wrap each column name in double quotes (") to denote them as delimited identifiers.
Pay attention to use only the column names you can see in the tables below. Be careful to not query for columns that do not exist. Also, pay attention to which column is in which table.
Pay attention to use date('now') function to get the current date, if the question involves "today".` + sqlFormatSuffix,

	sqldb.DialectPostgreSQL: `You are a PostgreSQL expert. Given an input question, first create a syntactically correct PostgreSQL query to run, then look at the results of the query and return the answer to the input question.
Unless the user specifies in the question a specific number of examples to obtain, query for at most {top_k} results using the LIMIT clause as per PostgreSQL. You can order the results to return the most informative data in the database.
Never query for all columns from a table. You must query only the columns that are needed to answer the question. Wrap each column name in double quotes (") to denote them as delimited identifiers.
Pay attention to use only the column names you can see in the tables below. Be careful to not query for columns that do not exist. Also, pay attention to which column is in which table.
Pay attention to use CURRENT_DATE function to get the current date, if the question involves "today".` + sqlFormatSuffix,

	sqldb.DialectMySQL: "You are a MySQL expert. Given an input question, first create a syntactically correct MySQL query to run, then look at the results of the query and return the answer to the input question.\n" +
		"Unless the user specifies in the question a specific number of examples to obtain, query for at most {top_k} results using the LIMIT clause as per MySQL. You can order the results to return the most informative data in the database.\n" +
		"Never query for all columns from a table. You must query only the columns that are needed to answer the question. Wrap each column name in backticks (`) to denote them as delimited identifiers.\n" +
		"Pay attention to use only the column names you can see in the tables below. Be careful to not query for columns that do not exist. Also, pay attention to which column is in which table.\n" +
		"Pay attention to use CURDATE() function to get the current date, if the question involves \"today\"." + sqlFormatSuffix,
}

const sqlAnswerPrompt = `Given the following user question, corresponding SQL query, and SQL result, answer the user question.

Question: {question}
SQL Query: {query}
SQL Result: {result}
Answer: `

// SQLQueryChain 由问题生成 SQL
type SQLQueryChain struct {
	db       *sqldb.DB
	topK     int
	template string
	run      compose.Runnable[map[string]any, string]
}

// NewSQLQueryChain 按数据库方言选择提示；topK <= 0 时为 DefaultSQLTopK
func NewSQLQueryChain(ctx context.Context, cm model.BaseChatModel, db *sqldb.DB, topK int) (*SQLQueryChain, error) {
	tplText, ok := sqlPrompts[db.Dialect()]
	if !ok {
		return nil, fmt.Errorf("no sql prompt for dialect %s", db.Dialect())
	}
	topK = utils.PositiveInt(topK, DefaultSQLTopK)
	parser, err := StrParser()
	if err != nil {
		return nil, err
	}
	run, err := compose.NewChain[map[string]any, string]().
		AppendChatTemplate(prompt.FromMessages(schema.FString, schema.UserMessage(tplText)), compose.WithNodeName("sql_prompt")).
		AppendChatModel(cm, compose.WithNodeName("model")).
		AppendLambda(parser, compose.WithNodeName("parser")).
		Compile(ctx, compose.WithGraphName("sql_query"))
	if err != nil {
		return nil, fmt.Errorf("compile sql query chain: %w", err)
	}
	return &SQLQueryChain{db: db, topK: topK, template: tplText, run: run}, nil
}

// Prompt 提示模板原文
func (c *SQLQueryChain) Prompt() string { return c.template }

// Invoke 返回去掉前缀与代码块标记后的 SQL
func (c *SQLQueryChain) Invoke(ctx context.Context, question string) (string, error) {
	tableInfo, err := c.db.TableInfo(ctx)
	if err != nil {
		return "", err
	}
	out, err := c.run.Invoke(ctx, map[string]any{
		KeyInput:     question + "\nSQLQuery: ",
		"top_k":      c.topK,
		"table_info": tableInfo,
	}, compose.WithChatModelOption(model.WithStop([]string{SQLStop})))
	if err != nil {
		return "", common.NewPipelineError("sql", "生成 SQL 失败", err)
	}
	return StripSQL(out), nil
}

// StripSQL 去掉空白、"SQLQuery:" 前缀与 markdown 代码块
func StripSQL(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, SQLStop); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "SQLQuery:"))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "sql")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// SQLExecuteChain 生成 SQL 后交给 sql_db_query 执行
type SQLExecuteChain struct {
	query *SQLQueryChain
	exec  *tool.SQLQueryTool
}

// NewSQLExecuteChain query | execute
func NewSQLExecuteChain(q *SQLQueryChain, exec *tool.SQLQueryTool) *SQLExecuteChain {
	return &SQLExecuteChain{query: q, exec: exec}
}

// Invoke 返回执行结果文本
func (c *SQLExecuteChain) Invoke(ctx context.Context, question string) (string, error) {
	q, err := c.query.Invoke(ctx, question)
	if err != nil {
		return "", err
	}
	return c.exec.Run(ctx, q), nil
}

// NewSQLAnswerChain assign(query) | assign(result) | 回答提示 | model | parser；输入为问题
func NewSQLAnswerChain(ctx context.Context, cm model.BaseChatModel, q *SQLQueryChain, exec *tool.SQLQueryTool) (compose.Runnable[string, string], error) {
	assignQuery := compose.InvokableLambda(func(ctx context.Context, question string) (map[string]any, error) {
		sql, err := q.Invoke(ctx, question)
		if err != nil {
			return nil, err
		}
		return map[string]any{KeyQuestion: question, "query": sql}, nil
	})
	assignResult := compose.InvokableLambda(func(ctx context.Context, in map[string]any) (map[string]any, error) {
		sql, _ := in["query"].(string)
		in["result"] = exec.Run(ctx, sql)
		return in, nil
	})
	parser, err := StrParser()
	if err != nil {
		return nil, err
	}
	run, err := compose.NewChain[string, string]().
		AppendLambda(assignQuery, compose.WithNodeName("write_query")).
		AppendLambda(assignResult, compose.WithNodeName("execute_query")).
		AppendChatTemplate(prompt.FromMessages(schema.FString, schema.UserMessage(sqlAnswerPrompt)), compose.WithNodeName("answer_prompt")).
		AppendChatModel(cm, compose.WithNodeName("model")).
		AppendLambda(parser, compose.WithNodeName("parser")).
		Compile(ctx, compose.WithGraphName("sql_answer"))
	if err != nil {
		return nil, fmt.Errorf("compile sql answer chain: %w", err)
	}
	return run, nil
}
