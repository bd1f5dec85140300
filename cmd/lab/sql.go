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

package main

import (
	"context"
	"fmt"
	"strings"

	"chain-lab/internal/chain"
	"chain-lab/internal/sqldb"
	"chain-lab/internal/tool"
	"chain-lab/pkg/utils"
)

// SQLCmd SQL 数据库问答
type SQLCmd struct {
	Option int    `help:"0: write a query and run it; 1: query | execute; 2: full answer chain." default:"2"`
	DB     string `name:"db" help:"Database URI; defaults to sql.uri in the config."`
}

func (c *SQLCmd) runOption() int { return c.Option }

// openDB 按 URI 打开数据库，样例行数取自配置
func openDB(ctx context.Context, a *app, uri string) (*sqldb.DB, error) {
	opts := &sqldb.Options{SampleRows: a.cfg.SQL.SampleRows}
	return sqldb.Open(ctx, utils.CoalesceString(uri, a.cfg.SQL.URI), opts)
}

func (c *SQLCmd) Run(ctx context.Context, a *app) error {
	fmt.Println("Hello LangChain SQL query!")

	cm, err := a.ChatModel(ctx, 0.9)
	if err != nil {
		return err
	}
	db, err := openDB(ctx, a, c.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	q, err := chain.NewSQLQueryChain(ctx, cm, db, a.cfg.SQL.TopK)
	if err != nil {
		return err
	}
	exec := tool.NewSQLQueryTool(db)
	const question = "How many employees are there"

	switch c.Option {
	case 0:
		query, err := q.Invoke(ctx, question)
		if err != nil {
			return err
		}
		fmt.Println(query)
		result, err := db.Run(ctx, query)
		if err != nil {
			return err
		}
		fmt.Println(result)
		printPrompt(q.Prompt())
	case 1:
		result, err := chain.NewSQLExecuteChain(q, exec).Invoke(ctx, question)
		if err != nil {
			return err
		}
		fmt.Println(result)
	case 2:
		answer, err := chain.NewSQLAnswerChain(ctx, cm, q, exec)
		if err != nil {
			return err
		}
		resp, err := answer.Invoke(ctx, question)
		if err != nil {
			return err
		}
		fmt.Println(resp)
	default:
		return wrongOption(c.Option)
	}
	return nil
}

// printPrompt 带标题框打印提示模板
func printPrompt(tpl string) {
	title := " Prompt Template "
	bar := strings.Repeat("=", 32)
	fmt.Println(bar + title + bar)
	fmt.Println()
	fmt.Println(tpl)
}

// SQLInfoCmd 打印数据库方言、表名与 Artist 样例
type SQLInfoCmd struct {
	DB string `name:"db" help:"Database URI; defaults to sql.uri in the config."`
}

func (c *SQLInfoCmd) Run(ctx context.Context, a *app) error {
	db, err := openDB(ctx, a, c.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println(db.Dialect())
	names, err := db.UsableTableNames(ctx)
	if err != nil {
		return err
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	fmt.Println("[" + strings.Join(quoted, ", ") + "]")
	out, err := db.Run(ctx, "SELECT * FROM Artist LIMIT 10;")
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
