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

// lab 以子命令运行各个 LLM 演示流程：Agent、Graph、RAG、SQL 问答、数据表 Agent、查询分析与记录校验。
//
// 用法：
//
//	lab rag --option 4
//	lab sql --db sqlite:///data/Chinook.db --option 2
//	lab --metrics-dump validate --option 1
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"chain-lab/pkg/errors"
	"chain-lab/pkg/metrics"
	"chain-lab/pkg/tracing"
)

// CLI 全局参数与子命令
type CLI struct {
	Param       string `help:"Path to the credentials file." default:"param.json" type:"path"`
	Config      string `short:"c" help:"Path to the optional lab config." default:"configs/lab.yaml" type:"path"`
	LogLevel    string `help:"Log level (debug, info, warn, error); overrides the config file."`
	Devops      bool   `help:"Start the eino devops debug server before building graphs."`
	MetricsAddr string `name:"metrics-addr" help:"Serve Prometheus metrics on this address, e.g. :9090."`
	MetricsDump bool   `name:"metrics-dump" help:"Write the Prometheus text exposition to stderr on exit."`

	Agent         AgentCmd         `cmd:"" help:"Wikipedia tool agent."`
	Graph         GraphCmd         `cmd:"" help:"Explicit agent/tools state graph."`
	Dataframe     DataframeCmd     `cmd:"" help:"Agent over a CSV table."`
	PDF           PDFCmd           `cmd:"" name:"pdf" help:"Retrieval chain over a PDF."`
	QueryAnalyzer QueryAnalyzerCmd `cmd:"" name:"query-analyzer" help:"Structured search over video transcripts."`
	RAG           RAGCmd           `cmd:"" name:"rag" help:"Retrieval-augmented generation over a blog post."`
	RAGAgent      RAGAgentCmd      `cmd:"" name:"rag-agent" help:"Agent with a blog post retriever tool."`
	SQL           SQLCmd           `cmd:"" name:"sql" help:"Question answering over a SQL database."`
	SQLInfo       SQLInfoCmd       `cmd:"" name:"sqlinfo" help:"Print dialect, tables and sample rows of a database."`
	Validate      ValidateCmd      `cmd:"" help:"Validate external records."`
}

// optionCmd 带 --option 的子命令
type optionCmd interface {
	runOption() int
}

// wrongOption 未知分支只打印提示，不算失败
func wrongOption(n int) error {
	fmt.Printf("Error: Wrong run_option(%d)!\n", n)
	return nil
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("lab"),
		kong.Description("chain-lab: LLM pipelines built on eino"),
		kong.UsageOnError(),
		kong.Vars{"blog_url": defaultBlogURL},
	)
	os.Exit(run(kctx, &cli))
}

func run(kctx *kong.Context, cli *CLI) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	command := strings.Fields(kctx.Command())[0]
	option := -1
	if oc, ok := kctx.Selected().Target.Addr().Interface().(optionCmd); ok {
		option = oc.runOption()
	}
	ctx, span := tracing.StartCommandSpan(ctx, command, option)
	defer span.End()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(a)

	code, status := 0, "ok"
	switch {
	case err == nil:
	case errors.IsValidationError(err):
		code, status = 1, "validation"
		fmt.Fprintln(os.Stderr, err.Error())
	default:
		code, status = 1, "error"
		span.RecordError(err)
		slog.Error("命令执行失败", "command", command, "option", option, "error", err)
	}
	metrics.CommandTotal.WithLabelValues(command, status).Inc()

	if cli.MetricsDump {
		if err := metrics.WritePrometheus(os.Stderr); err != nil {
			slog.Warn("导出 metrics 失败", "error", err)
		}
	}
	return code
}
