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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-lab/internal/sqldb"
	"chain-lab/pkg/metrics"
)

func parse(t *testing.T, args ...string) (*kong.Context, *CLI) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("lab"), kong.Vars{"blog_url": defaultBlogURL})
	require.NoError(t, err)
	base := []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "--log-level", "error"}
	kctx, err := parser.Parse(append(base, args...))
	require.NoError(t, err)
	return kctx, &cli
}

func TestParse_Defaults(t *testing.T) {
	_, cli := parse(t, "rag")
	assert.Equal(t, 4, cli.RAG.Option)
	assert.Equal(t, defaultBlogURL, cli.RAG.URL)

	_, cli = parse(t, "sql")
	assert.Equal(t, 2, cli.SQL.Option)

	_, cli = parse(t, "agent")
	assert.Equal(t, 1, cli.Agent.Option)

	_, cli = parse(t, "query-analyzer", "--url", "https://youtu.be/abc")
	assert.Equal(t, 1, cli.QueryAnalyzer.Option)
	assert.Equal(t, []string{"https://youtu.be/abc"}, cli.QueryAnalyzer.URL)
}

func TestRun_Validate(t *testing.T) {
	kctx, cli := parse(t, "validate")
	assert.Equal(t, 0, run(kctx, cli))

	kctx, cli = parse(t, "validate", "--option", "1")
	assert.Equal(t, 1, run(kctx, cli))

	kctx, cli = parse(t, "validate", "--option", "7")
	assert.Equal(t, 0, run(kctx, cli))
}

func TestRun_MissingParams(t *testing.T) {
	kctx, cli := parse(t, "--param", filepath.Join(t.TempDir(), "param.json"), "graph")
	assert.Equal(t, 1, run(kctx, cli))
}

func TestRun_SQLInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chinook.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	ctx := context.Background()
	db, err := sqldb.Open(ctx, "sqlite:///"+path, nil)
	require.NoError(t, err)
	require.NoError(t, db.Exec(ctx, "CREATE TABLE Artist (ArtistId INTEGER PRIMARY KEY, Name TEXT)"))
	require.NoError(t, db.Exec(ctx, "INSERT INTO Artist VALUES (1, 'AC/DC'), (2, 'Accept')"))
	require.NoError(t, db.Close())

	kctx, cli := parse(t, "sqlinfo", "--db", "sqlite:///"+path)
	assert.Equal(t, 0, run(kctx, cli))
}

func TestToolCallsString(t *testing.T) {
	calls := []schema.ToolCall{{
		ID:       "call_1",
		Function: schema.FunctionCall{Name: "wikipedia", Arguments: `{"query":"taoyuan"}`},
	}}
	assert.Equal(t, `[{'name': 'wikipedia', 'args': {"query":"taoyuan"}, 'id': 'call_1'}]`, toolCallsString(calls))
	assert.Equal(t, "[]", toolCallsString(nil))
}

func TestHead(t *testing.T) {
	assert.Equal(t, "勞工", head("勞工犯了", 2))
	assert.Equal(t, "abc", head("abc", 10))
}

func TestMetricsRouter(t *testing.T) {
	metrics.CommandTotal.WithLabelValues("sqlinfo", "ok").Inc()
	h := metricsRouter()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lab_command_total{command="sqlinfo",status="ok"}`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
