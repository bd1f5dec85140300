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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-lab/internal/sqldb"
	"chain-lab/pkg/config"
)

func wikiServer(t *testing.T, titles []string, extracts map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Get("list") == "search":
			var hits []map[string]string
			for _, tt := range titles {
				hits = append(hits, map[string]string{"title": tt})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"query": map[string]any{"search": hits}})
		case q.Get("prop") == "extracts":
			title := q.Get("titles")
			page := map[string]any{"title": title}
			key := "-1"
			if ex, ok := extracts[title]; ok {
				page["extract"] = ex
				key = "1"
			} else {
				page["missing"] = ""
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"query": map[string]any{"pages": map[string]any{key: page}}})
		default:
			http.Error(w, "bad request", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWikipediaTool_Run(t *testing.T) {
	srv := wikiServer(t, []string{"Taoyuan", "Taoyuan City Government", "Gone"}, map[string]string{
		"Taoyuan":                 "Taoyuan is a special municipality in Taiwan.",
		"Taoyuan City Government": "The city government of Taoyuan.",
	})
	w := NewWikipediaTool(config.WikipediaConfig{BaseURL: srv.URL})

	out, err := w.Run(context.Background(), "mayor of taoyuan city")
	require.NoError(t, err)
	assert.Equal(t, "Page: Taoyuan\nSummary: Taoyuan is a special municipality in Taiwan.\n\n"+
		"Page: Taoyuan City Government\nSummary: The city government of Taoyuan.", out)
}

func TestWikipediaTool_NoResultAndTruncate(t *testing.T) {
	srv := wikiServer(t, nil, nil)
	w := NewWikipediaTool(config.WikipediaConfig{BaseURL: srv.URL})
	out, err := w.Run(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Equal(t, NoWikipediaResult, out)

	long := strings.Repeat("x", 50)
	srv = wikiServer(t, []string{"Long"}, map[string]string{"Long": long})
	w = NewWikipediaTool(config.WikipediaConfig{BaseURL: srv.URL, MaxChars: 20})
	out, err = w.Run(context.Background(), "long")
	require.NoError(t, err)
	assert.Equal(t, "Page: Long\nSummary: ", out)
}

func TestEinoAdapter(t *testing.T) {
	srv := wikiServer(t, []string{"Bob"}, map[string]string{"Bob": "A name."})
	et := Eino(NewWikipediaTool(config.WikipediaConfig{BaseURL: srv.URL}))

	info, err := et.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wikipedia", info.Name)
	js, err := info.ParamsOneOf.ToJSONSchema()
	require.NoError(t, err)
	assert.Contains(t, js.Required, "query")

	out, err := et.InvokableRun(context.Background(), `{"query":"bob"}`)
	require.NoError(t, err)
	assert.Equal(t, "Page: Bob\nSummary: A name.", out)

	out, err = et.InvokableRun(context.Background(), `{}`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Error: "))

	_, err = et.InvokableRun(context.Background(), "not json")
	assert.Error(t, err)
}

type stubRetriever struct {
	queries []string
	docs    []*schema.Document
}

func (s *stubRetriever) Retrieve(ctx context.Context, q string, opts ...retriever.Option) ([]*schema.Document, error) {
	s.queries = append(s.queries, q)
	return s.docs, nil
}

func TestRetrieverTool(t *testing.T) {
	r := &stubRetriever{docs: []*schema.Document{{Content: "one"}, {Content: "two"}}}
	rt := NewRetrieverTool(r, "blog_post_retriever", "Searches the blog.")
	assert.Equal(t, "blog_post_retriever", rt.Name())

	res, err := rt.Execute(context.Background(), map[string]any{"query": "task decomposition"})
	require.NoError(t, err)
	assert.Equal(t, "one\n\ntwo", res.Content)
	assert.Equal(t, []string{"task decomposition"}, r.queries)
}

func TestSQLQueryTool(t *testing.T) {
	ctx := context.Background()
	db, err := sqldb.Open(ctx, "sqlite://:memory:", nil)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Exec(ctx, "CREATE TABLE Employee (EmployeeId INTEGER)"))
	require.NoError(t, db.Exec(ctx, "INSERT INTO Employee VALUES (1), (2), (3)"))

	st := NewSQLQueryTool(db)
	res, err := st.Execute(ctx, map[string]any{"query": "SELECT COUNT(*) FROM Employee"})
	require.NoError(t, err)
	assert.Equal(t, "[(3,)]", res.Content)

	assert.True(t, strings.HasPrefix(st.Run(ctx, "SELECT * FROM Missing"), "Error: "))
}
