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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-lab/internal/model/modeltest"
	"chain-lab/internal/pipeline/ingest"
)

const titanic = `PassengerId,Survived,Name,Fare,Age
1,0,"Braund, Mr. Owen Harris",7.25,22
2,1,"Cumings, Mrs. John Bradley",71.2833,38
3,1,"Heikkinen, Miss. Laina",7.925,
`

func loadFrame(t *testing.T) *Frame {
	t.Helper()
	table, err := ingest.ReadCSV(strings.NewReader(titanic))
	require.NoError(t, err)
	f, err := FromTable(table)
	require.NoError(t, err)
	return f
}

func TestFromTable_InferTypes(t *testing.T) {
	f := loadFrame(t)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []Column{
		{Name: "PassengerId", Type: TypeInteger},
		{Name: "Survived", Type: TypeInteger},
		{Name: "Name", Type: TypeText},
		{Name: "Fare", Type: TypeReal},
		{Name: "Age", Type: TypeInteger},
	}, f.Columns)
	assert.Equal(t, int64(1), f.Rows[0][0])
	assert.Equal(t, 71.2833, f.Rows[1][3])
	assert.Nil(t, f.Rows[2][4])
}

func TestFromTable_RaggedRow(t *testing.T) {
	_, err := FromTable(&ingest.Table{Header: []string{"a", "b"}, Rows: [][]string{{"1"}}})
	assert.Error(t, err)
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.csv")
	require.NoError(t, os.WriteFile(path, []byte(titanic), 0o644))
	f, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"PassengerId", "Survived", "Name", "Fare", "Age"}, f.ColumnNames())
}

func TestFrame_Head(t *testing.T) {
	f := loadFrame(t)
	head := f.Head(2)
	lines := strings.Split(head, "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "|     | PassengerId |"))
	assert.Contains(t, lines[1], ":|")
	assert.Contains(t, lines[2], "| Braund, Mr. Owen Harris    |")
	assert.Contains(t, lines[3], "71.2833")

	assert.Contains(t, f.Head(10), "nan")
}

func TestFrame_ToSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := loadFrame(t).ToSQLite(ctx)
	require.NoError(t, err)
	defer db.Close()

	out, err := db.Run(ctx, "SELECT COUNT(*) FROM df")
	require.NoError(t, err)
	assert.Equal(t, "[(3,)]", out)

	out, err = db.Run(ctx, "SELECT Name FROM df WHERE Age IS NULL")
	require.NoError(t, err)
	assert.Equal(t, "[('Heikkinen, Miss. Laina',)]", out)
}

func TestAgent_CountRows(t *testing.T) {
	ctx := context.Background()
	cm := modeltest.NewChatModel(
		modeltest.ToolCall("call_1", QueryToolName, `{"query":"SELECT COUNT(*) FROM df"}`),
		modeltest.Reply("There are 3 rows in the dataframe."),
	)
	a, err := NewAgent(ctx, cm, loadFrame(t))
	require.NoError(t, err)
	defer a.Close()

	answer, err := a.Invoke(ctx, "", "how many rows are there?")
	require.NoError(t, err)
	assert.Equal(t, "There are 3 rows in the dataframe.", answer)

	require.Len(t, cm.Calls, 2)
	first := cm.Calls[0]
	require.NotEmpty(t, first)
	assert.Equal(t, schema.System, first[0].Role)
	assert.Contains(t, first[0].Content, "print(df.head())")
	assert.Contains(t, first[0].Content, "Braund, Mr. Owen Harris")

	second := cm.Calls[1]
	last := second[len(second)-1]
	assert.Equal(t, schema.Tool, last.Role)
	assert.Equal(t, "[(3,)]", last.Content)
}

func TestQueryTool_EmptyQuery(t *testing.T) {
	res, err := NewQueryTool(nil).Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "query is required", res.Err)
}
