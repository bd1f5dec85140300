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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-lab/internal/model/modeltest"
	"chain-lab/internal/sqldb"
	"chain-lab/internal/tool"
)

func employeeDB(t *testing.T) *sqldb.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sqldb.Open(ctx, "sqlite://:memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Exec(ctx, "CREATE TABLE Employee (EmployeeId INTEGER NOT NULL, LastName NVARCHAR(20))"))
	require.NoError(t, db.Exec(ctx, "INSERT INTO Employee VALUES (1, 'Adams'), (2, 'Edwards'), (3, 'Peacock')"))
	return db
}

func TestStripSQL(t *testing.T) {
	assert.Equal(t, "SELECT 1", StripSQL("  SQLQuery: SELECT 1  "))
	assert.Equal(t, "SELECT 1", StripSQL("```sql\nSELECT 1\n```"))
	assert.Equal(t, "SELECT 1", StripSQL("SELECT 1\nSQLResult: [(1,)]"))
}

func TestSQLQueryChain(t *testing.T) {
	ctx := context.Background()
	db := employeeDB(t)
	cm := modeltest.NewChatModel(modeltest.Reply("SQLQuery: SELECT COUNT(\"EmployeeId\") FROM Employee"))

	qc, err := NewSQLQueryChain(ctx, cm, db, 0)
	require.NoError(t, err)
	assert.Contains(t, qc.Prompt(), "You are a SQLite expert.")

	q, err := qc.Invoke(ctx, "How many employees are there")
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(\"EmployeeId\") FROM Employee", q)

	require.Len(t, cm.Calls, 1)
	content := cm.Calls[0][0].Content
	assert.Contains(t, content, "query for at most 5 results")
	assert.Contains(t, content, "CREATE TABLE Employee")
	assert.Contains(t, content, "3 rows from Employee table:")
	assert.Contains(t, content, "Question: How many employees are there\nSQLQuery: ")
	assert.Equal(t, []string{SQLStop}, cm.Stops[0])
}

func TestSQLExecuteAndAnswerChains(t *testing.T) {
	ctx := context.Background()
	db := employeeDB(t)
	cm := modeltest.NewChatModel(
		modeltest.Reply("SELECT COUNT(*) FROM Employee"),
		modeltest.Reply("SELECT COUNT(*) FROM Employee"),
		modeltest.Reply("There are 3 employees."),
	)
	qc, err := NewSQLQueryChain(ctx, cm, db, 5)
	require.NoError(t, err)
	exec := tool.NewSQLQueryTool(db)

	res, err := NewSQLExecuteChain(qc, exec).Invoke(ctx, "How many employees are there")
	require.NoError(t, err)
	assert.Equal(t, "[(3,)]", res)

	answer, err := NewSQLAnswerChain(ctx, cm, qc, exec)
	require.NoError(t, err)
	out, err := answer.Invoke(ctx, "How many employees are there")
	require.NoError(t, err)
	assert.Equal(t, "There are 3 employees.", out)

	last := cm.Calls[2][0].Content
	assert.Contains(t, last, "Question: How many employees are there\nSQL Query: SELECT COUNT(*) FROM Employee\nSQL Result: [(3,)]\nAnswer: ")
	assert.Empty(t, cm.Stops[2])
}

func TestSQLQueryChain_UnknownDialectPrompt(t *testing.T) {
	_, ok := sqlPrompts["oracle"]
	assert.False(t, ok)
}
