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
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-lab/internal/model/modeltest"
	"chain-lab/internal/runtime/session"
)

type stubRetriever struct {
	queries []string
	docs    []*schema.Document
}

func (s *stubRetriever) Retrieve(ctx context.Context, q string, opts ...retriever.Option) ([]*schema.Document, error) {
	s.queries = append(s.queries, q)
	return s.docs, nil
}

func blogRetriever() *stubRetriever {
	return &stubRetriever{docs: []*schema.Document{
		{ID: "1", Content: "Task decomposition breaks a task into steps."},
		{ID: "2", Content: "Chain of thought prompts the model to think step by step."},
	}}
}

func TestSimpleRAGChain_Invoke(t *testing.T) {
	ctx := context.Background()
	r := blogRetriever()
	cm := modeltest.NewChatModel(modeltest.Reply("It splits tasks."))

	run, err := NewSimpleRAGChain(ctx, r, cm, RAGPrompt())
	require.NoError(t, err)
	out, err := run.Invoke(ctx, "What is Task Decomposition?")
	require.NoError(t, err)
	assert.Equal(t, "It splits tasks.", out)
	assert.Equal(t, []string{"What is Task Decomposition?"}, r.queries)

	require.Len(t, cm.Calls, 1)
	require.Len(t, cm.Calls[0], 1)
	msg := cm.Calls[0][0]
	assert.Equal(t, schema.User, msg.Role)
	assert.Contains(t, msg.Content, "Question: What is Task Decomposition? \nContext: Task decomposition breaks a task into steps.\n\nChain of thought")
	assert.True(t, strings.HasSuffix(msg.Content, "\nAnswer:"))
}

func TestSimpleRAGChain_Stream(t *testing.T) {
	ctx := context.Background()
	cm := modeltest.NewChatModel(modeltest.Reply("Task decomposition splits work."))
	run, err := NewSimpleRAGChain(ctx, blogRetriever(), cm, CustomRAGPrompt())
	require.NoError(t, err)

	sr, err := run.Stream(ctx, "What is Task Decomposition?")
	require.NoError(t, err)
	defer sr.Close()
	var sb strings.Builder
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		sb.WriteString(chunk)
	}
	assert.Equal(t, "Task decomposition splits work.", sb.String())
	assert.Contains(t, cm.Calls[0][0].Content, "thanks for asking!")
}

func TestRetrievalChain_Plain(t *testing.T) {
	ctx := context.Background()
	cm := modeltest.NewChatModel(modeltest.Reply("Breaking tasks down."))
	combine, err := NewStuffDocumentsChain(ctx, cm, QAPrompt(false))
	require.NoError(t, err)

	rc := NewRetrievalChain(Plain(blogRetriever()), combine)
	out, err := rc.Invoke(ctx, RetrievalInput{Input: "What is Task Decomposition?"})
	require.NoError(t, err)
	assert.Equal(t, "Breaking tasks down.", out.Answer)
	assert.Len(t, out.Context, 2)

	msgs := cm.Calls[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.True(t, strings.HasSuffix(msgs[0].Content, "answer concise.\n\nTask decomposition breaks a task into steps.\n\nChain of thought prompts the model to think step by step."))
	assert.Equal(t, "What is Task Decomposition?", msgs[1].Content)
}

func TestHistoryAwareRetriever(t *testing.T) {
	ctx := context.Background()
	r := blogRetriever()
	cm := modeltest.NewChatModel(modeltest.Reply("  What are common ways of task decomposition?  "))
	h, err := NewHistoryAwareRetriever(ctx, cm, r, ContextualizePrompt())
	require.NoError(t, err)

	docs, err := h.RetrieveDocs(ctx, RetrievalInput{Input: "What is Task Decomposition?"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, 0, cm.CallCount())

	history := []*schema.Message{schema.UserMessage("What is Task Decomposition?"), schema.AssistantMessage("Breaking tasks down.", nil)}
	_, err = h.RetrieveDocs(ctx, RetrievalInput{Input: "What are common ways of doing it?", ChatHistory: history})
	require.NoError(t, err)
	assert.Equal(t, []string{"What is Task Decomposition?", "What are common ways of task decomposition?"}, r.queries)

	require.Equal(t, 1, cm.CallCount())
	msgs := cm.Calls[0]
	require.Len(t, msgs, 4)
	assert.Equal(t, ContextualizeSystemPrompt, msgs[0].Content)
	assert.Equal(t, "Breaking tasks down.", msgs[2].Content)
	assert.Equal(t, "What are common ways of doing it?", msgs[3].Content)
}

func TestConversationalRAG(t *testing.T) {
	ctx := context.Background()
	r := blogRetriever()
	cm := modeltest.NewChatModel(
		modeltest.Reply("Task decomposition breaks tasks into steps."),
		modeltest.Reply("common ways of task decomposition"),
		modeltest.Reply("Chain of thought and tree of thoughts."),
	)
	h, err := NewHistoryAwareRetriever(ctx, cm, r, ContextualizePrompt())
	require.NoError(t, err)
	combine, err := NewStuffDocumentsChain(ctx, cm, QAPrompt(true))
	require.NoError(t, err)
	conv := NewConversationalRAG(NewRetrievalChain(h, combine), session.NewManager(session.NewMemoryStore()))

	out, err := conv.Invoke(ctx, "abc123", "What is Task Decomposition?")
	require.NoError(t, err)
	assert.Equal(t, "Task decomposition breaks tasks into steps.", out.Answer)

	out, err = conv.Invoke(ctx, "abc123", "What are common ways of doing it?")
	require.NoError(t, err)
	assert.Equal(t, "Chain of thought and tree of thoughts.", out.Answer)
	assert.Len(t, out.ChatHistory, 2)
	assert.Equal(t, "common ways of task decomposition", r.queries[1])

	hist, err := conv.History(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, hist, 4)
	assert.Equal(t, schema.User, hist[0].Role)
	assert.Equal(t, schema.Assistant, hist[3].Role)

	none, err := conv.History(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}
