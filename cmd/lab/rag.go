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
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/chain"
	"chain-lab/internal/einoext"
	"chain-lab/internal/pipeline/ingest"
	"chain-lab/internal/runtime/session"
)

const defaultBlogURL = "https://lilianweng.github.io/posts/2023-06-23-agent/"

// RAGCmd 博客文章上的 RAG
type RAGCmd struct {
	Option int    `help:"0: streaming chain; 1: retrieval chain; 2: custom prompt; 3: manual chat history; 4: session-backed conversation." default:"4"`
	URL    string `name:"url" help:"Blog post to index." default:"${blog_url}"`
}

func (c *RAGCmd) runOption() int { return c.Option }

// indexBlog 抓取并索引博客文章，只保留正文相关的 class
func indexBlog(ctx context.Context, a *app, url string) (*einoext.Backend, error) {
	return a.Index(ctx, indexSpec{
		Collection: "blog",
		Loader: ingest.NewWebLoader(&ingest.WebLoaderConfig{
			UserAgent: a.cfg.Ingest.UserAgent,
			Classes:   ingest.DefaultPostClasses,
		}),
		URIs:      []string{url},
		ChunkSize: 1000,
		Overlap:   200,
	})
}

func (c *RAGCmd) Run(ctx context.Context, a *app) error {
	fmt.Println("Hello, LangChain RAG!")

	cm, err := a.ChatModel(ctx, 0.9)
	if err != nil {
		return err
	}
	b, err := indexBlog(ctx, a, c.URL)
	if err != nil {
		return err
	}
	r := b.Retriever
	const question = "What is Task Decomposition?"

	switch c.Option {
	case 0:
		rc, err := chain.NewSimpleRAGChain(ctx, r, cm, chain.RAGPrompt())
		if err != nil {
			return err
		}
		stream, err := rc.Stream(ctx, question)
		if err != nil {
			return err
		}
		defer stream.Close()
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}
			fmt.Print(chunk)
		}
		fmt.Print("\n\n")

	case 1:
		combine, err := chain.NewStuffDocumentsChain(ctx, cm, chain.QAPrompt(false))
		if err != nil {
			return err
		}
		out, err := chain.NewRetrievalChain(chain.Plain(r), combine).Invoke(ctx, chain.RetrievalInput{Input: question})
		if err != nil {
			return err
		}
		fmt.Println(out.Answer)

	case 2:
		rc, err := chain.NewSimpleRAGChain(ctx, r, cm, chain.CustomRAGPrompt())
		if err != nil {
			return err
		}
		answer, err := rc.Invoke(ctx, question)
		if err != nil {
			return err
		}
		fmt.Println(answer)

	case 3:
		rc, err := historyAwareChain(ctx, a, b)
		if err != nil {
			return err
		}
		first, err := rc.Invoke(ctx, chain.RetrievalInput{Input: question})
		if err != nil {
			return err
		}
		history := []*schema.Message{schema.UserMessage(question), schema.AssistantMessage(first.Answer, nil)}
		second, err := rc.Invoke(ctx, chain.RetrievalInput{Input: "What are common ways of doing it?", ChatHistory: history})
		if err != nil {
			return err
		}
		fmt.Println(second.Answer)

	case 4:
		rc, err := historyAwareChain(ctx, a, b)
		if err != nil {
			return err
		}
		conv := chain.NewConversationalRAG(rc, session.NewManager(session.NewMemoryStore()))
		for _, q := range []string{question, "What are common ways of doing it?"} {
			out, err := conv.Invoke(ctx, "abc123", q)
			if err != nil {
				return err
			}
			fmt.Println(out.Answer)
		}
		msgs, err := conv.History(ctx, "abc123")
		if err != nil {
			return err
		}
		for _, m := range msgs {
			prefix := "User"
			if m.Role == schema.Assistant {
				prefix = "AI"
			}
			fmt.Printf("%s: %s\n\n", prefix, m.Content)
		}

	default:
		return wrongOption(c.Option)
	}
	return nil
}

// historyAwareChain 先按对话历史改写问题再检索，回答时带上历史
func historyAwareChain(ctx context.Context, a *app, b *einoext.Backend) (*chain.RetrievalChain, error) {
	cm, err := a.ChatModel(ctx, 0.9)
	if err != nil {
		return nil, err
	}
	har, err := chain.NewHistoryAwareRetriever(ctx, cm, b.Retriever, chain.ContextualizePrompt())
	if err != nil {
		return nil, err
	}
	combine, err := chain.NewStuffDocumentsChain(ctx, cm, chain.QAPrompt(true))
	if err != nil {
		return nil, err
	}
	return chain.NewRetrievalChain(har, combine), nil
}
