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

	"chain-lab/internal/agent"
	"chain-lab/internal/tool"
)

// RAGAgentCmd 以检索工具回答博客问题的 Agent
type RAGAgentCmd struct {
	Option int    `help:"0: stateless agent; 1: agent with a SQLite checkpointer over three turns." default:"1"`
	URL    string `name:"url" help:"Blog post to index." default:"${blog_url}"`
}

func (c *RAGAgentCmd) runOption() int { return c.Option }

func (c *RAGAgentCmd) Run(ctx context.Context, a *app) error {
	fmt.Println("Hello LangChain RAG Agent!")

	cm, err := a.ChatModel(ctx, 0.9)
	if err != nil {
		return err
	}
	b, err := indexBlog(ctx, a, c.URL)
	if err != nil {
		return err
	}
	tools := tool.EinoTools(tool.NewRetrieverTool(b.Retriever,
		"blog_post_retriever",
		"Searches and returns excerpts from the Autonomous Agents blog post.",
	))

	switch c.Option {
	case 0:
		ra, err := agent.NewReactAgent(ctx, &agent.ReactConfig{Model: cm, Tools: tools})
		if err != nil {
			return err
		}
		_, err = ra.Stream(ctx, "", "What is Task Decomposition?", printStep)
		return err
	case 1:
		saver, err := agent.NewSQLiteSaver(ctx, "")
		if err != nil {
			return err
		}
		defer saver.Close()
		ra, err := agent.NewReactAgent(ctx, &agent.ReactConfig{Model: cm, Tools: tools, Checkpointer: saver})
		if err != nil {
			return err
		}
		for _, q := range []string{
			"Hi! I'm bob",
			"What is Task Decomposition?",
			"What according to the blog post are common ways of doing it? redo the search",
		} {
			if _, err := ra.Stream(ctx, "abc123", q, printStep); err != nil {
				return err
			}
		}
	default:
		return wrongOption(c.Option)
	}
	return nil
}
