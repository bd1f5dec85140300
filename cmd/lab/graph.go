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

	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/agent"
	"chain-lab/internal/tool"
)

// GraphCmd 显式 agent/tools 状态图
type GraphCmd struct {
	Option int `help:"0: run the state graph with an in-memory checkpointer." default:"0"`
}

func (c *GraphCmd) runOption() int { return c.Option }

func (c *GraphCmd) Run(ctx context.Context, a *app) error {
	fmt.Println("Hello Langgraph!")

	cm, err := a.ChatModel(ctx, 0.9)
	if err != nil {
		return err
	}
	switch c.Option {
	case 0:
		g, err := agent.NewStateGraph(ctx, cm, tool.EinoTools(tool.NewWikipediaTool(a.cfg.Wikipedia)), agent.NewMemorySaver())
		if err != nil {
			return err
		}
		final, err := g.Invoke(ctx, "42", []*schema.Message{schema.UserMessage("who is the president of taiwan?")})
		if err != nil {
			return err
		}
		if len(final) > 0 {
			fmt.Println(final[len(final)-1].Content)
		}
	default:
		return wrongOption(c.Option)
	}
	return nil
}
