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

	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/agent"
	"chain-lab/internal/tool"
	"chain-lab/internal/tool/registry"
)

// AgentCmd Wikipedia 工具 Agent
type AgentCmd struct {
	Option    int  `help:"0: bind tools and print tool calls; 1: ReAct agent with a SQLite checkpointer." default:"1"`
	ShowTools bool `name:"show-tools" help:"Print the tool schemas sent to the model and exit."`
}

func (c *AgentCmd) runOption() int { return c.Option }

func (c *AgentCmd) Run(ctx context.Context, a *app) error {
	fmt.Println("Hello, LangChain Agent!")

	reg := registry.New(tool.NewWikipediaTool(a.cfg.Wikipedia))
	if c.ShowTools {
		out, err := reg.SchemasJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	cm, err := a.ChatModel(ctx, 0.9)
	if err != nil {
		return err
	}
	tools := reg.EinoTools()

	switch c.Option {
	case 0:
		bound, err := agent.BindTools(ctx, cm, tools)
		if err != nil {
			return err
		}
		for _, q := range []string{"hi im bob! and i live in taoyuan city", "who is the mayor of taoyuan city?"} {
			resp, err := bound.Generate(ctx, []*schema.Message{schema.UserMessage(q)})
			if err != nil {
				return err
			}
			fmt.Printf("ContentString: %s\n", resp.Content)
			fmt.Printf("ToolCalls: %s\n", toolCallsString(resp.ToolCalls))
		}
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
		for _, q := range []string{"hi im bob! and i live in taoyuan city", "who is the president of the country of where I live?"} {
			if _, err := ra.Stream(ctx, "abc123", q, printStep); err != nil {
				return err
			}
		}
	default:
		return wrongOption(c.Option)
	}
	return nil
}

func printStep(s agent.Step) {
	fmt.Println(s.String())
	fmt.Println("----")
}

// toolCallsString 形如 [{'name': 'wikipedia', 'args': {"query":"…"}, 'id': 'call_1'}]
func toolCallsString(calls []schema.ToolCall) string {
	parts := make([]string, len(calls))
	for i, tc := range calls {
		args := tc.Function.Arguments
		if args == "" {
			args = "{}"
		}
		parts[i] = fmt.Sprintf("{'name': '%s', 'args': %s, 'id': '%s'}", tc.Function.Name, args, tc.ID)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
