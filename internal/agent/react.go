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

package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/components/model"
	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/pipeline/common"
)

// ReactConfig ReAct Agent 配置
type ReactConfig struct {
	Name        string
	Description string
	// Instruction 非空时作为 system 消息
	Instruction   string
	Model         model.ToolCallingChatModel
	Tools         []einotool.BaseTool
	MaxIterations int
	// Checkpointer 为 nil 时每次调用都是新对话
	Checkpointer Checkpointer
}

// ReactAgent 基于 adk.ChatModelAgent 的工具调用循环
type ReactAgent struct {
	runner *adk.Runner
	cp     Checkpointer
}

// NewReactAgent 创建 Agent
func NewReactAgent(ctx context.Context, cfg *ReactConfig) (*ReactAgent, error) {
	name := cfg.Name
	if name == "" {
		name = "react_agent"
	}
	desc := cfg.Description
	if desc == "" {
		desc = "answers questions with the help of tools"
	}
	a, err := adk.NewChatModelAgent(ctx, &adk.ChatModelAgentConfig{
		Name:        name,
		Description: desc,
		Instruction: cfg.Instruction,
		Model:       cfg.Model,
		ToolsConfig: adk.ToolsConfig{
			ToolsNodeConfig: compose.ToolsNodeConfig{Tools: cfg.Tools},
		},
		MaxIterations: cfg.MaxIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 ChatModelAgent 失败: %w", err)
	}
	return &ReactAgent{
		runner: adk.NewRunner(ctx, adk.RunnerConfig{Agent: a}),
		cp:     cfg.Checkpointer,
	}, nil
}

// Stream 读入 thread 历史并追加 input，运行 Agent，每条模型或工具消息回调一次 fn；返回本轮新产生的消息
func (a *ReactAgent) Stream(ctx context.Context, threadID, input string, fn func(Step)) ([]*schema.Message, error) {
	var history []*schema.Message
	if a.cp != nil {
		h, err := a.cp.Get(ctx, threadID)
		if err != nil {
			return nil, err
		}
		history = h
	}
	msgs := append(history, schema.UserMessage(input))

	var produced []*schema.Message
	iter := a.runner.Run(ctx, msgs)
	for {
		ev, ok := iter.Next()
		if !ok {
			break
		}
		if ev.Err != nil {
			return produced, common.NewPipelineError("agent", "Agent 运行失败", ev.Err)
		}
		if ev.Output == nil || ev.Output.MessageOutput == nil {
			continue
		}
		msg, err := ev.Output.MessageOutput.GetMessage()
		if err != nil {
			return produced, common.NewPipelineError("agent", "读取 Agent 输出失败", err)
		}
		if msg == nil {
			continue
		}
		produced = append(produced, msg)
		if fn != nil {
			fn(stepOf(msg))
		}
	}

	if a.cp != nil {
		if err := a.cp.Put(ctx, threadID, append(msgs, produced...)); err != nil {
			return produced, err
		}
	}
	slog.Debug("agent 运行结束", "thread", threadID, "messages", len(produced))
	return produced, nil
}

// Invoke 同 Stream，返回最后一条消息正文
func (a *ReactAgent) Invoke(ctx context.Context, threadID, input string) (string, error) {
	msgs, err := a.Stream(ctx, threadID, input, nil)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", nil
	}
	return msgs[len(msgs)-1].Content, nil
}
