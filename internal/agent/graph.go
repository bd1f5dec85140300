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

	"github.com/cloudwego/eino/components/model"
	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const (
	nodeFinal    = "final"
	maxGraphRuns = 50
)

type messagesState struct {
	Messages []*schema.Message
}

// StateGraph agent ⇄ tools 循环，状态为消息列表；按 thread 检查点
type StateGraph struct {
	run compose.Runnable[[]*schema.Message, []*schema.Message]
	cp  Checkpointer
}

// NewStateGraph 以绑定工具后的模型构建图；cp 可为 nil
func NewStateGraph(ctx context.Context, cm model.ToolCallingChatModel, tools []einotool.BaseTool, cp Checkpointer) (*StateGraph, error) {
	bound, err := BindTools(ctx, cm, tools)
	if err != nil {
		return nil, err
	}
	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{Tools: tools})
	if err != nil {
		return nil, fmt.Errorf("create tools node: %w", err)
	}

	g := compose.NewGraph[[]*schema.Message, []*schema.Message](
		compose.WithGenLocalState(func(ctx context.Context) *messagesState { return &messagesState{} }),
	)
	if err := g.AddChatModelNode(NodeAgent, bound,
		compose.WithStatePreHandler(func(ctx context.Context, in []*schema.Message, s *messagesState) ([]*schema.Message, error) {
			s.Messages = append(s.Messages, in...)
			return s.Messages, nil
		}),
		compose.WithStatePostHandler(func(ctx context.Context, out *schema.Message, s *messagesState) (*schema.Message, error) {
			s.Messages = append(s.Messages, out)
			return out, nil
		}),
	); err != nil {
		return nil, err
	}
	if err := g.AddToolsNode(NodeTools, toolsNode); err != nil {
		return nil, err
	}
	if err := g.AddLambdaNode(nodeFinal, compose.InvokableLambda(func(ctx context.Context, _ *schema.Message) ([]*schema.Message, error) {
		var out []*schema.Message
		err := compose.ProcessState(ctx, func(ctx context.Context, s *messagesState) error {
			out = s.Messages
			return nil
		})
		return out, err
	})); err != nil {
		return nil, err
	}

	if err := g.AddEdge(compose.START, NodeAgent); err != nil {
		return nil, err
	}
	shouldContinue := compose.NewGraphBranch(func(ctx context.Context, msg *schema.Message) (string, error) {
		if len(msg.ToolCalls) > 0 {
			return NodeTools, nil
		}
		return nodeFinal, nil
	}, map[string]bool{NodeTools: true, nodeFinal: true})
	if err := g.AddBranch(NodeAgent, shouldContinue); err != nil {
		return nil, err
	}
	if err := g.AddEdge(NodeTools, NodeAgent); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeFinal, compose.END); err != nil {
		return nil, err
	}

	run, err := g.Compile(ctx, compose.WithGraphName("state_graph"), compose.WithMaxRunSteps(maxGraphRuns))
	if err != nil {
		return nil, fmt.Errorf("compile state graph: %w", err)
	}
	return &StateGraph{run: run, cp: cp}, nil
}

// Invoke 以 thread 历史加 msgs 为初始状态运行，返回最终全部消息并写回检查点
func (g *StateGraph) Invoke(ctx context.Context, threadID string, msgs []*schema.Message) ([]*schema.Message, error) {
	var history []*schema.Message
	if g.cp != nil {
		h, err := g.cp.Get(ctx, threadID)
		if err != nil {
			return nil, err
		}
		history = h
	}
	final, err := g.run.Invoke(ctx, append(history, msgs...))
	if err != nil {
		return nil, err
	}
	if g.cp != nil {
		if err := g.cp.Put(ctx, threadID, final); err != nil {
			return nil, err
		}
	}
	return final, nil
}
