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
	"encoding/json"

	"github.com/cloudwego/eino/schema"
)

// 步骤来源节点
const (
	NodeAgent = "agent"
	NodeTools = "tools"
)

// Step Agent 运行中的一步：模型输出或工具结果
type Step struct {
	Node     string
	Messages []*schema.Message
}

type stepMessage struct {
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Name      string            `json:"name,omitempty"`
	ToolCalls []schema.ToolCall `json:"tool_calls,omitempty"`
}

// String 形如 {"agent":{"messages":[...]}}
func (s Step) String() string {
	msgs := make([]stepMessage, len(s.Messages))
	for i, m := range s.Messages {
		msgs[i] = stepMessage{Role: string(m.Role), Content: m.Content, Name: m.ToolName, ToolCalls: m.ToolCalls}
	}
	raw, err := json.Marshal(map[string]any{s.Node: map[string]any{"messages": msgs}})
	if err != nil {
		return s.Node
	}
	return string(raw)
}

func stepOf(msg *schema.Message) Step {
	node := NodeAgent
	if msg.Role == schema.Tool {
		node = NodeTools
	}
	return Step{Node: node, Messages: []*schema.Message{msg}}
}
