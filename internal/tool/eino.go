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

package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"chain-lab/pkg/metrics"
)

// einoTool 把 Tool 适配为 eino InvokableTool
type einoTool struct {
	t Tool
}

var _ einotool.InvokableTool = (*einoTool)(nil)

// Eino 适配为 eino 工具；调用耗时记入 lab_tool_duration_seconds
func Eino(t Tool) einotool.InvokableTool {
	return &einoTool{t: t}
}

// EinoTools 批量适配
func EinoTools(tools ...Tool) []einotool.BaseTool {
	out := make([]einotool.BaseTool, len(tools))
	for i, t := range tools {
		out[i] = Eino(t)
	}
	return out
}

func (e *einoTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	s := e.t.Schema()
	params := make(map[string]*schema.ParameterInfo, len(s.Properties))
	for name, p := range s.Properties {
		params[name] = &schema.ParameterInfo{
			Type:     dataType(p.Type),
			Desc:     p.Description,
			Required: slices.Contains(s.Required, name),
		}
	}
	return &schema.ToolInfo{
		Name:        e.t.Name(),
		Desc:        e.t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

func (e *einoTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...einotool.Option) (string, error) {
	start := time.Now()
	defer func() {
		metrics.ToolDuration.WithLabelValues(e.t.Name()).Observe(time.Since(start).Seconds())
	}()

	input := map[string]any{}
	if argumentsInJSON != "" {
		if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
			return "", fmt.Errorf("tool %s: invalid arguments: %w", e.t.Name(), err)
		}
	}
	res, err := e.t.Execute(ctx, input)
	if err != nil {
		return "", err
	}
	if res.Err != "" {
		slog.Warn("工具返回错误", "tool", e.t.Name(), "error", res.Err)
		return "Error: " + res.Err, nil
	}
	return res.Content, nil
}

func dataType(t string) schema.DataType {
	switch t {
	case "integer":
		return schema.Integer
	case "number":
		return schema.Number
	case "boolean":
		return schema.Boolean
	case "object":
		return schema.Object
	case "array":
		return schema.Array
	default:
		return schema.String
	}
}
