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

package einoext

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"chain-lab/pkg/metrics"
	"chain-lab/pkg/tracing"
)

type runKey struct{}

type runState struct {
	start time.Time
	span  trace.Span
}

// NewCallbackHandler eino 全局回调：组件耗时、token 用量、span 与 debug 日志
func NewCallbackHandler(logger *slog.Logger) callbacks.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
			if info == nil {
				return ctx
			}
			ctx, span := tracing.StartComponentSpan(ctx, componentName(info), info.Name)
			logger.DebugContext(ctx, "component start", "component", componentName(info), "name", info.Name)
			return context.WithValue(ctx, runKey{}, &runState{start: time.Now(), span: span})
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			st, ok := ctx.Value(runKey{}).(*runState)
			if !ok || info == nil {
				return ctx
			}
			elapsed := time.Since(st.start)
			metrics.LLMDuration.WithLabelValues(componentName(info)).Observe(elapsed.Seconds())
			if info.Component == components.ComponentOfChatModel {
				recordTokenUsage(model.ConvCallbackOutput(output))
			}
			st.span.End()
			logger.DebugContext(ctx, "component end", "component", componentName(info), "name", info.Name, "elapsed", elapsed)
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			st, ok := ctx.Value(runKey{}).(*runState)
			if ok {
				st.span.RecordError(err)
				st.span.SetStatus(codes.Error, err.Error())
				st.span.End()
			}
			if info != nil {
				logger.WarnContext(ctx, "component error", "component", componentName(info), "name", info.Name, "error", err)
			}
			return ctx
		}).
		Build()
}

// InstallGlobalCallbacks 注册为进程级 eino 回调
func InstallGlobalCallbacks(logger *slog.Logger) {
	callbacks.AppendGlobalHandlers(NewCallbackHandler(logger))
}

func componentName(info *callbacks.RunInfo) string {
	if info.Component != "" {
		return string(info.Component)
	}
	if info.Type != "" {
		return info.Type
	}
	return "Unknown"
}

func recordTokenUsage(out *model.CallbackOutput) {
	if out == nil || out.TokenUsage == nil {
		return
	}
	metrics.LLMTokensTotal.WithLabelValues("input").Add(float64(out.TokenUsage.PromptTokens))
	metrics.LLMTokensTotal.WithLabelValues("output").Add(float64(out.TokenUsage.CompletionTokens))
}
