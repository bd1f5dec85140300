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

package metrics

import (
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// DefaultRegistry 全局注册表
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		LLMDuration, LLMTokensTotal,
		RetrievalDocs, ToolDuration,
		CommandTotal, EmbeddingCacheTotal,
		RateLimitWaitSeconds,
	)
}

// LLMDuration 组件调用耗时（秒），component 为 ChatModel/Embedding/Retriever 等
var LLMDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "lab_llm_duration_seconds",
		Help:    "组件调用耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"component"},
)

// LLMTokensTotal LLM 调用 token 数
var LLMTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lab_llm_tokens_total",
		Help: "LLM 调用 token 总数",
	},
	[]string{"direction"}, // input | output
)

// RetrievalDocs 每次检索返回的文档数
var RetrievalDocs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "lab_retrieval_docs",
		Help:    "每次检索返回的文档数",
		Buckets: []float64{0, 1, 2, 4, 8, 16},
	},
	[]string{"retriever"},
)

// ToolDuration 工具调用耗时（秒）
var ToolDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "lab_tool_duration_seconds",
		Help:    "工具调用耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"tool"},
)

// CommandTotal 命令执行次数（按状态）
var CommandTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lab_command_total",
		Help: "命令执行次数",
	},
	[]string{"command", "status"}, // ok | validation | error
)

// EmbeddingCacheTotal embedding 缓存命中情况
var EmbeddingCacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lab_embedding_cache_total",
		Help: "embedding 缓存查询次数",
	},
	[]string{"result"}, // hit | miss
)

// RateLimitWaitSeconds 限流等待耗时（秒）
var RateLimitWaitSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "lab_rate_limit_wait_seconds",
		Help:    "LLM 限流等待耗时（秒）",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	},
	[]string{"kind"}, // request | tokens | concurrency
)

// WritePrometheus 将 Prometheus 文本格式写入 w
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// Handler /metrics HTTP handler
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
}
