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
	"log/slog"
	"net/http"
	"time"

	"github.com/cloudwego/eino-ext/devops"
	einodoc "github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/embedding"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"chain-lab/internal/einoext"
	"chain-lab/internal/model"
	"chain-lab/internal/pipeline/ingest"
	"chain-lab/internal/splitter"
	"chain-lab/internal/storage/cache"
	"chain-lab/pkg/config"
	"chain-lab/pkg/log"
	"chain-lab/pkg/metrics"
	"chain-lab/pkg/secrets"
	"chain-lab/pkg/tracing"
	"chain-lab/pkg/utils"
)

// app 一次进程内各命令共享的依赖
type app struct {
	cli    *CLI
	cfg    *config.Config
	logger *log.Logger

	params    *config.Params
	limiter   *model.RateLimiter
	tokenizer splitter.Tokenizer
	embCache  cache.Store
	splitters *splitter.Engine

	closers []func(context.Context) error
}

func newApp(ctx context.Context, cli *CLI) (*app, error) {
	cfg, err := config.LoadConfig(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	logger, err := log.NewLogger(&log.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return nil, err
	}
	logger.SetDefault()

	a := &app{cli: cli, cfg: cfg, logger: logger}
	a.closers = append(a.closers, func(context.Context) error { return logger.Close() })

	// devops 须在任何 Compile 之前初始化
	if cli.Devops {
		if err := devops.Init(ctx); err != nil {
			return nil, fmt.Errorf("eino devops init: %w", err)
		}
		slog.Info("eino devops 已启动", "addr", "127.0.0.1:52538")
	}
	einoext.InstallGlobalCallbacks(logger.Logger)

	if tc := cfg.Monitoring.Tracing; tc.Enable {
		tp, err := tracing.InitTracer(ctx, tracing.OTelConfig{
			ServiceName:    tc.ServiceName,
			ExportEndpoint: tc.ExportEndpoint,
			Insecure:       tc.Insecure,
		})
		if err != nil {
			return nil, fmt.Errorf("初始化 tracing 失败: %w", err)
		}
		a.closers = append(a.closers, tp.Shutdown)
	}

	addr := cli.MetricsAddr
	if addr == "" && cfg.Monitoring.Prometheus.Enable {
		addr = cfg.Monitoring.Prometheus.Addr
	}
	if addr != "" {
		a.serveMetrics(addr)
	}

	rl := cfg.RateLimits.LLM
	limited := rl.RequestsPerMinute > 0 || rl.TokensPerMinute > 0 || rl.MaxConcurrent > 0
	// tiktoken 首次使用需下载编码表，只在需要时加载
	if limited || cfg.Ingest.Splitter == "token" {
		tk, err := splitter.NewTiktoken("gpt-4")
		if err != nil {
			slog.Warn("tiktoken 不可用，按字符估算 token", "error", err)
		} else {
			a.tokenizer = tk
		}
	}
	a.splitters = splitter.NewEngine(a.tokenizer)
	if limited {
		a.limiter = model.NewRateLimiter(model.LimitConfig{
			TokensPerMinute:   rl.TokensPerMinute,
			RequestsPerMinute: rl.RequestsPerMinute,
			MaxConcurrent:     rl.MaxConcurrent,
		})
	}

	store, err := cache.NewCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	if store != nil {
		a.embCache = store
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
	}
	return a, nil
}

// metricsRouter /metrics 与 /health 路由
func metricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

func (a *app) serveMetrics(addr string) {
	srv := &http.Server{Addr: addr, Handler: metricsRouter(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server 异常退出", "addr", addr, "error", err)
		}
	}()
	slog.Info("metrics server 已启动", "addr", addr)
	a.closers = append(a.closers, srv.Shutdown)
}

// Params 首次调用时读取 param.json 并解析 env:/vault: 引用
func (a *app) Params(ctx context.Context) (*config.Params, error) {
	if a.params != nil {
		return a.params, nil
	}
	p, err := config.LoadParams(a.cli.Param)
	if err != nil {
		return nil, err
	}
	store, err := secrets.NewStore(a.cfg.Secrets)
	if err != nil {
		return nil, err
	}
	if err := p.ResolveSecrets(ctx, secrets.NewResolver(store).Resolve); err != nil {
		return nil, err
	}
	a.params = p
	return p, nil
}

// ChatModel Azure 聊天模型，配置了限额时包一层限流
func (a *app) ChatModel(ctx context.Context, temperature float32) (einomodel.ToolCallingChatModel, error) {
	p, err := a.Params(ctx)
	if err != nil {
		return nil, err
	}
	cm, err := model.NewChatModel(ctx, p, model.ChatOptions{Temperature: model.Temperature(temperature)})
	if err != nil {
		return nil, err
	}
	if a.limiter != nil {
		return model.NewRateLimitedChatModel(cm, a.limiter, a.tokenizer), nil
	}
	return cm, nil
}

// Embedder Azure embedding，配置了缓存时走 CachedEmbedder
func (a *app) Embedder(ctx context.Context) (embedding.Embedder, error) {
	p, err := a.Params(ctx)
	if err != nil {
		return nil, err
	}
	emb, err := model.NewEmbedder(ctx, p)
	if err != nil {
		return nil, err
	}
	ttl, err := cache.ParseTTL(a.cfg.Cache.TTL)
	if err != nil {
		return nil, err
	}
	return model.NewCachedEmbedder(emb, a.embCache, ttl), nil
}

// Splitter 按配置的切片器类型构造
func (a *app) Splitter(size, overlap int) (splitter.Splitter, error) {
	name := utils.CoalesceString(a.cfg.Ingest.Splitter, "recursive")
	return a.splitters.Get(name, splitter.Options{ChunkSize: size, ChunkOverlap: overlap})
}

// indexSpec 一次接入：来源、切片参数与可选的元数据补充
type indexSpec struct {
	Collection string
	Loader     einodoc.Loader
	Enrich     func(docs []*schema.Document) error
	URIs       []string
	ChunkSize  int
	Overlap    int
	SkipFailed bool
}

// Index 加载、切片并写入向量库，返回可检索的后端
func (a *app) Index(ctx context.Context, spec indexSpec) (*einoext.Backend, error) {
	emb, err := a.Embedder(ctx)
	if err != nil {
		return nil, err
	}
	sp, err := a.Splitter(spec.ChunkSize, spec.Overlap)
	if err != nil {
		return nil, err
	}
	b, err := einoext.NewBackend(ctx, a.cfg.Vector, spec.Collection, emb)
	if err != nil {
		return nil, err
	}
	c, err := ingest.NewChain(ctx, ingest.ChainConfig{
		Loader:      spec.Loader,
		Enrich:      spec.Enrich,
		Transformer: ingest.NewSplitterTransformer(sp),
		Indexer:     b.Indexer,
	})
	if err != nil {
		b.Close()
		return nil, err
	}
	ids, err := c.IngestAll(ctx, spec.URIs, spec.SkipFailed)
	if err != nil {
		b.Close()
		return nil, err
	}
	slog.Info("索引完成", "collection", spec.Collection, "chunks", len(ids))
	a.closers = append(a.closers, func(context.Context) error { return b.Close() })
	return b, nil
}

// Close 逆序释放资源
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			slog.Warn("释放资源失败", "error", err)
		}
	}
}
