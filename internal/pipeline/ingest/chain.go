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

package ingest

import (
	"context"
	"fmt"
	"log/slog"

	einodoc "github.com/cloudwego/eino/components/document"
	einoindexer "github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/pipeline/common"
)

// ChainConfig 组装 Loader → [Enrich] → Transformer → Indexer
type ChainConfig struct {
	Loader      einodoc.Loader
	Enrich      func(docs []*schema.Document) error
	Transformer einodoc.Transformer
	Indexer     einoindexer.Indexer
}

// Chain 数据接入链，输出写入的切片 ID
type Chain struct {
	runnable compose.Runnable[einodoc.Source, []string]
}

// NewChain 编译接入链
func NewChain(ctx context.Context, cfg ChainConfig) (*Chain, error) {
	if cfg.Loader == nil || cfg.Transformer == nil || cfg.Indexer == nil {
		return nil, fmt.Errorf("ingest chain 需要 Loader、Transformer 与 Indexer")
	}
	c := compose.NewChain[einodoc.Source, []string]()
	c.AppendLoader(cfg.Loader, compose.WithNodeName(common.StageLoad))
	if cfg.Enrich != nil {
		enrich := cfg.Enrich
		c.AppendLambda(compose.InvokableLambda(func(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
			if err := enrich(docs); err != nil {
				return nil, err
			}
			return docs, nil
		}), compose.WithNodeName("enrich"))
	}
	c.AppendDocumentTransformer(cfg.Transformer, compose.WithNodeName(common.StageSplit))
	c.AppendIndexer(cfg.Indexer, compose.WithNodeName(common.StageIndex))

	r, err := c.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("编译 ingest chain 失败: %w", err)
	}
	return &Chain{runnable: r}, nil
}

// Ingest 接入单个来源
func (c *Chain) Ingest(ctx context.Context, uri string) ([]string, error) {
	ids, err := c.runnable.Invoke(ctx, einodoc.Source{URI: uri})
	if err != nil {
		return nil, common.NewPipelineError(common.StageIndex, "接入 "+uri+" 失败", err)
	}
	return ids, nil
}

// IngestAll 依次接入；skipFailed 为 true 时记录并跳过失败来源
func (c *Chain) IngestAll(ctx context.Context, uris []string, skipFailed bool) ([]string, error) {
	var all []string
	for _, uri := range uris {
		ids, err := c.Ingest(ctx, uri)
		if err != nil {
			if !skipFailed {
				return nil, err
			}
			slog.Warn("skip source", "uri", uri, "error", err)
			continue
		}
		slog.Debug("ingested", "uri", uri, "chunks", len(ids))
		all = append(all, ids...)
	}
	return all, nil
}
