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

package model

import (
	"context"
	"fmt"

	openaiemb "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"

	"chain-lab/pkg/config"
)

// NewEmbedder 基于 param.json 创建 Azure OpenAI embedding
func NewEmbedder(ctx context.Context, p *config.Params) (embedding.Embedder, error) {
	if err := checkParams(p, "azure_embd_deployment"); err != nil {
		return nil, err
	}
	emb, err := openaiemb.NewEmbedder(ctx, &openaiemb.EmbeddingConfig{
		ByAzure:    true,
		BaseURL:    p.APIBase,
		APIVersion: p.APIVersion,
		APIKey:     p.APIKey,
		Model:      p.EmbeddingDeployment,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 Azure Embedder 失败: %w", err)
	}
	return emb, nil
}
