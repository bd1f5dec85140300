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
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"chain-lab/pkg/config"
	"chain-lab/pkg/errors"
)

// ChatOptions 聊天模型参数
type ChatOptions struct {
	// Temperature 为 nil 时使用服务端默认
	Temperature *float32
	Stop        []string
	Timeout     time.Duration
}

// Temperature 返回指针，便于 ChatOptions 字面量
func Temperature(t float32) *float32 {
	return &t
}

// NewChatModel 基于 param.json 创建 Azure OpenAI 聊天模型
func NewChatModel(ctx context.Context, p *config.Params, opts ChatOptions) (model.ToolCallingChatModel, error) {
	if err := checkParams(p, "azure_gptx_deployment"); err != nil {
		return nil, err
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		ByAzure:     true,
		BaseURL:     p.APIBase,
		APIVersion:  p.APIVersion,
		APIKey:      p.APIKey,
		Model:       p.ChatDeployment,
		Temperature: opts.Temperature,
		Stop:        opts.Stop,
		Timeout:     opts.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 Azure ChatModel 失败: %w", err)
	}
	return cm, nil
}

func checkParams(p *config.Params, key string) error {
	if p == nil {
		return errors.NewValidationError("param", "parameters not loaded")
	}
	deployment := p.ChatDeployment
	if key == "azure_embd_deployment" {
		deployment = p.EmbeddingDeployment
	}
	if !p.IsAzure() {
		return errors.NewValidationError("azure_apitype", fmt.Sprintf("unsupported api type %q, expected azure", p.APIType))
	}
	if deployment == "" {
		return errors.NewValidationError(key, "deployment name is empty")
	}
	return nil
}
