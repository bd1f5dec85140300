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

package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"chain-lab/pkg/errors"
)

// RequiredParamKeys param.json 中必须存在的键（顺序即校验顺序）
var RequiredParamKeys = []string{
	"azure_apikey",
	"azure_apibase",
	"azure_apitype",
	"azure_apiversion",
	"azure_gptx_deployment",
	"azure_embd_deployment",
}

// Params Azure OpenAI 凭证与部署名
type Params struct {
	APIKey              string `mapstructure:"azure_apikey"`
	APIBase             string `mapstructure:"azure_apibase"`
	APIType             string `mapstructure:"azure_apitype"`
	APIVersion          string `mapstructure:"azure_apiversion"`
	ChatDeployment      string `mapstructure:"azure_gptx_deployment"`
	EmbeddingDeployment string `mapstructure:"azure_embd_deployment"`
}

// SecretResolver 解析 env:/vault: 引用，由 pkg/secrets 实现
type SecretResolver func(ctx context.Context, value string) (string, error)

// LoadParams 读取 param.json；任一必需键缺失返回 *errors.ValidationError
func LoadParams(path string) (*Params, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取参数文件 %s: %w", path, err)
	}
	for _, key := range RequiredParamKeys {
		if !v.IsSet(key) {
			return nil, errors.NewValidationError(key, "missing required key in "+path)
		}
	}

	var p Params
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("无法解析参数文件: %w", err)
	}
	p.expandEnv()
	return &p, nil
}

// fields 返回各字段指针，便于统一替换
func (p *Params) fields() []*string {
	return []*string{&p.APIKey, &p.APIBase, &p.APIType, &p.APIVersion, &p.ChatDeployment, &p.EmbeddingDeployment}
}

// expandEnv 替换 "${ENV}" 形式的值
func (p *Params) expandEnv() {
	for _, f := range p.fields() {
		if strings.HasPrefix(*f, "${") && strings.HasSuffix(*f, "}") {
			envVar := strings.TrimSuffix(strings.TrimPrefix(*f, "${"), "}")
			if val := os.Getenv(envVar); val != "" {
				*f = val
			}
		}
	}
}

// ResolveSecrets 通过 resolver 替换 env:/vault: 引用
func (p *Params) ResolveSecrets(ctx context.Context, resolve SecretResolver) error {
	if resolve == nil {
		return nil
	}
	for i, f := range p.fields() {
		val, err := resolve(ctx, *f)
		if err != nil {
			return fmt.Errorf("解析 %s 失败: %w", RequiredParamKeys[i], err)
		}
		*f = val
	}
	return nil
}

// IsAzure apitype 为空或 azure 时为 true
func (p *Params) IsAzure() bool {
	t := strings.ToLower(strings.TrimSpace(p.APIType))
	return t == "" || t == "azure"
}
