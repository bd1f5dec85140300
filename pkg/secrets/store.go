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

// Package secrets 解析 param.json 中的密钥引用（env: / vault: / secret:）
package secrets

import (
	"context"
	"fmt"
	"strings"

	"chain-lab/pkg/config"
)

// Store Secret 存储接口
type Store interface {
	// Get 读取 secret 值
	Get(ctx context.Context, key string) (string, error)
	// Set 设置 secret 值
	Set(ctx context.Context, key string, value string) error
	// Delete 删除 secret
	Delete(ctx context.Context, key string) error
	// List 列出前缀匹配的 secret keys
	List(ctx context.Context, prefix string) ([]string, error)
}

// NewStore 根据配置创建 Secret Store
func NewStore(cfg config.SecretsConfig) (Store, error) {
	switch cfg.Provider {
	case "", "env":
		return NewEnvStore(), nil
	case "memory":
		return NewMemoryStore(), nil
	case "vault":
		return NewVaultStore(VaultConfig{
			Address:    cfg.Address,
			Token:      cfg.Token,
			PathPrefix: cfg.PathPrefix,
		})
	default:
		return nil, fmt.Errorf("unsupported secret provider: %s", cfg.Provider)
	}
}

// Resolver 按前缀把引用分派到对应 Store；无前缀的值原样返回
type Resolver struct {
	env   Store
	store Store
}

// NewResolver env: 始终读环境变量，vault:/secret: 读 store（可为 nil）
func NewResolver(store Store) *Resolver {
	return &Resolver{env: NewEnvStore(), store: store}
}

// Resolve 解析单个值
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	scheme, ref, ok := strings.Cut(value, ":")
	if !ok {
		return value, nil
	}
	switch scheme {
	case "env":
		return r.env.Get(ctx, ref)
	case "vault", "secret":
		if r.store == nil {
			return "", fmt.Errorf("secret store not configured for %q", value)
		}
		return r.store.Get(ctx, ref)
	default:
		// https://... 等普通值
		return value, nil
	}
}
