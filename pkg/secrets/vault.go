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

package secrets

import (
	"context"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"

	"chain-lab/pkg/errors"
)

// VaultConfig Vault 配置
type VaultConfig struct {
	Address    string // 如 http://vault:8200
	Token      string
	PathPrefix string // 如 "secret"
}

// vaultStore 引用格式 "path#field"，field 缺省时取 value 或唯一字符串字段
type vaultStore struct {
	client     *vault.Client
	pathPrefix string
}

// NewVaultStore 创建 Vault secret store
func NewVaultStore(config VaultConfig) (Store, error) {
	cfg := vault.DefaultConfig()
	if config.Address != "" {
		cfg.Address = config.Address
	}
	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Token != "" {
		client.SetToken(config.Token)
	}
	prefix := strings.Trim(config.PathPrefix, "/")
	if prefix == "" {
		prefix = "secret"
	}
	return &vaultStore{client: client, pathPrefix: prefix}, nil
}

func (v *vaultStore) Get(ctx context.Context, key string) (string, error) {
	path, field, _ := strings.Cut(key, "#")
	secret, err := v.client.Logical().ReadWithContext(ctx, v.buildPath(path))
	if err != nil {
		return "", fmt.Errorf("failed to read secret from vault: %w", err)
	}
	if secret == nil {
		return "", errors.Wrapf(errors.ErrNotFound, "vault secret %s", path)
	}
	return pickField(secret.Data, field)
}

// pickField 兼容 KV v2（data 嵌套一层）
func pickField(data map[string]interface{}, field string) (string, error) {
	if inner, ok := data["data"].(map[string]interface{}); ok {
		data = inner
	}
	if field == "" {
		field = "value"
	}
	if s, ok := data[field].(string); ok {
		return s, nil
	}
	if len(data) == 1 {
		for _, val := range data {
			if s, ok := val.(string); ok {
				return s, nil
			}
		}
	}
	return "", errors.Wrapf(errors.ErrNotFound, "vault field %s", field)
}

func (v *vaultStore) Set(ctx context.Context, key string, value string) error {
	path, field, _ := strings.Cut(key, "#")
	if field == "" {
		field = "value"
	}
	_, err := v.client.Logical().WriteWithContext(ctx, v.buildPath(path), map[string]interface{}{field: value})
	if err != nil {
		return fmt.Errorf("failed to write secret to vault: %w", err)
	}
	return nil
}

func (v *vaultStore) Delete(ctx context.Context, key string) error {
	path, _, _ := strings.Cut(key, "#")
	if _, err := v.client.Logical().DeleteWithContext(ctx, v.buildPath(path)); err != nil {
		return fmt.Errorf("failed to delete secret from vault: %w", err)
	}
	return nil
}

func (v *vaultStore) List(ctx context.Context, prefix string) ([]string, error) {
	secret, err := v.client.Logical().ListWithContext(ctx, v.buildPath(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets from vault: %w", err)
	}
	if secret == nil {
		return nil, nil
	}
	keys, _ := secret.Data["keys"].([]interface{})
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if s, ok := k.(string); ok {
			out = append(out, strings.TrimPrefix(prefix+"/"+s, "/"))
		}
	}
	return out, nil
}

func (v *vaultStore) buildPath(key string) string {
	return strings.TrimSuffix(v.pathPrefix+"/"+strings.Trim(key, "/"), "/")
}
