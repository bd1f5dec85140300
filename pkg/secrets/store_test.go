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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-lab/pkg/config"
	"chain-lab/pkg/errors"
)

func TestNewStore(t *testing.T) {
	for _, provider := range []string{"", "env", "memory"} {
		s, err := NewStore(config.SecretsConfig{Provider: provider})
		require.NoError(t, err, provider)
		assert.NotNil(t, s)
	}
	_, err := NewStore(config.SecretsConfig{Provider: "k8s"})
	assert.ErrorContains(t, err, "unsupported secret provider")
}

func TestMemoryAndEnvStoreBasicContract(t *testing.T) {
	ctx := context.Background()
	t.Setenv("SECRET_TEST_KEY", "")
	for _, s := range []Store{NewMemoryStore(), NewEnvStore()} {
		require.NoError(t, s.Set(ctx, "SECRET_TEST_KEY", "value"))
		got, err := s.Get(ctx, "SECRET_TEST_KEY")
		require.NoError(t, err)
		assert.Equal(t, "value", got)

		keys, err := s.List(ctx, "SECRET_TEST_")
		require.NoError(t, err)
		assert.Contains(t, keys, "SECRET_TEST_KEY")

		require.NoError(t, s.Delete(ctx, "SECRET_TEST_KEY"))
		_, err = s.Get(ctx, "SECRET_TEST_KEY")
		assert.ErrorIs(t, err, errors.ErrNotFound)
	}
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	t.Setenv("LAB_AZURE_KEY", "k-env")
	mem := NewMemoryStore()
	require.NoError(t, mem.Set(ctx, "azure/key", "k-store"))
	r := NewResolver(mem)

	got, err := r.Resolve(ctx, "env:LAB_AZURE_KEY")
	require.NoError(t, err)
	assert.Equal(t, "k-env", got)

	got, err = r.Resolve(ctx, "secret:azure/key")
	require.NoError(t, err)
	assert.Equal(t, "k-store", got)

	got, err = r.Resolve(ctx, "https://example.openai.azure.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://example.openai.azure.com/", got)

	got, err = r.Resolve(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", got)

	_, err = NewResolver(nil).Resolve(ctx, "vault:azure#key")
	assert.Error(t, err)
}

func TestVaultStore_GetKV2(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/secret/data/azure", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"apikey":"from-vault","other":"x"}}}`))
	}))
	defer srv.Close()

	s, err := NewVaultStore(VaultConfig{Address: srv.URL, Token: "t"})
	require.NoError(t, err)
	got, err := s.Get(context.Background(), "data/azure#apikey")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", got)
}
