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

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-lab/pkg/config"
)

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	s, err := NewCache(ctx, config.CacheConfig{Type: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = NewCache(ctx, config.CacheConfig{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = NewCache(ctx, config.CacheConfig{Type: "memcached"})
	assert.Error(t, err)
}

func TestParseTTL(t *testing.T) {
	d, err := ParseTTL("")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = ParseTTL("24h")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, d)

	_, err = ParseTTL("soon")
	assert.Error(t, err)
}

// 需要本地 Redis：LAB_TEST_REDIS_ADDR=localhost:6379
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("LAB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LAB_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, addr, "", 0, "lab:test:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))
	var got map[string]int
	require.NoError(t, s.Get(ctx, "k", &got))
	assert.Equal(t, 1, got["a"])

	require.NoError(t, s.Clear(ctx))
	assert.ErrorIs(t, s.Get(ctx, "k", &got), ErrMiss)
}
