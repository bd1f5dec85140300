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
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-lab/internal/model/modeltest"
	"chain-lab/internal/storage/cache"
	"chain-lab/pkg/config"
	"chain-lab/pkg/errors"
)

func params() *config.Params {
	return &config.Params{
		APIKey:              "key",
		APIBase:             "https://example.openai.azure.com/",
		APIType:             "azure",
		APIVersion:          "2024-02-01",
		ChatDeployment:      "gpt-4o",
		EmbeddingDeployment: "text-embedding-3-small",
	}
}

func TestNewChatModel(t *testing.T) {
	ctx := context.Background()
	cm, err := NewChatModel(ctx, params(), ChatOptions{Temperature: Temperature(0)})
	require.NoError(t, err)
	assert.NotNil(t, cm)

	p := params()
	p.APIType = "open_ai"
	_, err = NewChatModel(ctx, p, ChatOptions{})
	var ve *errors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "azure_apitype", ve.Field)

	p = params()
	p.ChatDeployment = ""
	_, err = NewChatModel(ctx, p, ChatOptions{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "azure_gptx_deployment", ve.Field)

	_, err = NewChatModel(ctx, nil, ChatOptions{})
	assert.Error(t, err)
}

func TestNewEmbedder(t *testing.T) {
	ctx := context.Background()
	emb, err := NewEmbedder(ctx, params())
	require.NoError(t, err)
	assert.NotNil(t, emb)

	p := params()
	p.EmbeddingDeployment = ""
	_, err = NewEmbedder(ctx, p)
	var ve *errors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "azure_embd_deployment", ve.Field)
}

func TestRateLimiter_Concurrency(t *testing.T) {
	l := NewRateLimiter(LimitConfig{MaxConcurrent: 1})
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, 10))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(short, 10))

	l.Release()
	require.NoError(t, l.Wait(ctx, 5))
	stats := l.Stats()
	assert.Equal(t, 15, stats["tokens_used_minute"])
	assert.Equal(t, 1, stats["current_concurrent"])
}

func TestRateLimiter_TokenBudgetOverBurst(t *testing.T) {
	l := NewRateLimiter(LimitConfig{TokensPerMinute: 600})
	// burst 为 20，超大请求按 burst 预扣，不报错
	require.NoError(t, l.Wait(context.Background(), 100))
}

func TestRateLimitedChatModel(t *testing.T) {
	fake := modeltest.NewChatModel(modeltest.Reply("hello"), modeltest.Reply("again"))
	m := NewRateLimitedChatModel(fake, NewRateLimiter(LimitConfig{MaxConcurrent: 2}), nil)

	out, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Content)

	bound, err := m.WithTools([]*schema.ToolInfo{{Name: "wikipedia"}})
	require.NoError(t, err)
	assert.IsType(t, &RateLimitedChatModel{}, bound)
	require.Len(t, fake.Tools, 1)

	sr, err := bound.Stream(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	defer sr.Close()
	msg, err := sr.Recv()
	require.NoError(t, err)
	assert.Equal(t, "again", msg.Content)
}

func TestCachedEmbedder(t *testing.T) {
	ctx := context.Background()
	inner := modeltest.NewHashEmbedder()
	emb := NewCachedEmbedder(inner, cache.NewMemoryStore(), 0)

	first, err := emb.EmbedStrings(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)
	second, err := emb.EmbedStrings(ctx, []string{"beta", "gamma", "alpha"})
	require.NoError(t, err)

	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[2])
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, inner.Texts)

	assert.Same(t, inner, NewCachedEmbedder(inner, nil, 0))
}
