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
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/embedding"

	"chain-lab/internal/storage/cache"
	"chain-lab/pkg/metrics"
)

// CachedEmbedder 以 "emb:<sha256>" 为键缓存向量，只对未命中的文本调用下游
type CachedEmbedder struct {
	inner embedding.Embedder
	store cache.Store
	ttl   time.Duration
}

var _ embedding.Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder 包装 Embedder；store 为 nil 时直接返回 inner
func NewCachedEmbedder(inner embedding.Embedder, store cache.Store, ttl time.Duration) embedding.Embedder {
	if store == nil {
		return inner
	}
	return &CachedEmbedder{inner: inner, store: store, ttl: ttl}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + hex.EncodeToString(sum[:])
}

func (e *CachedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		var vec []float64
		err := e.store.Get(ctx, cacheKey(text), &vec)
		if err == nil {
			out[i] = vec
			metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			continue
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("embedding cache lookup failed", "error", err)
		}
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := e.inner.EmbedStrings(ctx, missTexts, opts...)
	if err != nil {
		return nil, err
	}
	for j, vec := range vecs {
		out[missIdx[j]] = vec
		if err := e.store.Set(ctx, cacheKey(missTexts[j]), vec, e.ttl); err != nil {
			slog.Warn("embedding cache write failed", "error", err)
		}
	}
	return out, nil
}
