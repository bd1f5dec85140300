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
	"sync"
	"time"

	"golang.org/x/time/rate"

	"chain-lab/pkg/metrics"
)

// LimitConfig LLM 调用限额，0 表示不限制
type LimitConfig struct {
	TokensPerMinute   int
	RequestsPerMinute float64
	MaxConcurrent     int
}

// RateLimiter 请求数、token 预算与并发三重限流
type RateLimiter struct {
	requestLimiter *rate.Limiter
	tokenLimiter   *rate.Limiter
	semaphore      chan struct{}
	config         LimitConfig

	mu               sync.Mutex
	tokensUsedMinute int
	minuteStart      time.Time
}

// NewRateLimiter 创建限流器；burst 为 2 秒配额
func NewRateLimiter(cfg LimitConfig) *RateLimiter {
	l := &RateLimiter{config: cfg, minuteStart: time.Now()}

	if cfg.RequestsPerMinute > 0 {
		rps := cfg.RequestsPerMinute / 60.0
		burst := max(int(rps*2), 1)
		l.requestLimiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	if cfg.TokensPerMinute > 0 {
		tps := float64(cfg.TokensPerMinute) / 60.0
		burst := max(cfg.TokensPerMinute/60*2, 1)
		l.tokenLimiter = rate.NewLimiter(rate.Limit(tps), burst)
	}
	if cfg.MaxConcurrent > 0 {
		l.semaphore = make(chan struct{}, cfg.MaxConcurrent)
	}
	return l
}

// Wait 阻塞直至可以发起一次调用；成功后须调用 Release
func (l *RateLimiter) Wait(ctx context.Context, estimatedTokens int) error {
	if l.requestLimiter != nil {
		start := time.Now()
		if err := l.requestLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("request rate limit wait failed: %w", err)
		}
		observeWait("request", start)
	}

	if l.tokenLimiter != nil && estimatedTokens > 0 {
		// 超过 burst 的请求按 burst 预扣，否则 WaitN 直接报错
		n := min(estimatedTokens, l.tokenLimiter.Burst())
		start := time.Now()
		if err := l.tokenLimiter.WaitN(ctx, n); err != nil {
			return fmt.Errorf("token budget wait failed: %w", err)
		}
		observeWait("tokens", start)
	}

	if l.semaphore != nil {
		start := time.Now()
		select {
		case l.semaphore <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		observeWait("concurrency", start)
	}

	l.RecordTokenUsage(estimatedTokens)
	return nil
}

// Release 释放并发 slot
func (l *RateLimiter) Release() {
	if l.semaphore == nil {
		return
	}
	select {
	case <-l.semaphore:
	default:
	}
}

// RecordTokenUsage 记录本分钟 token 用量
func (l *RateLimiter) RecordTokenUsage(tokens int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if now.Sub(l.minuteStart) > time.Minute {
		l.tokensUsedMinute = tokens
		l.minuteStart = now
		return
	}
	l.tokensUsedMinute += tokens
}

// Stats 限流统计
func (l *RateLimiter) Stats() map[string]any {
	l.mu.Lock()
	used := l.tokensUsedMinute
	l.mu.Unlock()

	stats := map[string]any{
		"requests_per_minute": l.config.RequestsPerMinute,
		"tokens_per_minute":   l.config.TokensPerMinute,
		"tokens_used_minute":  used,
		"max_concurrent":      l.config.MaxConcurrent,
	}
	if l.semaphore != nil {
		stats["current_concurrent"] = len(l.semaphore)
		stats["available_slots"] = cap(l.semaphore) - len(l.semaphore)
	}
	return stats
}

func observeWait(kind string, start time.Time) {
	if waited := time.Since(start); waited > 100*time.Millisecond {
		metrics.RateLimitWaitSeconds.WithLabelValues(kind).Observe(waited.Seconds())
	}
}
