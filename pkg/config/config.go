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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构体（configs/lab.yaml，可缺省）
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Vector     VectorConfig     `mapstructure:"vector"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
	SQL        SQLConfig        `mapstructure:"sql"`
	Wikipedia  WikipediaConfig  `mapstructure:"wikipedia"`
	RateLimits RateLimitsConfig `mapstructure:"rate_limits"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// VectorConfig 向量存储配置（memory 为内置内存；chromem 为 chromem-go；redis 使用 eino-ext 对应组件）
type VectorConfig struct {
	Type        string `mapstructure:"type"`
	Addr        string `mapstructure:"addr"`
	DB          string `mapstructure:"db"`         // memory/chromem 忽略；Redis 为 DB 编号，如 "0"
	Collection  string `mapstructure:"collection"` // 默认索引/集合名，ingest 与 query 共用
	Password    string `mapstructure:"password"`
	PersistPath string `mapstructure:"persist_path"` // chromem 持久化目录，空则纯内存
	Dimension   int    `mapstructure:"dimension"`    // redis FT 索引维度
	TopK        int    `mapstructure:"top_k"`
}

// CacheConfig 缓存配置（embedding 缓存）
type CacheConfig struct {
	Type     string `mapstructure:"type"` // none | memory | redis
	Addr     string `mapstructure:"addr"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
	TTL      string `mapstructure:"ttl"` // 如 "24h"
}

// IngestConfig 数据加载与切片配置
type IngestConfig struct {
	PDFEngine       string `mapstructure:"pdf_engine"` // ledongthuc | unipdf
	Splitter        string `mapstructure:"splitter"`   // recursive | token
	UserAgent       string `mapstructure:"user_agent"`
	YoutubeLanguage string `mapstructure:"youtube_language"`
}

// SQLConfig SQL 问答配置
type SQLConfig struct {
	URI        string `mapstructure:"uri"`
	TopK       int    `mapstructure:"top_k"`
	SampleRows int    `mapstructure:"sample_rows"`
}

// WikipediaConfig 维基百科工具配置
type WikipediaConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Lang     string `mapstructure:"lang"`
	TopK     int    `mapstructure:"top_k"`
	MaxChars int    `mapstructure:"max_chars"`
}

// RateLimitsConfig 限流配置（LLM）
type RateLimitsConfig struct {
	LLM LLMRateLimitConfig `mapstructure:"llm"`
}

// LLMRateLimitConfig LLM 限流配置
type LLMRateLimitConfig struct {
	TokensPerMinute   int     `mapstructure:"tokens_per_minute"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	MaxConcurrent     int     `mapstructure:"max_concurrent"`
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// PrometheusConfig Prometheus 配置
type PrometheusConfig struct {
	Enable bool   `mapstructure:"enable"`
	Addr   string `mapstructure:"addr"`
}

// TracingConfig 链路追踪配置（OpenTelemetry）
type TracingConfig struct {
	Enable         bool   `mapstructure:"enable"`
	ServiceName    string `mapstructure:"service_name"`
	ExportEndpoint string `mapstructure:"export_endpoint"`
	Insecure       bool   `mapstructure:"insecure"`
}

// SecretsConfig 密钥来源配置
type SecretsConfig struct {
	Provider   string `mapstructure:"provider"` // env | memory | vault
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	PathPrefix string `mapstructure:"path_prefix"`
}

// DefaultConfig 未提供 lab.yaml 时使用的默认值
func DefaultConfig() *Config {
	return &Config{
		Log:       LogConfig{Level: "info", Format: "text"},
		Vector:    VectorConfig{Type: "chromem", Collection: "default", TopK: 4},
		Cache:     CacheConfig{Type: "none"},
		Ingest:    IngestConfig{PDFEngine: "ledongthuc", Splitter: "recursive", YoutubeLanguage: "en"},
		SQL:       SQLConfig{URI: "sqlite:///data/Chinook.db", TopK: 5, SampleRows: 3},
		Wikipedia: WikipediaConfig{BaseURL: "https://en.wikipedia.org/w/api.php", Lang: "en", TopK: 3, MaxChars: 4000},
		Secrets:   SecretsConfig{Provider: "env"},
	}
}

// LoadConfig 加载配置文件；文件不存在时返回默认配置
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("LAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}
	replaceEnvVars(cfg)
	return cfg, nil
}

// replaceEnvVars 替换配置中的 "${ENV}" 值（密码与 token）
func replaceEnvVars(cfg *Config) {
	for _, p := range []*string{&cfg.Vector.Password, &cfg.Cache.Password, &cfg.Secrets.Token} {
		if strings.HasPrefix(*p, "${") && strings.HasSuffix(*p, "}") {
			*p = os.Getenv(strings.TrimSuffix(strings.TrimPrefix(*p, "${"), "}"))
		}
	}
}
