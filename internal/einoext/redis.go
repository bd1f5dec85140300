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

package einoext

import (
	"context"
	"fmt"
	"strings"

	redisindexer "github.com/cloudwego/eino-ext/components/indexer/redis"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"chain-lab/internal/pipeline/ingest"
)

// Redis hash 中的字段名
const (
	FieldContent = "content"
	FieldVector  = "vector_content"
)

// MetadataFields 随文档写入并在检索时返回的元数据字段
var MetadataFields = []string{"source", "title", "page", "publish_date", "publish_year", "chunk_index"}

// KeyPrefix 集合对应的 key 前缀
func KeyPrefix(collection string) string {
	return collection + ":"
}

// EnsureRedisIndex 为 prefix 建立 FT 向量索引，已存在时跳过
func EnsureRedisIndex(ctx context.Context, client *redis.Client, index, prefix string, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("redis vector index %s requires a positive dimension", index)
	}
	args := []any{
		"FT.CREATE", index, "ON", "HASH", "PREFIX", 1, prefix,
		"SCHEMA", FieldContent, "TEXT",
		FieldVector, "VECTOR", "FLAT", 6,
		"TYPE", "FLOAT32", "DIM", dim, "DISTANCE_METRIC", "COSINE",
	}
	for _, f := range MetadataFields {
		args = append(args, f, "TAG")
	}
	err := client.Do(ctx, args...).Err()
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "index already exists") {
		return fmt.Errorf("创建 redis 索引 %s 失败: %w", index, err)
	}
	return nil
}

// documentToHashes 正文、向量与标量元数据写入同一个 hash
func documentToHashes(ctx context.Context, doc *schema.Document) (*redisindexer.Hashes, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("document id not set")
	}
	fields := map[string]redisindexer.FieldValue{
		FieldContent: {Value: doc.Content, EmbedKey: FieldVector},
	}
	meta := ingest.MetadataToStrings(doc.MetaData)
	for _, f := range MetadataFields {
		if v, ok := meta[f]; ok {
			fields[f] = redisindexer.FieldValue{Value: v}
		}
	}
	return &redisindexer.Hashes{Key: doc.ID, Field2Value: fields}, nil
}
