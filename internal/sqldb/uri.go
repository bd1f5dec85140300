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

package sqldb

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// 方言名
const (
	DialectSQLite     = "sqlite"
	DialectPostgreSQL = "postgresql"
	DialectMySQL      = "mysql"
)

// MemoryPath sqlite 内存库
const MemoryPath = ":memory:"

type target struct {
	dialect string
	driver  string
	dsn     string
	// path sqlite 文件路径
	path string
}

// parseURI 解析 SQLAlchemy 风格 URI；scheme 中的 "+driver" 后缀忽略
func parseURI(uri string) (*target, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return nil, fmt.Errorf("invalid database uri %q", uri)
	}
	scheme, _, _ = strings.Cut(strings.ToLower(scheme), "+")

	switch scheme {
	case "sqlite":
		// sqlite:///rel.db -> rel.db；sqlite:////abs.db -> /abs.db；sqlite:// 或 sqlite://:memory: -> 内存
		path := strings.TrimPrefix(rest, "/")
		if path == "" || path == MemoryPath {
			path = MemoryPath
		}
		return &target{dialect: DialectSQLite, driver: "sqlite", dsn: path, path: path}, nil

	case "postgres", "postgresql":
		return &target{dialect: DialectPostgreSQL, driver: "pgx", dsn: "postgres://" + rest}, nil

	case "mysql", "mariadb":
		u, err := url.Parse("mysql://" + rest)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql uri: %w", err)
		}
		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		if u.Port() == "" {
			cfg.Addr = u.Host + ":3306"
		}
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		if u.User != nil {
			cfg.User = u.User.Username()
			cfg.Passwd, _ = u.User.Password()
		}
		cfg.ParseTime = true
		return &target{dialect: DialectMySQL, driver: "mysql", dsn: cfg.FormatDSN()}, nil

	default:
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}
