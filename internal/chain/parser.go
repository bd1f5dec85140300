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

package chain

import (
	"context"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// StrParser 取消息正文；流式时逐块转换
func StrParser() (*compose.Lambda, error) {
	return compose.AnyLambda[*schema.Message, string, any](
		func(ctx context.Context, msg *schema.Message, _ ...any) (string, error) {
			if msg == nil {
				return "", nil
			}
			return msg.Content, nil
		},
		nil,
		nil,
		func(ctx context.Context, in *schema.StreamReader[*schema.Message], _ ...any) (*schema.StreamReader[string], error) {
			return schema.StreamReaderWithConvert(in, func(msg *schema.Message) (string, error) {
				if msg == nil {
					return "", schema.ErrNoValue
				}
				return msg.Content, nil
			}), nil
		},
	)
}
