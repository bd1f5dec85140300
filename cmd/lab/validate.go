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

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"chain-lab/internal/record"
	"chain-lab/pkg/errors"
)

// ValidateCmd 外部数据校验
type ValidateCmd struct {
	Option int `help:"0: valid record; 1: invalid record." default:"0"`
}

func (c *ValidateCmd) runOption() int { return c.Option }

func (c *ValidateCmd) Run(ctx context.Context, a *app) error {
	fmt.Println("Hello, World!")

	var data map[string]any
	switch c.Option {
	case 0:
		data = map[string]any{
			"id":        123,
			"signup_ts": nil,
			"tastes": map[string]any{
				"wine":    9,
				"cheese":  7,
				"cabbage": "1",
			},
		}
	case 1:
		data = map[string]any{"id": "not an int", "tastes": map[string]any{}}
	default:
		return wrongOption(c.Option)
	}

	u, err := record.ParseUser(data)
	if err != nil {
		if verrs, ok := errors.GetValidationErrors(err); ok {
			out, jerr := json.Marshal(verrs.Errors())
			if jerr == nil {
				fmt.Println(string(out))
			}
		}
		return err
	}
	fmt.Println(u.ID)
	fmt.Println(u.String())
	return nil
}
