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

// Package record 外部数据到强类型记录的宽松解析与校验
package record

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"chain-lab/internal/pipeline/common"
)

// DefaultName name 缺省值
const DefaultName = "John Doe"

// 错误类型
const (
	TypeMissing         = "missing"
	TypeIntParsing      = "int_parsing"
	TypeIntType         = "int_type"
	TypeStringType      = "string_type"
	TypeDictType        = "dict_type"
	TypeGreaterThan     = "greater_than"
	TypeDatetimeParsing = "datetime_parsing"
	TypeDatetimeType    = "datetime_type"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var timeType = reflect.TypeOf(time.Time{})

// User 用户记录；SignupTS 允许为 null 但键必须存在
type User struct {
	ID       int            `mapstructure:"id"`
	Name     string         `mapstructure:"name"`
	SignupTS *time.Time     `mapstructure:"signup_ts"`
	Tastes   map[string]int `mapstructure:"tastes"`
}

// ParseUser 宽松解析（"1" 可转为 1），逐字段收集错误
func ParseUser(data map[string]any) (*User, error) {
	u := &User{Name: DefaultName}
	errs := &common.ValidationErrors{Title: "User"}

	if raw, ok := data["id"]; !ok {
		errs.Add("Field required", TypeMissing, "id")
	} else if err := decode(raw, &u.ID); err != nil {
		errs.Add(intMessage(raw), intType(raw), "id")
	}

	if raw, ok := data["name"]; ok {
		if s, isStr := raw.(string); isStr {
			u.Name = s
		} else {
			errs.Add("Input should be a valid string", TypeStringType, "name")
		}
	}

	if raw, ok := data["signup_ts"]; !ok {
		errs.Add("Field required", TypeMissing, "signup_ts")
	} else if raw != nil {
		var ts time.Time
		if err := decode(raw, &ts); err != nil {
			if _, isStr := raw.(string); isStr {
				errs.Add("Input should be a valid datetime", TypeDatetimeParsing, "signup_ts")
			} else {
				errs.Add("Input should be a valid datetime", TypeDatetimeType, "signup_ts")
			}
		} else {
			u.SignupTS = &ts
		}
	}

	if raw, ok := data["tastes"]; !ok {
		errs.Add("Field required", TypeMissing, "tastes")
	} else {
		u.Tastes = parseTastes(raw, errs)
	}

	if errs.Len() > 0 {
		return nil, errs
	}
	return u, nil
}

func parseTastes(raw any, errs *common.ValidationErrors) map[string]int {
	var m map[string]any
	if raw == nil || decode(raw, &m) != nil {
		errs.Add("Input should be a valid dictionary", TypeDictType, "tastes")
		return nil
	}
	out := make(map[string]int, len(m))
	for _, k := range sortedKeys(m) {
		var n int
		if err := decode(m[k], &n); err != nil {
			errs.Add(intMessage(m[k]), intType(m[k]), "tastes", k)
			continue
		}
		if n <= 0 {
			errs.Add("Input should be greater than 0", TypeGreaterThan, "tastes", k)
			continue
		}
		out[k] = n
	}
	return out
}

func intMessage(v any) string {
	if _, ok := v.(string); ok {
		return "Input should be a valid integer, unable to parse string as an integer"
	}
	return "Input should be a valid integer"
}

func intType(v any) string {
	if _, ok := v.(string); ok {
		return TypeIntParsing
	}
	return TypeIntType
}

// decode 单个值的弱类型解码
func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(stringToTimeHook, unixToTimeHook),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	return dec.Decode(input)
}

func stringToTimeHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.String || t != timeType {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return nil, fmt.Errorf("invalid datetime %q", s)
}

func unixToTimeHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t != timeType {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	}
	return data, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Dump 转回普通 map
func (u *User) Dump() map[string]any {
	var ts any
	if u.SignupTS != nil {
		ts = *u.SignupTS
	}
	tastes := make(map[string]int, len(u.Tastes))
	for k, v := range u.Tastes {
		tastes[k] = v
	}
	return map[string]any{
		"id":        u.ID,
		"name":      u.Name,
		"signup_ts": ts,
		"tastes":    tastes,
	}
}

// String 以字典字面量形式输出，tastes 按键排序
func (u *User) String() string {
	ts := "None"
	if u.SignupTS != nil {
		t := *u.SignupTS
		ts = fmt.Sprintf("datetime.datetime(%d, %d, %d, %d, %d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
		if t.Second() != 0 {
			ts += fmt.Sprintf(", %d", t.Second())
		}
		ts += ")"
	}
	parts := make([]string, 0, len(u.Tastes))
	for _, k := range sortedKeys(u.Tastes) {
		parts = append(parts, fmt.Sprintf("'%s': %d", k, u.Tastes[k]))
	}
	return fmt.Sprintf("{'id': %d, 'name': '%s', 'signup_ts': %s, 'tastes': {%s}}",
		u.ID, u.Name, ts, strings.Join(parts, ", "))
}
