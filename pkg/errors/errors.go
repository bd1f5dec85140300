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

// Package errors 提供统一错误辅助，不依赖 internal
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// 常用哨兵错误
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidArg  = errors.New("invalid argument")
	ErrUnsupported = errors.New("unsupported")
)

// Wrap 包装错误并附加消息
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 带格式的 Wrap
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ValidationError 单字段验证错误，命令入口据此决定退出信息
type ValidationError struct {
	Field   string
	Message string
	Type    string
}

// Error 实现 error 接口
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError 创建验证错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// FieldError 多字段校验中的一条记录
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationErrors 多字段验证错误，Errors 返回逐字段记录
type ValidationErrors struct {
	Title  string
	Fields []FieldError
}

// Add 追加一条字段错误
func (e *ValidationErrors) Add(msg, typ string, loc ...string) {
	e.Fields = append(e.Fields, FieldError{Loc: loc, Msg: msg, Type: typ})
}

// Len 错误条数
func (e *ValidationErrors) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Fields)
}

// Errors 返回字段错误副本
func (e *ValidationErrors) Errors() []FieldError {
	out := make([]FieldError, len(e.Fields))
	copy(out, e.Fields)
	return out
}

// Error 实现 error 接口，格式为 "N validation errors for Title" + 每字段两行
func (e *ValidationErrors) Error() string {
	var b strings.Builder
	noun := "errors"
	if len(e.Fields) == 1 {
		noun = "error"
	}
	fmt.Fprintf(&b, "%d validation %s for %s", len(e.Fields), noun, e.Title)
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "\n%s\n  %s [type=%s]", strings.Join(f.Loc, "."), f.Msg, f.Type)
	}
	return b.String()
}

// IsValidationError 是否为验证错误（单字段或多字段）
func IsValidationError(err error) bool {
	var single *ValidationError
	if errors.As(err, &single) {
		return true
	}
	var multi *ValidationErrors
	return errors.As(err, &multi)
}

// GetValidationError 取出单字段验证错误
func GetValidationError(err error) (*ValidationError, bool) {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr, true
	}
	return nil, false
}

// GetValidationErrors 取出多字段验证错误
func GetValidationErrors(err error) (*ValidationErrors, bool) {
	var valErrs *ValidationErrors
	if errors.As(err, &valErrs) {
		return valErrs, true
	}
	return nil, false
}
