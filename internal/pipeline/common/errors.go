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

package common

import (
	"errors"
	"fmt"

	pkgerrors "chain-lab/pkg/errors"
)

// 定义 Pipeline 相关错误
var (
	ErrInvalidInput     = errors.New("无效的输入")
	ErrRetrievalFailed  = errors.New("检索失败")
	ErrGenerationFailed = errors.New("生成失败")
	ErrEmbeddingFailed  = errors.New("向量化失败")
	ErrIndexingFailed   = errors.New("索引失败")
	ErrSplittingFailed  = errors.New("切片失败")
	ErrLoadingFailed    = errors.New("加载失败")
)

// ValidationError 与 pkg/errors 共用同一类型，便于 cmd 层统一识别
type ValidationError = pkgerrors.ValidationError

// ValidationErrors 多字段验证错误
type ValidationErrors = pkgerrors.ValidationErrors

// PipelineError Pipeline 错误结构体
type PipelineError struct {
	Stage   string
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[Pipeline] %s 阶段错误: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[Pipeline] %s 阶段错误: %s", e.Stage, e.Message)
}

// Unwrap 实现 errors.Unwrap 接口
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError 创建新的 Pipeline 错误
func NewPipelineError(stage string, message string, err error) *PipelineError {
	return &PipelineError{
		Stage:   stage,
		Message: message,
		Err:     err,
	}
}

// GetPipelineError 获取 Pipeline 错误
func GetPipelineError(err error) (*PipelineError, bool) {
	var pipelineErr *PipelineError
	if errors.As(err, &pipelineErr) {
		return pipelineErr, true
	}
	return nil, false
}

// NewValidationError 创建新的验证错误
func NewValidationError(field string, message string) *ValidationError {
	return pkgerrors.NewValidationError(field, message)
}

// IsValidationError 检查是否为验证错误
func IsValidationError(err error) bool {
	return pkgerrors.IsValidationError(err)
}
