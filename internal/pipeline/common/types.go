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

// 管线阶段名，用于 PipelineError.Stage 与指标标签
const (
	StageLoad     = "load"
	StageSplit    = "split"
	StageIndex    = "index"
	StageRetrieve = "retrieve"
	StageGenerate = "generate"
	StageSQL      = "sql"
	StageAgent    = "agent"
)

// Chunk 文本切片
type Chunk struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	Index      int            `json:"index"`
	TokenCount int            `json:"token_count"`
}
