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
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/pipeline/common"
	"chain-lab/internal/pipeline/query"
)

// RetrievalInput 检索问答输入
type RetrievalInput struct {
	Input       string
	ChatHistory []*schema.Message
}

// RetrievalOutput 输入原样带回，附检索文档与回答
type RetrievalOutput struct {
	Input       string
	ChatHistory []*schema.Message
	Context     []*schema.Document
	Answer      string
}

// DocRetriever 由检索输入取文档
type DocRetriever interface {
	RetrieveDocs(ctx context.Context, in RetrievalInput) ([]*schema.Document, error)
}

type plainRetriever struct {
	r retriever.Retriever
}

// Plain 只用 Input 检索，忽略历史
func Plain(r retriever.Retriever) DocRetriever {
	return plainRetriever{r: r}
}

func (p plainRetriever) RetrieveDocs(ctx context.Context, in RetrievalInput) ([]*schema.Document, error) {
	return p.r.Retrieve(ctx, in.Input)
}

// NewStuffDocumentsChain 将 context 中的文档拼接为文本后套入 prompt
func NewStuffDocumentsChain(ctx context.Context, cm model.BaseChatModel, tpl prompt.ChatTemplate) (compose.Runnable[map[string]any, string], error) {
	parser, err := StrParser()
	if err != nil {
		return nil, err
	}
	stuff := compose.InvokableLambda(func(ctx context.Context, in map[string]any) (map[string]any, error) {
		out := make(map[string]any, len(in))
		for k, v := range in {
			out[k] = v
		}
		docs, _ := in[KeyContext].([]*schema.Document)
		out[KeyContext] = query.FormatDocs(docs)
		return out, nil
	})
	run, err := compose.NewChain[map[string]any, string]().
		AppendLambda(stuff, compose.WithNodeName("stuff_documents")).
		AppendChatTemplate(tpl, compose.WithNodeName("prompt")).
		AppendChatModel(cm, compose.WithNodeName("model")).
		AppendLambda(parser, compose.WithNodeName("parser")).
		Compile(ctx, compose.WithGraphName("stuff_documents"))
	if err != nil {
		return nil, fmt.Errorf("compile stuff documents chain: %w", err)
	}
	return run, nil
}

// RetrievalChain 先检索，再把 input、chat_history、context 交给 combine
type RetrievalChain struct {
	retriever DocRetriever
	combine   compose.Runnable[map[string]any, string]
}

// NewRetrievalChain 创建检索问答链
func NewRetrievalChain(r DocRetriever, combine compose.Runnable[map[string]any, string]) *RetrievalChain {
	return &RetrievalChain{retriever: r, combine: combine}
}

// Invoke 执行一次检索问答
func (c *RetrievalChain) Invoke(ctx context.Context, in RetrievalInput, opts ...compose.Option) (*RetrievalOutput, error) {
	docs, err := c.retriever.RetrieveDocs(ctx, in)
	if err != nil {
		return nil, common.NewPipelineError("retrieve", "检索失败", err)
	}
	history := in.ChatHistory
	if history == nil {
		history = []*schema.Message{}
	}
	answer, err := c.combine.Invoke(ctx, map[string]any{
		KeyInput:       in.Input,
		KeyChatHistory: history,
		KeyContext:     docs,
	}, opts...)
	if err != nil {
		return nil, common.NewPipelineError("generate", "生成回答失败", err)
	}
	return &RetrievalOutput{Input: in.Input, ChatHistory: in.ChatHistory, Context: docs, Answer: answer}, nil
}

// 历史感知检索图的节点
const (
	nodeRoute         = "route"
	nodeQuestion      = "question"
	nodeRewriteInput  = "rewrite_input"
	nodeContextualize = "contextualize"
	nodeRewriter      = "rewriter"
	nodeRewritten     = "rewritten"
	nodeRetrieve      = "retrieve"
)

// HistoryAwareRetriever 无历史时直接检索 input；有历史时先由模型改写为独立问题再检索
type HistoryAwareRetriever struct {
	run compose.Runnable[RetrievalInput, []*schema.Document]
}

// NewHistoryAwareRetriever 构建带分支的检索图
func NewHistoryAwareRetriever(ctx context.Context, cm model.BaseChatModel, r retriever.Retriever, tpl prompt.ChatTemplate) (*HistoryAwareRetriever, error) {
	g := compose.NewGraph[RetrievalInput, []*schema.Document]()

	steps := []func() error{
		func() error {
			return g.AddLambdaNode(nodeRoute, compose.InvokableLambda(func(ctx context.Context, in RetrievalInput) (RetrievalInput, error) {
				return in, nil
			}))
		},
		func() error {
			return g.AddLambdaNode(nodeQuestion, compose.InvokableLambda(func(ctx context.Context, in RetrievalInput) (string, error) {
				return in.Input, nil
			}))
		},
		func() error {
			return g.AddLambdaNode(nodeRewriteInput, compose.InvokableLambda(func(ctx context.Context, in RetrievalInput) (map[string]any, error) {
				return map[string]any{KeyInput: in.Input, KeyChatHistory: in.ChatHistory}, nil
			}))
		},
		func() error { return g.AddChatTemplateNode(nodeContextualize, tpl) },
		func() error { return g.AddChatModelNode(nodeRewriter, cm) },
		func() error {
			return g.AddLambdaNode(nodeRewritten, compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (string, error) {
				return strings.TrimSpace(msg.Content), nil
			}))
		},
		func() error { return g.AddRetrieverNode(nodeRetrieve, r) },
		func() error { return g.AddEdge(compose.START, nodeRoute) },
		func() error {
			return g.AddBranch(nodeRoute, compose.NewGraphBranch(func(ctx context.Context, in RetrievalInput) (string, error) {
				if len(in.ChatHistory) == 0 {
					return nodeQuestion, nil
				}
				return nodeRewriteInput, nil
			}, map[string]bool{nodeQuestion: true, nodeRewriteInput: true}))
		},
		func() error { return g.AddEdge(nodeQuestion, nodeRetrieve) },
		func() error { return g.AddEdge(nodeRewriteInput, nodeContextualize) },
		func() error { return g.AddEdge(nodeContextualize, nodeRewriter) },
		func() error { return g.AddEdge(nodeRewriter, nodeRewritten) },
		func() error { return g.AddEdge(nodeRewritten, nodeRetrieve) },
		func() error { return g.AddEdge(nodeRetrieve, compose.END) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("build history aware retriever: %w", err)
		}
	}

	run, err := g.Compile(ctx, compose.WithGraphName("history_aware_retriever"))
	if err != nil {
		return nil, fmt.Errorf("compile history aware retriever: %w", err)
	}
	return &HistoryAwareRetriever{run: run}, nil
}

// RetrieveDocs 实现 DocRetriever
func (h *HistoryAwareRetriever) RetrieveDocs(ctx context.Context, in RetrievalInput) ([]*schema.Document, error) {
	return h.run.Invoke(ctx, in)
}
