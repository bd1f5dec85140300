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

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/pipeline/query"
)

// NewSimpleRAGChain {context: retriever | FormatDocs, question: passthrough} | prompt | model | parser
func NewSimpleRAGChain(ctx context.Context, r retriever.Retriever, cm model.BaseChatModel, tpl prompt.ChatTemplate) (compose.Runnable[string, string], error) {
	contextChain := compose.NewChain[string, string]().
		AppendRetriever(r, compose.WithNodeName("retriever")).
		AppendLambda(compose.InvokableLambda(func(ctx context.Context, docs []*schema.Document) (string, error) {
			return query.FormatDocs(docs), nil
		}), compose.WithNodeName("format_docs"))

	parallel := compose.NewParallel().
		AddGraph(KeyContext, contextChain).
		AddPassthrough(KeyQuestion)

	parser, err := StrParser()
	if err != nil {
		return nil, err
	}
	run, err := compose.NewChain[string, string]().
		AppendParallel(parallel).
		AppendChatTemplate(tpl, compose.WithNodeName("prompt")).
		AppendChatModel(cm, compose.WithNodeName("model")).
		AppendLambda(parser, compose.WithNodeName("parser")).
		Compile(ctx, compose.WithGraphName("simple_rag"))
	if err != nil {
		return nil, fmt.Errorf("compile simple rag chain: %w", err)
	}
	return run, nil
}
