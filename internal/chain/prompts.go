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
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// 模板变量
const (
	KeyInput       = "input"
	KeyQuestion    = "question"
	KeyContext     = "context"
	KeyChatHistory = "chat_history"
)

const ragHumanPrompt = "You are an assistant for question-answering tasks. Use the following pieces of retrieved context to answer the question. If you don't know the answer, just say that you don't know. Use three sentences maximum and keep the answer concise.\nQuestion: {question} \nContext: {context} \nAnswer:"

const customRAGPrompt = `Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.
Use three sentences maximum and keep the answer as concise as possible.
Always say "thanks for asking!" at the end of the answer.

{context}

Question: {question}

Helpful Answer:`

// QASystemPrompt 检索问答的 system 提示，{context} 为拼接后的文档
const QASystemPrompt = "You are an assistant for question-answering tasks. " +
	"Use the following pieces of retrieved context to answer " +
	"the question. If you don't know the answer, say that you " +
	"don't know. Use three sentences maximum and keep the " +
	"answer concise." +
	"\n\n" +
	"{context}"

// ContextualizeSystemPrompt 结合历史改写问题
const ContextualizeSystemPrompt = "Given a chat history and the latest user question " +
	"which might reference context in the chat history, " +
	"formulate a standalone question which can be understood " +
	"without the chat history. Do NOT answer the question, " +
	"just reformulate it if needed and otherwise return it as is."

// RAGPrompt 单条 user 消息，变量 question、context
func RAGPrompt() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString, schema.UserMessage(ragHumanPrompt))
}

// CustomRAGPrompt 要求回答以 "thanks for asking!" 结尾
func CustomRAGPrompt() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString, schema.UserMessage(customRAGPrompt))
}

// QAPrompt system(context) [+ chat_history] + human(input)
func QAPrompt(withHistory bool) prompt.ChatTemplate {
	msgs := []schema.MessagesTemplate{schema.SystemMessage(QASystemPrompt)}
	if withHistory {
		msgs = append(msgs, schema.MessagesPlaceholder(KeyChatHistory, false))
	}
	msgs = append(msgs, schema.UserMessage("{input}"))
	return prompt.FromMessages(schema.FString, msgs...)
}

// ContextualizePrompt system + chat_history + human(input)
func ContextualizePrompt() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage(ContextualizeSystemPrompt),
		schema.MessagesPlaceholder(KeyChatHistory, false),
		schema.UserMessage("{input}"),
	)
}
