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
	"fmt"

	"chain-lab/internal/chain"
	"chain-lab/internal/pipeline/ingest"
)

// PDFCmd PDF 检索问答
type PDFCmd struct {
	Option int    `help:"0: retrieval chain over the PDF." default:"0"`
	File   string `help:"PDF file to index." default:"./data/LaborStandardsAct.pdf" type:"path"`
}

func (c *PDFCmd) runOption() int { return c.Option }

func (c *PDFCmd) Run(ctx context.Context, a *app) error {
	fmt.Println("Hello, LangChain PDF!")

	cm, err := a.ChatModel(ctx, 0)
	if err != nil {
		return err
	}
	switch c.Option {
	case 0:
		loader, err := ingest.NewPDFLoader(a.cfg.Ingest.PDFEngine)
		if err != nil {
			return err
		}
		b, err := a.Index(ctx, indexSpec{
			Collection: "pdf",
			Loader:     loader,
			URIs:       []string{c.File},
			ChunkSize:  1000,
			Overlap:    200,
		})
		if err != nil {
			return err
		}
		combine, err := chain.NewStuffDocumentsChain(ctx, cm, chain.QAPrompt(false))
		if err != nil {
			return err
		}
		out, err := chain.NewRetrievalChain(chain.Plain(b.Retriever), combine).
			Invoke(ctx, chain.RetrievalInput{Input: "勞工犯了那些錯，雇主就可以終止契約?"})
		if err != nil {
			return err
		}
		fmt.Println(out.Answer)
	default:
		return wrongOption(c.Option)
	}
	return nil
}
