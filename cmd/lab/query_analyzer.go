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

	"github.com/cloudwego/eino/schema"

	"chain-lab/internal/pipeline/ingest"
	"chain-lab/internal/pipeline/query"
)

var defaultVideoURLs = []string{
	"https://www.youtube.com/watch?v=HAn9vnJy6S4",
	"https://www.youtube.com/watch?v=dA1cHGACXCo",
	"https://www.youtube.com/watch?v=ZcEMLz27sL4",
	"https://www.youtube.com/watch?v=hvAPnpSfSGo",
	"https://www.youtube.com/watch?v=EhlPDL4QrWY",
	"https://www.youtube.com/watch?v=mmBo8nlu2j0",
	"https://www.youtube.com/watch?v=rQdibOsL1ps",
	"https://www.youtube.com/watch?v=28lC4fqukoc",
	"https://www.youtube.com/watch?v=es-9MgxB-uc",
	"https://www.youtube.com/watch?v=wLRHwKuKvOE",
	"https://www.youtube.com/watch?v=ObIltMaRJvY",
	"https://www.youtube.com/watch?v=DjuXACWYkkU",
	"https://www.youtube.com/watch?v=o7C9ld6Ln-M",
}

// QueryAnalyzerCmd 视频字幕上的结构化检索
type QueryAnalyzerCmd struct {
	Option int      `help:"0: plain similarity search; 1: query analyzer with publish_year filter." default:"1"`
	URL    []string `name:"url" help:"YouTube video URLs to index (repeatable)."`
}

func (c *QueryAnalyzerCmd) runOption() int { return c.Option }

func (c *QueryAnalyzerCmd) Run(ctx context.Context, a *app) error {
	fmt.Println("Hello, LangChain Query Analyzer!")

	cm, err := a.ChatModel(ctx, 0)
	if err != nil {
		return err
	}
	urls := c.URL
	if len(urls) == 0 {
		urls = defaultVideoURLs
	}
	var langs []string
	if a.cfg.Ingest.YoutubeLanguage != "" {
		langs = []string{a.cfg.Ingest.YoutubeLanguage}
	}
	b, err := a.Index(ctx, indexSpec{
		Collection: "videos",
		Loader:     ingest.NewYoutubeLoader(&ingest.YoutubeLoaderConfig{Languages: langs, AddVideoInfo: true}),
		Enrich:     ingest.AddPublishYear,
		URIs:       urls,
		ChunkSize:  2000,
		Overlap:    200,
		SkipFailed: true,
	})
	if err != nil {
		return err
	}

	switch c.Option {
	case 0:
		docs, err := b.Retriever.Retrieve(ctx, "how do I build a RAG agent")
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			fmt.Println(docs[0].MetaData["title"])
			fmt.Println(head(docs[0].Content, 500))
		}
		docs, err = b.Retriever.Retrieve(ctx, "videos on RAG published in 2023")
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			fmt.Println(docs[0].MetaData["title"])
			fmt.Println(docs[0].MetaData["publish_date"])
			fmt.Println(head(docs[0].Content, 500))
		}
	case 1:
		analyzer, err := query.NewQueryAnalyzer(ctx, cm)
		if err != nil {
			return err
		}
		for _, q := range []string{"how do I build a RAG agent", "videos on RAG published in 2023"} {
			s, err := analyzer.Invoke(ctx, q)
			if err != nil {
				return err
			}
			fmt.Println(s.String())
		}
		s, err := analyzer.Invoke(ctx, "RAG tutorial published in 2023")
		if err != nil {
			return err
		}
		docs, err := query.RetrieveWithSearch(ctx, b.Retriever, s)
		if err != nil {
			return err
		}
		printTitles(docs)
	default:
		return wrongOption(c.Option)
	}
	return nil
}

func head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func printTitles(docs []*schema.Document) {
	for _, d := range docs {
		fmt.Printf("(%v, %v)\n", d.MetaData["title"], d.MetaData["publish_date"])
	}
}
