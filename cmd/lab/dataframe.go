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

	"chain-lab/internal/dataframe"
)

// DataframeCmd CSV 表问答
type DataframeCmd struct {
	Option int    `help:"0: ask the dataframe agent how many rows there are." default:"0"`
	CSV    string `name:"csv" help:"CSV file to load." default:"./data/titanic.csv" type:"path"`
}

func (c *DataframeCmd) runOption() int { return c.Option }

func (c *DataframeCmd) Run(ctx context.Context, a *app) error {
	fmt.Println("Hello LangChain Pandas Dataframe!")

	cm, err := a.ChatModel(ctx, 0)
	if err != nil {
		return err
	}
	switch c.Option {
	case 0:
		f, err := dataframe.ReadCSVFile(c.CSV)
		if err != nil {
			return err
		}
		ag, err := dataframe.NewAgent(ctx, cm, f)
		if err != nil {
			return err
		}
		defer ag.Close()

		q := "how many rows are there?"
		answer, err := ag.Invoke(ctx, "", q)
		if err != nil {
			return err
		}
		fmt.Printf("{'input': '%s', 'output': '%s'}\n", q, answer)
	default:
		return wrongOption(c.Option)
	}
	return nil
}
