// Copyright 2023 The mxquadtree Authors.
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

package command

import (
	"encoding/json"
	"net/http"

	"github.com/phen0menon/mxquadtree/pkg/chart"
	"github.com/phen0menon/mxquadtree/pkg/quadtree"
	"github.com/spf13/cobra"
)

var (
	treeLayoutPrefix = apiPath("/tree/layout")
	treeStatsPrefix  = apiPath("/tree/stats")
)

// NewTreeCommand return a tree subcommand of rootCmd
func NewTreeCommand() *cobra.Command {
	t := &cobra.Command{
		Use:   "tree <subcommand>",
		Short: "show the shape of the tree",
	}
	t.AddCommand(&cobra.Command{
		Use:   "layout",
		Short: "show the split lines and occupied leaves",
		Run:   showTreeCommandFunc(treeLayoutPrefix),
	})
	t.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "show node counts and label statistics",
		Run:   showTreeCommandFunc(treeStatsPrefix),
	})
	t.AddCommand(&cobra.Command{
		Use:   "chart <file>",
		Short: "render the layout of the tree into an HTML occupancy chart file",
		Run:   saveTreeChartCommandFunc,
	})
	return t
}

func showTreeCommandFunc(prefix string) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		if len(args) != 0 {
			cmd.Println(cmd.UsageString())
			return
		}
		r, err := doRequest(cmd, prefix, http.MethodGet, nil, nil)
		printResponse(cmd, r, err)
	}
}

func saveTreeChartCommandFunc(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		cmd.Println(cmd.UsageString())
		return
	}
	r, err := doRequest(cmd, treeLayoutPrefix, http.MethodGet, nil, nil)
	if err != nil {
		cmd.Printf("Failed! %s\n", err)
		return
	}
	var layout quadtree.Layout
	if err := json.Unmarshal([]byte(r), &layout); err != nil {
		cmd.Printf("Failed! %s\n", err)
		return
	}
	if err := chart.RenderFile(&layout, args[0]); err != nil {
		cmd.Printf("Failed! %s\n", err)
		return
	}
	cmd.Printf("chart is saved to %s\n", args[0])
}
