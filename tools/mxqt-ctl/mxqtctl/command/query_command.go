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
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	leafPrefix   = apiPath("/leaf")
	regionPrefix = apiPath("/region")
)

// NewLeafCommand returns a leaf subcommand of rootCmd
func NewLeafCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "leaf <x> <y>",
		Short: "show the leaf reached from a point",
		Run:   showLeafCommandFunc,
	}
}

func showLeafCommandFunc(cmd *cobra.Command, args []string) {
	if len(args) != 2 {
		cmd.Println(cmd.UsageString())
		return
	}
	coords, err := parseFloats(args)
	if err != nil {
		cmd.Println(err)
		return
	}
	query := url.Values{}
	query.Set("x", formatFloat(coords[0]))
	query.Set("y", formatFloat(coords[1]))
	r, err := doRequest(cmd, leafPrefix, http.MethodGet, query, nil)
	printResponse(cmd, r, err)
}

// NewRegionCommand returns a region subcommand of rootCmd
func NewRegionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "region <left> <top> <right> <bottom>",
		Short: "list the occupied leaves whose centers lie in a rectangle",
		Run:   showRegionCommandFunc,
	}
}

func showRegionCommandFunc(cmd *cobra.Command, args []string) {
	if len(args) != 4 {
		cmd.Println(cmd.UsageString())
		return
	}
	edges, err := parseFloats(args)
	if err != nil {
		cmd.Println(err)
		return
	}
	query := url.Values{}
	for i, name := range []string{"left", "top", "right", "bottom"} {
		query.Set(name, formatFloat(edges[i]))
	}
	r, err := doRequest(cmd, regionPrefix, http.MethodGet, query, nil)
	printResponse(cmd, r, err)
}
