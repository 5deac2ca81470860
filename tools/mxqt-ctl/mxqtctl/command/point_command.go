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
	"strconv"

	"github.com/spf13/cobra"
)

var pointsPrefix = apiPath("/points")

// NewInsertCommand returns a insert subcommand of rootCmd
func NewInsertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <x> <y> [label]",
		Short: "store a label at a point, the server allocates one when it is omitted",
		Run:   insertCommandFunc,
	}
}

func insertCommandFunc(cmd *cobra.Command, args []string) {
	if len(args) != 2 && len(args) != 3 {
		cmd.Println(cmd.UsageString())
		return
	}
	coords, err := parseFloats(args[:2])
	if err != nil {
		cmd.Println(err)
		return
	}
	input := map[string]interface{}{
		"x": coords[0],
		"y": coords[1],
	}
	if len(args) == 3 {
		label, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			cmd.Printf("label %q is not an integer\n", args[2])
			return
		}
		input["label"] = label
	}
	r, err := postJSON(cmd, pointsPrefix, input)
	printResponse(cmd, r, err)
}

// NewRemoveCommand returns a remove subcommand of rootCmd
func NewRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <x> <y>",
		Short: "remove the point stored in the leaf of a point",
		Run:   removeCommandFunc,
	}
}

func removeCommandFunc(cmd *cobra.Command, args []string) {
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
	if _, err := doRequest(cmd, pointsPrefix, http.MethodDelete, query, nil); err != nil {
		cmd.Printf("Failed! %s\n", err)
		return
	}
	cmd.Println("Success!")
}

// NewPointsCommand returns a points subcommand of rootCmd
func NewPointsCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "points [--start=<key>] [--limit=<n>]",
		Short: "list the stored points in z-order",
		Run:   showPointsCommandFunc,
	}
	c.Flags().Uint64("start", 0, "first z-order key")
	c.Flags().Uint64("limit", 0, "page size, 0 uses the server limit")
	return c
}

func showPointsCommandFunc(cmd *cobra.Command, args []string) {
	if len(args) != 0 {
		cmd.Println(cmd.UsageString())
		return
	}
	query := url.Values{}
	if start, _ := cmd.Flags().GetUint64("start"); start > 0 {
		query.Set("start", strconv.FormatUint(start, 10))
	}
	if limit, _ := cmd.Flags().GetUint64("limit"); limit > 0 {
		query.Set("limit", strconv.FormatUint(limit, 10))
	}
	r, err := doRequest(cmd, pointsPrefix, http.MethodGet, query, nil)
	printResponse(cmd, r, err)
}
