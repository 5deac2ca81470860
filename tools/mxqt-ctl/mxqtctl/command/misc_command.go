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
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	pingPrefix   = apiPath("/ping")
	configPrefix = apiPath("/config")
	statusPrefix = apiPath("/status")
)

// NewPingCommand return a ping subcommand of rootCmd
func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "show the total time spend ping the server",
		Run:   showPingCommandFunc,
	}
}

func showPingCommandFunc(cmd *cobra.Command, args []string) {
	start := time.Now()
	if _, err := doRequest(cmd, pingPrefix, http.MethodGet, nil, nil); err != nil {
		cmd.Println(err)
		return
	}
	cmd.Println("time:", time.Since(start))
}

// NewConfigCommand return a config subcommand of rootCmd
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config [plane]",
		Short: "show the effective config of the server, or only its plane section",
		Run:   showConfigCommandFunc,
	}
}

func showConfigCommandFunc(cmd *cobra.Command, args []string) {
	prefix := configPrefix
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "plane":
		prefix += "/plane"
	default:
		cmd.Println(cmd.UsageString())
		return
	}
	r, err := doRequest(cmd, prefix, http.MethodGet, nil, nil)
	printResponse(cmd, r, err)
}

// NewStatusCommand return a status subcommand of rootCmd
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "show the plane, depth and point count of the server",
		Run:   showStatusCommandFunc,
	}
}

func showStatusCommandFunc(cmd *cobra.Command, args []string) {
	r, err := doRequest(cmd, statusPrefix, http.MethodGet, nil, nil)
	printResponse(cmd, r, err)
}

// NewExitCommand return a exit subcommand of rootCmd
func NewExitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exit",
		Short: "exit mxqt-ctl",
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(0)
		},
	}
}
