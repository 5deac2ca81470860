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

package versioninfo

import (
	"fmt"
	"io"
	"strings"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Version information.
var (
	ReleaseVersion = "None"
	BuildTS        = "None"
	GitHash        = "None"
	GitBranch      = "None"
)

// Log prints the version information of the component.
func Log(component string) {
	name := strings.ToUpper(component)
	log.Info(fmt.Sprintf("Welcome to mxquadtree (%s)", name))
	log.Info(name, zap.String("release-version", ReleaseVersion))
	log.Info(name, zap.String("git-hash", GitHash))
	log.Info(name, zap.String("git-branch", GitBranch))
	log.Info(name, zap.String("utc-build-time", BuildTS))
}

// Print prints the version information, without log info.
func Print(w io.Writer) {
	fmt.Fprintln(w, "Release Version:", ReleaseVersion)
	fmt.Fprintln(w, "Git Commit Hash:", GitHash)
	fmt.Fprintln(w, "Git Branch:", GitBranch)
	fmt.Fprintln(w, "UTC Build Time: ", BuildTS)
}
