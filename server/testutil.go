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

package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/phen0menon/mxquadtree/pkg/utils/apiutil"
	"github.com/phen0menon/mxquadtree/pkg/utils/assertutil"
	"github.com/phen0menon/mxquadtree/pkg/utils/logutil"
	"github.com/phen0menon/mxquadtree/pkg/utils/testutil"
	"github.com/phen0menon/mxquadtree/server/config"
	"github.com/pingcap/log"
	"github.com/stretchr/testify/require"
)

// NewTestServer creates a running mxqt server on a random local port.
func NewTestServer(re *require.Assertions, c *assertutil.Checker, builders ...HandlerBuilder) (*Server, testutil.CleanupFunc, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := NewTestSingleConfig(c)
	s, err := CreateServer(ctx, cfg, builders...)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if err = s.Run(); err != nil {
		cancel()
		return nil, nil, err
	}

	cleanup := func() {
		cancel()
		s.Close()
	}
	return s, cleanup, nil
}

var zapLogOnce sync.Once

// NewTestSingleConfig is only for test to create one mxqt server config.
func NewTestSingleConfig(c *assertutil.Checker) *config.Config {
	cfg := config.NewConfig()
	cfg.Name = "mxqt"
	cfg.ListenAddr = "127.0.0.1:0"
	err := logutil.SetupLogger(cfg.Log, &cfg.Logger, &cfg.LogProps)
	c.AssertNoError(err, "setup logger")
	zapLogOnce.Do(func() {
		log.ReplaceGlobals(cfg.Logger, cfg.LogProps)
	})

	c.AssertNoError(cfg.Adjust(nil), "adjust config")
	return cfg
}

// CreateMockHandler creates a mock handler for test.
func CreateMockHandler(re *require.Assertions, ip string) HandlerBuilder {
	return func(ctx context.Context, s *Server) (http.Handler, error) {
		mux := http.NewServeMux()
		mux.HandleFunc(apiutil.CorePath+"/mock/hello", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, "Hello World")
			// test getting ip
			clientIP := apiutil.GetIPAddrFromHTTPRequest(r)
			re.Equal(ip, clientIP)
		})
		return mux, nil
	}
}
