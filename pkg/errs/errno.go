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

package errs

import "github.com/pingcap/errors"

// quadtree errors
var (
	ErrInvalidDomain    = errors.Normalize("invalid plane domain %v", errors.RFCCodeText("MXQT:quadtree:ErrInvalidDomain"))
	ErrInvalidDepth     = errors.Normalize("invalid max depth %d, it should be in [1, %d]", errors.RFCCodeText("MXQT:quadtree:ErrInvalidDepth"))
	ErrPointOutOfDomain = errors.Normalize("point (%v, %v) is out of domain %v", errors.RFCCodeText("MXQT:quadtree:ErrPointOutOfDomain"))
	ErrEmptyLabel       = errors.Normalize("label %d is reserved for empty leaves", errors.RFCCodeText("MXQT:quadtree:ErrEmptyLabel"))
)

// server errors
var (
	ErrServerClosed    = errors.Normalize("server is closed", errors.RFCCodeText("MXQT:server:ErrServerClosed"))
	ErrStartHTTPServer = errors.Normalize("start http server on %s failed", errors.RFCCodeText("MXQT:server:ErrStartHTTPServer"))
	ErrRenderChart     = errors.Normalize("render chart failed", errors.RFCCodeText("MXQT:server:ErrRenderChart"))
)

// apiutil errors
var (
	ErrInvalidArgument = errors.Normalize("invalid argument %s: %v", errors.RFCCodeText("MXQT:apiutil:ErrInvalidArgument"))
	ErrRateLimited     = errors.Normalize("request is rate limited", errors.RFCCodeText("MXQT:apiutil:ErrRateLimited"))
	ErrReadHTTPBody    = errors.Normalize("read http body failed", errors.RFCCodeText("MXQT:apiutil:ErrReadHTTPBody"))
)

// config errors
var (
	ErrLoadConfig      = errors.Normalize("load config failed", errors.RFCCodeText("MXQT:config:ErrLoadConfig"))
	ErrInvalidConfig   = errors.Normalize("invalid config: %s", errors.RFCCodeText("MXQT:config:ErrInvalidConfig"))
	ErrParseByteSize   = errors.Normalize("parse byte size %s failed", errors.RFCCodeText("MXQT:config:ErrParseByteSize"))
	ErrParseDuration   = errors.Normalize("parse duration %s failed", errors.RFCCodeText("MXQT:config:ErrParseDuration"))
	ErrParseFloat      = errors.Normalize("parse number %v failed", errors.RFCCodeText("MXQT:config:ErrParseFloat"))
	ErrInitLogger      = errors.Normalize("init logger error", errors.RFCCodeText("MXQT:log:ErrInitLogger"))
	ErrPushMetrics     = errors.Normalize("push metrics to prometheus failed", errors.RFCCodeText("MXQT:prometheus:ErrPushMetrics"))
	ErrChartOutputFile = errors.Normalize("open chart output file %s failed", errors.RFCCodeText("MXQT:chart:ErrChartOutputFile"))
)
