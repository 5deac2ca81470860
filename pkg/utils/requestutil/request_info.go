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

package requestutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/phen0menon/mxquadtree/pkg/utils/apiutil"
	"github.com/phen0menon/mxquadtree/pkg/utils/logutil"
	"go.uber.org/zap"
)

// maxBodyParam bounds how much of a request body is kept for auditing.
const maxBodyParam = 4096

// RequestInfo holds the audited facts of an HTTP request.
type RequestInfo struct {
	ServiceLabel string
	Method       string
	Path         string
	Component    string
	IP           string
	URLParam     string
	BodyParam    string
	StartTime    time.Time
}

// GetRequestInfo collects the request info of r. The body is read and put
// back so that handlers can still consume it.
func GetRequestInfo(r *http.Request) RequestInfo {
	return RequestInfo{
		ServiceLabel: apiutil.GetRouteName(r),
		Method:       r.Method,
		Path:         r.URL.Path,
		Component:    apiutil.GetComponentNameOnHTTP(r),
		IP:           apiutil.GetIPAddrFromHTTPRequest(r),
		URLParam:     getURLParam(r),
		BodyParam:    getBodyParam(r),
		StartTime:    time.Now(),
	}
}

// Fields renders the info as log fields. Parameters carry coordinates and
// are redacted when log redaction is on.
func (info *RequestInfo) Fields() []zap.Field {
	return []zap.Field{
		zap.String("service", info.ServiceLabel),
		zap.String("method", info.Method),
		zap.String("path", info.Path),
		zap.String("component", info.Component),
		zap.String("ip", info.IP),
		zap.String("url-param", logutil.RedactString(info.URLParam)),
		zap.String("body-param", logutil.RedactString(info.BodyParam)),
		zap.Time("start-time", info.StartTime),
	}
}

func getURLParam(r *http.Request) string {
	if len(r.URL.RawQuery) == 0 {
		return ""
	}
	buf, err := json.Marshal(r.URL.Query())
	if err != nil {
		return ""
	}
	return string(buf)
}

func getBodyParam(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	buf, _ := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewBuffer(buf))
	if len(buf) > maxBodyParam {
		buf = buf[:maxBodyParam]
	}
	return string(buf)
}
