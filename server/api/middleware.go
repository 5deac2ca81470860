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

package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/phen0menon/mxquadtree/pkg/utils/requestutil"
	"github.com/phen0menon/mxquadtree/server"
	"github.com/unrolled/render"
	"github.com/urfave/negroni"
)

// serviceMiddlewareBuilder is used to build service middleware for HTTP api
type serviceMiddlewareBuilder struct {
	svr      *server.Server
	handlers []negroni.Handler
}

func newServiceMiddlewareBuilder(s *server.Server) *serviceMiddlewareBuilder {
	rd := render.New(render.Options{IndentJSON: true})
	return &serviceMiddlewareBuilder{
		svr: s,
		handlers: []negroni.Handler{
			newBodyLimitMiddleware(s, rd),
			newRequestInfoMiddleware(),
			newAuditMiddleware(s),
			newRateLimitMiddleware(s, rd),
		},
	}
}

func (s *serviceMiddlewareBuilder) createHandler(next http.Handler) http.Handler {
	return negroni.New(append(s.handlers, negroni.Wrap(next))...)
}

// serverStateMiddleware refuses requests once the server is closing.
type serverStateMiddleware struct {
	svr *server.Server
	rd  *render.Render
}

func newServerStateMiddleware(s *server.Server) negroni.Handler {
	return &serverStateMiddleware{svr: s, rd: render.New(render.Options{IndentJSON: true})}
}

func (m *serverStateMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if m.svr.IsClosed() {
		m.rd.JSON(w, http.StatusServiceUnavailable, errs.ErrServerClosed.FastGenByArgs().Error())
		return
	}
	next(w, r)
}

// bodyLimitMiddleware rejects request bodies larger than api.max-request-bytes.
type bodyLimitMiddleware struct {
	limit int64
	rd    *render.Render
}

func newBodyLimitMiddleware(s *server.Server, rd *render.Render) negroni.Handler {
	return &bodyLimitMiddleware{limit: int64(s.GetConfig().API.MaxRequestBytes), rd: rd}
}

func (m *bodyLimitMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if m.limit <= 0 || r.Body == nil || r.Body == http.NoBody {
		next(w, r)
		return
	}
	if r.ContentLength > m.limit {
		m.tooLarge(w)
		return
	}
	buf, err := io.ReadAll(http.MaxBytesReader(w, r.Body, m.limit))
	r.Body.Close()
	if err != nil {
		m.tooLarge(w)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(buf))
	next(w, r)
}

func (m *bodyLimitMiddleware) tooLarge(w http.ResponseWriter) {
	m.rd.JSON(w, http.StatusRequestEntityTooLarge, http.StatusText(http.StatusRequestEntityTooLarge))
}

// requestInfoMiddleware is used to gather info from requsetInfo
type requestInfoMiddleware struct{}

func newRequestInfoMiddleware() negroni.Handler {
	return &requestInfoMiddleware{}
}

func (rm *requestInfoMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	requestInfo := requestutil.GetRequestInfo(r)
	r = r.WithContext(requestutil.WithRequestInfo(r.Context(), requestInfo))
	next(w, r)
}

type auditMiddleware struct {
	svr *server.Server
}

func newAuditMiddleware(s *server.Server) negroni.Handler {
	return &auditMiddleware{svr: s}
}

// ServeHTTP is used to implememt negroni.Handler for auditMiddleware
func (s *auditMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	auditor := s.svr.GetAuditor()
	requestInfo, ok := requestutil.RequestInfoFrom(r.Context())
	if !ok {
		requestInfo = requestutil.GetRequestInfo(r)
	}
	if !auditor.Audited(requestInfo.ServiceLabel) {
		next(w, r)
		return
	}

	rw, ok := w.(negroni.ResponseWriter)
	if !ok {
		rw = negroni.NewResponseWriter(w)
	}
	next(rw, r)

	status := rw.Status()
	if status == 0 {
		status = http.StatusOK
	}
	auditor.Record(&requestInfo, status, time.Since(requestInfo.StartTime))
}

type rateLimitMiddleware struct {
	svr *server.Server
	rd  *render.Render
}

func newRateLimitMiddleware(s *server.Server, rd *render.Render) negroni.Handler {
	return &rateLimitMiddleware{svr: s, rd: rd}
}

// ServeHTTP is used to implememt negroni.Handler for rateLimitMiddleware
func (s *rateLimitMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	requestInfo, ok := requestutil.RequestInfoFrom(r.Context())
	if !ok {
		requestInfo = requestutil.GetRequestInfo(r)
	}

	// There is no need to check whether rateLimiter is nil. CreateServer ensures that it is created
	release, ok := s.svr.GetServiceRateLimiter().Acquire(requestInfo.ServiceLabel)
	if !ok {
		s.rd.JSON(w, http.StatusTooManyRequests, errs.ErrRateLimited.FastGenByArgs().Error())
		return
	}
	defer release()
	next(w, r)
}
