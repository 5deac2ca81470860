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
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/phen0menon/mxquadtree/pkg/audit"
	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/phen0menon/mxquadtree/pkg/quadtree"
	"github.com/phen0menon/mxquadtree/pkg/ratelimit"
	"github.com/phen0menon/mxquadtree/pkg/utils/apiutil"
	"github.com/phen0menon/mxquadtree/pkg/utils/logutil"
	"github.com/phen0menon/mxquadtree/pkg/utils/metricutil"
	"github.com/phen0menon/mxquadtree/pkg/versioninfo"
	"github.com/phen0menon/mxquadtree/server/config"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	serverMetricsInterval = 10 * time.Second
	shutdownTimeout       = 5 * time.Second
)

// Routes that are never rate limited.
var unlimitedServices = []string{"Ping", "GetMetrics"}

// Server is the mxqt server, it serves one quadtree over HTTP.
type Server struct {
	// Server state.
	isServing atomic.Bool

	// Server start timestamp
	startTimestamp int64

	cfg     *config.Config
	handler *Handler

	ctx              context.Context
	serverLoopCtx    context.Context
	serverLoopCancel func()
	serverLoopWg     sync.WaitGroup

	httpServer *http.Server
	listener   net.Listener
	// userHandler is the combined HTTP handler built by the HandlerBuilders.
	userHandler http.Handler

	serviceRateLimiter *ratelimit.Limiter
	auditor            *audit.Auditor

	// startCallbacks will be called after the server is started.
	startCallbacks []func()
	// closeCallbacks will be called before the server is closed.
	closeCallbacks []func()
}

// HandlerBuilder builds the HTTP handler served under apiutil.CorePath.
type HandlerBuilder func(context.Context, *Server) (http.Handler, error)

// CreateServer creates the UNINITIALIZED server with given configuration.
func CreateServer(ctx context.Context, cfg *config.Config, builders ...HandlerBuilder) (*Server, error) {
	log.Info("mxqt config", zap.Reflect("config", cfg))
	tree, err := quadtree.NewTree(cfg.Plane.Domain(), quadtree.WithMaxDepth(cfg.Plane.MaxDepth))
	if err != nil {
		return nil, err
	}
	logutil.SetRedactLog(cfg.EnableRedactLog)

	s := &Server{
		cfg:                cfg,
		ctx:                ctx,
		startTimestamp:     time.Now().Unix(),
		handler:            newHandler(tree, cfg.Plane.RejectOutside),
		serviceRateLimiter: ratelimit.NewLimiter(unlimitedServices...),
	}
	if cfg.Audit.Enable {
		s.auditor = audit.NewAuditor(cfg.Audit.Services,
			audit.NewLogBackend(),
			audit.NewHistogramBackend(serviceAuditHistogram))
	}

	mux := http.NewServeMux()
	for _, build := range builders {
		h, err := build(ctx, s)
		if err != nil {
			return nil, err
		}
		mux.Handle(apiutil.CorePath+"/", h)
	}
	s.userHandler = mux
	return s, nil
}

// AddStartCallback adds a callback in the startServer phase.
func (s *Server) AddStartCallback(callbacks ...func()) {
	s.startCallbacks = append(s.startCallbacks, callbacks...)
}

// AddCloseCallback adds a callback in the Close phase.
func (s *Server) AddCloseCallback(callbacks ...func()) {
	s.closeCallbacks = append(s.closeCallbacks, callbacks...)
}

// Run starts serving HTTP and the background loops. It returns once the
// listener is ready.
func (s *Server) Run() error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return errs.ErrStartHTTPServer.Wrap(err).GenWithStackByArgs(s.cfg.ListenAddr)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.userHandler,
		ReadHeaderTimeout: 3 * time.Second,
	}

	s.startServerLoop(s.ctx)
	s.serverLoopWg.Add(1)
	go s.serveHTTP()

	serverInfo.WithLabelValues(versioninfo.ReleaseVersion, versioninfo.GitHash).Set(float64(s.startTimestamp))
	s.serverLoopWg.Add(1)
	go s.pushMetrics()

	log.Info("triggering the start callback functions")
	for _, cb := range s.startCallbacks {
		cb()
	}
	s.isServing.Store(true)
	log.Info("mxqt server is serving", zap.String("addr", s.GetAddr()), zap.Stringer("plane", s.handler.Domain()), zap.Int("max-depth", s.handler.MaxDepth()))
	return nil
}

func (s *Server) pushMetrics() {
	defer logutil.LogPanic()
	defer s.serverLoopWg.Done()
	metricutil.Push(s.serverLoopCtx, &s.cfg.Metric, prometheus.DefaultGatherer)
}

func (s *Server) serveHTTP() {
	defer logutil.LogPanic()
	defer s.serverLoopWg.Done()
	if err := s.httpServer.Serve(s.listener); err != nil && err != http.ErrServerClosed {
		log.Error("http server exited", errs.ZapError(err))
	}
}

// Close closes the server.
func (s *Server) Close() {
	if !s.isServing.CompareAndSwap(true, false) {
		// server is already closed
		return
	}
	log.Info("closing server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown http server meet error", errs.ZapError(err))
	}
	s.stopServerLoop()

	log.Info("triggering the close callback functions")
	for _, cb := range s.closeCallbacks {
		cb()
	}
	log.Info("close server")
}

// IsClosed checks whether server is closed or not.
func (s *Server) IsClosed() bool {
	return !s.isServing.Load()
}

// Context returns the context of server.
func (s *Server) Context() context.Context {
	return s.ctx
}

func (s *Server) startServerLoop(ctx context.Context) {
	s.serverLoopCtx, s.serverLoopCancel = context.WithCancel(ctx)
	s.serverLoopWg.Add(1)
	go s.serverMetricsLoop()
}

func (s *Server) stopServerLoop() {
	s.serverLoopCancel()
	s.serverLoopWg.Wait()
}

func (s *Server) serverMetricsLoop() {
	defer logutil.LogPanic()
	defer s.serverLoopWg.Done()

	ticker := time.NewTicker(serverMetricsInterval)
	defer ticker.Stop()
	for {
		s.handler.updateMetrics()
		select {
		case <-ticker.C:
		case <-s.serverLoopCtx.Done():
			log.Info("server is closed, exit metrics loop")
			return
		}
	}
}

// GetAddr returns the address the server listens on.
func (s *Server) GetAddr() string {
	if s.listener == nil {
		return s.cfg.ListenAddr
	}
	return s.listener.Addr().String()
}

// GetHandler returns the handler for API.
func (s *Server) GetHandler() *Handler {
	return s.handler
}

// GetConfig gets the config information.
func (s *Server) GetConfig() *config.Config {
	return s.cfg.Clone()
}

// Name returns the unique name for this server.
func (s *Server) Name() string {
	return s.cfg.Name
}

// StartTimestamp returns the start timestamp of this server.
func (s *Server) StartTimestamp() int64 {
	return s.startTimestamp
}

// GetServiceRateLimiter returns the per-route rate limiter.
func (s *Server) GetServiceRateLimiter() *ratelimit.Limiter {
	return s.serviceRateLimiter
}

// GetAuditor returns the request auditor, nil when auditing is off.
func (s *Server) GetAuditor() *audit.Auditor {
	return s.auditor
}

// RegisterService applies the configured API limits to the named route.
func (s *Server) RegisterService(name string) {
	status := s.serviceRateLimiter.Configure(name, s.cfg.API.DimensionConfig())
	log.Debug("register api service", zap.String("service", name), zap.Uint32("limit-status", uint32(status)))
}
