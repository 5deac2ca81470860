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

package audit

import (
	"strconv"
	"time"

	"github.com/phen0menon/mxquadtree/pkg/utils/metricutil"
	"github.com/phen0menon/mxquadtree/pkg/utils/requestutil"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// PrometheusHistogram is the name of HistogramBackend.
	PrometheusHistogram = "prometheus-histogram"
	// LocalLog is the name of LogBackend.
	LocalLog = "local-log"
)

// Backend records finished requests.
type Backend interface {
	Name() string
	Process(info *requestutil.RequestInfo, status int, elapsed time.Duration)
}

// HistogramBackend observes the handling time of each service.
// Note: histogram.WithLabelValues will degrade performance.
// Please don't use it in the hot path.
type HistogramBackend struct {
	histogramVec *prometheus.HistogramVec
}

// NewHistogramBackend returns a backend observing into histogramVec, which
// must have the labels "service", "component" and "status".
func NewHistogramBackend(histogramVec *prometheus.HistogramVec) *HistogramBackend {
	return &HistogramBackend{histogramVec: histogramVec}
}

// Name implements Backend.
func (b *HistogramBackend) Name() string {
	return PrometheusHistogram
}

// Process implements Backend.
func (b *HistogramBackend) Process(info *requestutil.RequestInfo, status int, elapsed time.Duration) {
	b.histogramVec.WithLabelValues(metricutil.SnakeCase(info.ServiceLabel), info.Component, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// LogBackend writes an audit log line with `github.com/pingcap/log`.
type LogBackend struct{}

// NewLogBackend returns a LogBackend.
func NewLogBackend() *LogBackend {
	return &LogBackend{}
}

// Name implements Backend.
func (*LogBackend) Name() string {
	return LocalLog
}

// Process implements Backend.
func (*LogBackend) Process(info *requestutil.RequestInfo, status int, elapsed time.Duration) {
	fields := append(info.Fields(), zap.Int("status", status), zap.Duration("elapsed", elapsed))
	log.Info("audit log", fields...)
}

// Auditor dispatches the requests of selected services to its backends.
type Auditor struct {
	services map[string]struct{}
	backends []Backend
}

// NewAuditor audits the given services with backends. An empty service
// list audits every service.
func NewAuditor(services []string, backends ...Backend) *Auditor {
	a := &Auditor{
		services: make(map[string]struct{}, len(services)),
		backends: backends,
	}
	for _, s := range services {
		a.services[s] = struct{}{}
	}
	return a
}

// Audited reports whether requests of service are recorded.
func (a *Auditor) Audited(service string) bool {
	if a == nil || len(a.backends) == 0 {
		return false
	}
	if len(a.services) == 0 {
		return true
	}
	_, ok := a.services[service]
	return ok
}

// Record passes a finished request to every backend.
func (a *Auditor) Record(info *requestutil.RequestInfo, status int, elapsed time.Duration) {
	for _, b := range a.backends {
		b.Process(info, status, elapsed)
	}
}
