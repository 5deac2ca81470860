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

package metricutil

import (
	"context"
	"net/http"
	"os"
	"time"
	"unicode"

	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/phen0menon/mxquadtree/pkg/utils/typeutil"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

// MetricConfig is the metric configuration.
// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type MetricConfig struct {
	PushJob      string            `toml:"job" json:"job"`
	PushAddress  string            `toml:"address" json:"address"`
	PushInterval typeutil.Duration `toml:"interval" json:"interval"`
}

// Enabled reports whether metrics should be pushed.
func (c *MetricConfig) Enabled() bool {
	return c.PushInterval.Duration > 0 && len(c.PushAddress) > 0
}

func hasLowerNeighbor(runes []rune, i int) bool {
	return (i > 0 && unicode.IsLower(runes[i-1])) ||
		(i+1 < len(runes) && unicode.IsLower(runes[i+1]))
}

// SnakeCase turns a route or service name such as "InsertPoint" into a
// metric label value such as "insert_point". Acronyms stay together.
func SnakeCase(name string) string {
	runes := []rune(name)
	out := make([]rune, 0, len(runes)+4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && hasLowerNeighbor(runes, i) {
			out = append(out, '_')
		}
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}

// Push periodically pushes the metrics of gatherer to the configured
// Pushgateway and blocks until ctx is done. It returns immediately when
// pushing is disabled.
func Push(ctx context.Context, cfg *MetricConfig, gatherer prometheus.Gatherer) {
	if !cfg.Enabled() {
		log.Info("disable Prometheus push client")
		return
	}
	log.Info("start Prometheus push client",
		zap.String("address", cfg.PushAddress),
		zap.String("job", cfg.PushJob),
		zap.Duration("interval", cfg.PushInterval.Duration))

	pusher := push.New(cfg.PushAddress, cfg.PushJob).
		Client(&http.Client{
			Timeout:   cfg.PushInterval.Duration,
			Transport: &http.Transport{DisableKeepAlives: true},
		}).
		Gatherer(gatherer).
		Grouping("instance", instanceName())
	ticker := time.NewTicker(cfg.PushInterval.Duration)
	defer ticker.Stop()
	for {
		if err := pusher.Push(); err != nil && ctx.Err() == nil {
			log.Error("could not push metrics to Prometheus Pushgateway", errs.ZapError(errs.ErrPushMetrics, err))
		}
		select {
		case <-ctx.Done():
			log.Info("stop Prometheus push client")
			return
		case <-ticker.C:
		}
	}
}

func instanceName() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
