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

import "github.com/prometheus/client_golang/prometheus"

var (
	operationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mxqt",
			Subsystem: "quadtree",
			Name:      "operation_total",
			Help:      "Counter of quadtree operations.",
		}, []string{"type", "result"})

	treeGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mxqt",
			Subsystem: "quadtree",
			Name:      "shape",
			Help:      "Node, leaf and occupied leaf counts and the height of the tree.",
		}, []string{"type"})

	queryResultSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mxqt",
			Subsystem: "quadtree",
			Name:      "query_result_size",
			Help:      "Bucketed histogram of the number of leaves returned by region queries and scans.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
		})

	serverInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mxqt",
			Subsystem: "server",
			Name:      "info",
			Help:      "Indicate the mxqt server info, and the value is the start timestamp (s).",
		}, []string{"version", "hash"})

	serviceAuditHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mxqt",
			Subsystem: "service",
			Name:      "audit_handling_seconds",
			Help:      "Bucketed histogram of the handling time of audited requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 20),
		}, []string{"service", "component", "status"})
)

func init() {
	prometheus.MustRegister(operationCounter)
	prometheus.MustRegister(treeGauge)
	prometheus.MustRegister(queryResultSize)
	prometheus.MustRegister(serverInfo)
	prometheus.MustRegister(serviceAuditHistogram)
}
