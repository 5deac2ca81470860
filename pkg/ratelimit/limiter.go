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

package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

const eps float64 = 1e-8

// UpdateStatus is a set of flags describing what Configure changed.
type UpdateStatus uint32

// Flags for limiter.
const (
	// QPSNoChange shows that the rate limit of the label is unchanged.
	QPSNoChange UpdateStatus = 1 << iota
	// QPSChanged shows that the rate limit was created or updated.
	QPSChanged
	// QPSDeleted shows that the rate limit was removed.
	QPSDeleted
	// ConcurrencyNoChange shows that the concurrency limit is unchanged.
	ConcurrencyNoChange
	// ConcurrencyChanged shows that the concurrency limit was created or updated.
	ConcurrencyChanged
	// ConcurrencyDeleted shows that the concurrency limit was removed.
	ConcurrencyDeleted
	// InAllowList shows that the label is never limited.
	InAllowList
)

// DimensionConfig is the limit of one label. Zero values disable a dimension.
type DimensionConfig struct {
	QPS         float64 `toml:"qps" json:"qps"`
	QPSBurst    int     `toml:"qps-burst" json:"qps-burst"`
	Concurrency uint64  `toml:"concurrency" json:"concurrency"`
}

// Limiter limits requests per label, typically one label per API route.
type Limiter struct {
	qps         sync.Map // label -> *RateLimiter
	concurrency sync.Map // label -> *gate
	allowList   map[string]struct{}
}

// NewLimiter returns a limiter that never limits the given labels.
func NewLimiter(allowList ...string) *Limiter {
	l := &Limiter{allowList: make(map[string]struct{}, len(allowList))}
	for _, label := range allowList {
		l.allowList[label] = struct{}{}
	}
	return l
}

// IsInAllowList returns whether label is never limited.
func (l *Limiter) IsInAllowList(label string) bool {
	_, ok := l.allowList[label]
	return ok
}

// Acquire admits one request of label. When ok is true, release must be
// called once the request is done.
func (l *Limiter) Acquire(label string) (release func(), ok bool) {
	var g *gate
	if v, exist := l.concurrency.Load(label); exist {
		g = v.(*gate)
		if !g.enter() {
			return nil, false
		}
	}
	if v, exist := l.qps.Load(label); exist && !v.(*RateLimiter).Allow() {
		if g != nil {
			g.leave()
		}
		return nil, false
	}
	if g == nil {
		return func() {}, true
	}
	return g.leave, true
}

// Configure installs cfg for label and reports what changed.
func (l *Limiter) Configure(label string, cfg DimensionConfig) UpdateStatus {
	if l.IsInAllowList(label) {
		return InAllowList
	}
	return l.configureQPS(label, cfg.QPS, cfg.QPSBurst) | l.configureConcurrency(label, cfg.Concurrency)
}

func (l *Limiter) configureQPS(label string, qps float64, burst int) UpdateStatus {
	oldQPS, oldBurst := l.QPSStatus(label)
	diff := float64(oldQPS) - qps
	if diff < eps && diff > -eps && oldBurst == burst {
		return QPSNoChange
	}
	if qps <= eps || burst < 1 {
		l.qps.Delete(label)
		return QPSDeleted
	}
	if v, exist := l.qps.LoadOrStore(label, NewRateLimiter(qps, burst)); exist {
		v.(*RateLimiter).Reconfigure(qps, burst)
	}
	return QPSChanged
}

func (l *Limiter) configureConcurrency(label string, capacity uint64) UpdateStatus {
	oldCapacity, _ := l.ConcurrencyStatus(label)
	if oldCapacity == capacity {
		return ConcurrencyNoChange
	}
	if capacity == 0 {
		l.concurrency.Delete(label)
		return ConcurrencyDeleted
	}
	if v, exist := l.concurrency.LoadOrStore(label, &gate{capacity: capacity}); exist {
		v.(*gate).resize(capacity)
	}
	return ConcurrencyChanged
}

// QPSStatus returns the rate and burst of label, zero when unlimited.
func (l *Limiter) QPSStatus(label string) (rate.Limit, int) {
	if v, exist := l.qps.Load(label); exist {
		return v.(*RateLimiter).Status()
	}
	return 0, 0
}

// ConcurrencyStatus returns the capacity and the requests in flight of label.
func (l *Limiter) ConcurrencyStatus(label string) (capacity uint64, inFlight uint64) {
	if v, exist := l.concurrency.Load(label); exist {
		return v.(*gate).status()
	}
	return 0, 0
}
