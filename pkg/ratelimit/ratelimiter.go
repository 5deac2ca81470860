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
	"time"

	"github.com/phen0menon/mxquadtree/pkg/utils/syncutil"
	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket based on `golang.org/x/time/rate` that can
// be reconfigured atomically.
type RateLimiter struct {
	mu      syncutil.Mutex
	limiter *rate.Limiter
}

// NewRateLimiter returns a limiter refilling qps tokens per second with at
// most burst tokens buffered.
func NewRateLimiter(qps float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(qps), burst)}
}

// Allow takes one token if there is one.
func (l *RateLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limiter.AllowN(time.Now(), 1)
}

// Reconfigure changes both the refill rate and the burst.
func (l *RateLimiter) Reconfigure(qps float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiter.SetLimit(rate.Limit(qps))
	l.limiter.SetBurst(burst)
}

// Status returns the current rate and burst.
func (l *RateLimiter) Status() (rate.Limit, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limiter.Limit(), l.limiter.Burst()
}

// gate bounds the number of requests in flight.
type gate struct {
	mu       syncutil.Mutex
	inFlight uint64
	capacity uint64
}

func (g *gate) enter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight >= g.capacity {
		return false
	}
	g.inFlight++
	return true
}

func (g *gate) leave() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight > 0 {
		g.inFlight--
	}
}

func (g *gate) resize(capacity uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.capacity = capacity
}

func (g *gate) status() (uint64, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.capacity, g.inFlight
}
