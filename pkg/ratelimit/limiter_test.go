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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestConcurrencyLimit(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	limiter := NewLimiter()
	label := "InsertPoint"

	status := limiter.Configure(label, DimensionConfig{Concurrency: 10})
	re.True(status&ConcurrencyChanged != 0)
	re.True(status&QPSNoChange != 0)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		releases []func()
		failed   int
	)
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, ok := limiter.Acquire(label)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				releases = append(releases, release)
			} else {
				failed++
			}
		}()
	}
	wg.Wait()
	re.Len(releases, 10)
	re.Equal(5, failed)
	capacity, inFlight := limiter.ConcurrencyStatus(label)
	re.Equal(uint64(10), capacity)
	re.Equal(uint64(10), inFlight)

	for _, release := range releases {
		release()
	}
	_, inFlight = limiter.ConcurrencyStatus(label)
	re.Zero(inFlight)

	re.True(limiter.Configure(label, DimensionConfig{Concurrency: 10})&ConcurrencyNoChange != 0)
	re.True(limiter.Configure(label, DimensionConfig{Concurrency: 1})&ConcurrencyChanged != 0)
	release, ok := limiter.Acquire(label)
	re.True(ok)
	_, ok = limiter.Acquire(label)
	re.False(ok)
	release()

	re.True(limiter.Configure(label, DimensionConfig{})&ConcurrencyDeleted != 0)
	for i := 0; i < 5; i++ {
		_, ok = limiter.Acquire(label)
		re.True(ok)
	}
	capacity, inFlight = limiter.ConcurrencyStatus(label)
	re.Zero(capacity)
	re.Zero(inFlight)
}

func TestQPSLimit(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	limiter := NewLimiter()
	label := "QueryRegion"

	status := limiter.Configure(label, DimensionConfig{QPS: float64(rate.Every(time.Second)), QPSBurst: 1})
	re.True(status&QPSChanged != 0)
	_, ok := limiter.Acquire(label)
	re.True(ok)
	_, ok = limiter.Acquire(label)
	re.False(ok)

	qps, burst := limiter.QPSStatus(label)
	re.Equal(rate.Limit(1), qps)
	re.Equal(1, burst)
	re.True(limiter.Configure(label, DimensionConfig{QPS: 1, QPSBurst: 1})&QPSNoChange != 0)

	re.True(limiter.Configure(label, DimensionConfig{QPS: 5, QPSBurst: 5})&QPSChanged != 0)
	qps, burst = limiter.QPSStatus(label)
	re.Equal(rate.Limit(5), qps)
	re.Equal(5, burst)
	time.Sleep(time.Second)
	for i := 0; i < 10; i++ {
		_, ok = limiter.Acquire(label)
		re.Equal(i < 5, ok)
	}

	re.True(limiter.Configure(label, DimensionConfig{})&QPSDeleted != 0)
	for i := 0; i < 10; i++ {
		_, ok = limiter.Acquire(label)
		re.True(ok)
	}
	qps, burst = limiter.QPSStatus(label)
	re.Zero(qps)
	re.Zero(burst)
}

func TestQPSRejectReleasesConcurrency(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	limiter := NewLimiter()
	label := "RemovePoint"
	limiter.Configure(label, DimensionConfig{QPS: 1, QPSBurst: 1, Concurrency: 5})

	release, ok := limiter.Acquire(label)
	re.True(ok)
	_, ok = limiter.Acquire(label)
	re.False(ok)
	_, inFlight := limiter.ConcurrencyStatus(label)
	re.Equal(uint64(1), inFlight)
	release()
	_, inFlight = limiter.ConcurrencyStatus(label)
	re.Zero(inFlight)
}

func TestAllowList(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	limiter := NewLimiter("Ping")
	re.True(limiter.IsInAllowList("Ping"))
	re.False(limiter.IsInAllowList("InsertPoint"))

	status := limiter.Configure("Ping", DimensionConfig{QPS: 1, QPSBurst: 1})
	re.Equal(InAllowList, status)
	for i := 0; i < 10; i++ {
		_, ok := limiter.Acquire("Ping")
		re.True(ok)
	}
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	l := NewRateLimiter(1, 2)
	re.True(l.Allow())
	re.True(l.Allow())
	re.False(l.Allow())

	l.Reconfigure(100, 10)
	qps, burst := l.Status()
	re.Equal(rate.Limit(100), qps)
	re.Equal(10, burst)
}
