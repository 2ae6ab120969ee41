// Copyright (c) 2024 Searchstack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"runtime"
	"time"

	"github.com/uber-go/tally"
	"go.uber.org/atomic"

	"github.com/searchstack/mlnode/pkg/common/lifecycle"
)

const _defaultCollectInterval = 10 * time.Second

// _numGCThreshold comes from the PauseNs buffer size
// https://golang.org/pkg/runtime/#MemStats
const _numGCThreshold = uint32(256)

// RuntimeConfig controls the Go runtime metrics collection.
type RuntimeConfig struct {
	Disable         bool          `yaml:"disable"`
	CollectInterval time.Duration `yaml:"collect_interval"`
}

// StartCollectingRuntimeMetrics starts emitting Go runtime metrics under
// the given scope. The returned closer stops the collection.
func StartCollectingRuntimeMetrics(
	scope tally.Scope,
	cfg RuntimeConfig) *RuntimeCollector {

	interval := cfg.CollectInterval
	if interval <= 0 {
		interval = _defaultCollectInterval
	}
	collector := NewRuntimeCollector(scope.SubScope("runtime"), interval)
	if !cfg.Disable {
		collector.Start()
	}
	return collector
}

type runtimeMetrics struct {
	numGoRoutines   tally.Gauge
	goMaxProcs      tally.Gauge
	memoryAllocated tally.Gauge
	memoryHeap      tally.Gauge
	memoryHeapIdle  tally.Gauge
	memoryHeapInuse tally.Gauge
	memoryStack     tally.Gauge
	numGC           tally.Counter
	gcPauseMs       tally.Timer
	lastNumGC       *atomic.Uint32
}

// RuntimeCollector periodically samples runtime.MemStats into tally.
type RuntimeCollector struct {
	lifecycle       lifecycle.LifeCycle
	collectInterval time.Duration
	metrics         runtimeMetrics
}

// NewRuntimeCollector creates a stopped RuntimeCollector.
func NewRuntimeCollector(
	scope tally.Scope,
	collectInterval time.Duration) *RuntimeCollector {

	var memstats runtime.MemStats
	runtime.ReadMemStats(&memstats)
	return &RuntimeCollector{
		lifecycle:       lifecycle.NewLifeCycle(),
		collectInterval: collectInterval,
		metrics: runtimeMetrics{
			numGoRoutines:   scope.Gauge("num_goroutines"),
			goMaxProcs:      scope.Gauge("gomaxprocs"),
			memoryAllocated: scope.Gauge("memory_allocated"),
			memoryHeap:      scope.Gauge("memory_heap"),
			memoryHeapIdle:  scope.Gauge("memory_heapidle"),
			memoryHeapInuse: scope.Gauge("memory_heapinuse"),
			memoryStack:     scope.Gauge("memory_stack"),
			numGC:           scope.Counter("memory_num_gc"),
			gcPauseMs:       scope.Timer("memory_gc_pause_ms"),
			lastNumGC:       atomic.NewUint32(memstats.NumGC),
		},
	}
}

// Start begins the periodic collection. It is a no-op when already
// started.
func (r *RuntimeCollector) Start() {
	if !r.lifecycle.Start() {
		return
	}
	go func() {
		defer r.lifecycle.StopComplete()

		ticker := time.NewTicker(r.collectInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.generate()
			case <-r.lifecycle.StopCh():
				return
			}
		}
	}()
}

// Close stops the collection.
func (r *RuntimeCollector) Close() error {
	if r.lifecycle.Stop() {
		r.lifecycle.Wait()
	}
	return nil
}

// generate samples the runtime and emits one round of metrics.
func (r *RuntimeCollector) generate() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	r.metrics.numGoRoutines.Update(float64(runtime.NumGoroutine()))
	r.metrics.goMaxProcs.Update(float64(runtime.GOMAXPROCS(0)))
	r.metrics.memoryAllocated.Update(float64(memStats.Alloc))
	r.metrics.memoryHeap.Update(float64(memStats.HeapAlloc))
	r.metrics.memoryHeapIdle.Update(float64(memStats.HeapIdle))
	r.metrics.memoryHeapInuse.Update(float64(memStats.HeapInuse))
	r.metrics.memoryStack.Update(float64(memStats.StackInuse))

	// NumGC is a perpetually incrementing counter, so the delta since
	// the previous sample is the number of cycles to account for.
	num := memStats.NumGC
	lastNum := r.metrics.lastNumGC.Swap(num)
	if delta := num - lastNum; delta > 0 {
		r.metrics.numGC.Inc(int64(delta))
		// beyond the threshold the PauseNs ring buffer has wrapped and
		// older pauses are gone
		if delta >= _numGCThreshold {
			lastNum = num - _numGCThreshold
		}
		for i := lastNum; i != num; i++ {
			pause := memStats.PauseNs[i%256]
			r.metrics.gcPauseMs.Record(time.Duration(pause))
		}
	}
}
