// Package telemetry records engine and API metrics. Implementations export to
// Prometheus or keep counts in memory for tests.
package telemetry

import (
	"sync"
	"time"
)

// Collector defines the metrics the dashboard engine reports
type Collector interface {
	// Result cache
	RecordCacheLookup(hit bool)
	RecordCacheStore()

	// Dashboard computation
	RecordCompute(path string, duration time.Duration, err error)
	RecordDroppedRecords(n int)
	RecordAlerts(severity string, n int)

	// HTTP
	RecordRequest(route string, status int, duration time.Duration)
}

// NoOpCollector is the default when metrics are not needed
type NoOpCollector struct{}

func (NoOpCollector) RecordCacheLookup(hit bool)                                     {}
func (NoOpCollector) RecordCacheStore()                                              {}
func (NoOpCollector) RecordCompute(path string, duration time.Duration, err error)   {}
func (NoOpCollector) RecordDroppedRecords(n int)                                     {}
func (NoOpCollector) RecordAlerts(severity string, n int)                            {}
func (NoOpCollector) RecordRequest(route string, status int, duration time.Duration) {}

// MemoryCollector keeps counts in memory
type MemoryCollector struct {
	mu sync.Mutex

	CacheHits      int64
	CacheMisses    int64
	CacheStores    int64
	Computes       map[string]int64
	ComputeErrors  map[string]int64
	DroppedRecords int64
	Alerts         map[string]int64
	Requests       map[string]int64
}

// NewMemoryCollector creates an empty in-memory collector
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{
		Computes:      make(map[string]int64),
		ComputeErrors: make(map[string]int64),
		Alerts:        make(map[string]int64),
		Requests:      make(map[string]int64),
	}
}

func (mc *MemoryCollector) RecordCacheLookup(hit bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if hit {
		mc.CacheHits++
	} else {
		mc.CacheMisses++
	}
}

func (mc *MemoryCollector) RecordCacheStore() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.CacheStores++
}

func (mc *MemoryCollector) RecordCompute(path string, duration time.Duration, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Computes[path]++
	if err != nil {
		mc.ComputeErrors[path]++
	}
}

func (mc *MemoryCollector) RecordDroppedRecords(n int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.DroppedRecords += int64(n)
}

func (mc *MemoryCollector) RecordAlerts(severity string, n int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Alerts[severity] += int64(n)
}

func (mc *MemoryCollector) RecordRequest(route string, status int, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Requests[route]++
}

// Snapshot returns hit and miss counts under the lock
func (mc *MemoryCollector) Snapshot() (hits, misses, stores int64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.CacheHits, mc.CacheMisses, mc.CacheStores
}
