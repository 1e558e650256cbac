// File: optimize/metrics.go

package optimize

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time, copy-on-read view of the rolling metrics.
// Consumers (the Expert context shaper, reports) only ever see snapshots;
// nothing outside the tracker mutates the aggregate.
type Snapshot struct {
	TotalRequests       uint64            `json:"totalRequests"`
	SuccessfulRequests  uint64            `json:"successfulRequests"`
	FailedRequests      uint64            `json:"failedRequests"`
	TotalResponseTime   time.Duration     `json:"totalResponseTime"`
	AverageResponseTime time.Duration     `json:"averageResponseTime"`
	CacheHitRate        float64           `json:"cacheHitRate"`
	QualityScore        float64           `json:"qualityScore"`
	ErrorDistribution   map[string]uint64 `json:"errorDistribution"`
	ResponseTimeBuckets map[string]uint64 `json:"responseTimeBuckets"`
}

// performanceTracker aggregates call outcomes. It lives as long as its engine
// and is only reset by constructing a new engine.
type performanceTracker struct {
	mu                  sync.Mutex
	totalRequests       uint64
	successfulRequests  uint64
	failedRequests      uint64
	totalResponseTime   time.Duration
	cacheHitRate        float64
	qualityScore        float64
	errorDistribution   map[string]uint64
	responseTimeBuckets map[string]uint64
}

func newPerformanceTracker() *performanceTracker {
	return &performanceTracker{
		errorDistribution: make(map[string]uint64),
		responseTimeBuckets: map[string]uint64{
			"fast":   0,
			"normal": 0,
			"slow":   0,
		},
	}
}

func bucketFor(elapsed time.Duration) string {
	switch {
	case elapsed < FastResponseBound:
		return "fast"
	case elapsed < NormalResponseBound:
		return "normal"
	default:
		return "slow"
	}
}

// RecordSuccess tallies a completed call. A cache hit nudges the hit-rate
// moving average toward 1; a miss leaves it untouched.
func (t *performanceTracker) RecordSuccess(elapsed time.Duration, cacheHit bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalRequests++
	t.successfulRequests++
	t.totalResponseTime += elapsed
	t.responseTimeBuckets[bucketFor(elapsed)]++
	if cacheHit {
		t.cacheHitRate = t.cacheHitRate*hitRateDecay + (1 - hitRateDecay)
	}
}

// RecordFailure tallies a failed call under its error category.
func (t *performanceTracker) RecordFailure(category string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalRequests++
	t.failedRequests++
	t.errorDistribution[category]++
}

// RunMonitorPass recomputes the derived quality score. The engine invokes it
// after every call while the performance monitor is active.
func (t *performanceTracker) RunMonitorPass() {
	t.mu.Lock()
	defer t.mu.Unlock()

	successRate := 0.0
	if t.totalRequests > 0 {
		successRate = float64(t.successfulRequests) / float64(t.totalRequests)
	}
	t.qualityScore = successRate*qualitySuccessWeight + t.cacheHitRate*qualityHitRateWeight
}

// Snapshot copies the aggregate under lock.
func (t *performanceTracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	avg := time.Duration(0)
	if t.totalRequests > 0 {
		avg = t.totalResponseTime / time.Duration(t.totalRequests)
	}

	errors := make(map[string]uint64, len(t.errorDistribution))
	for k, v := range t.errorDistribution {
		errors[k] = v
	}
	buckets := make(map[string]uint64, len(t.responseTimeBuckets))
	for k, v := range t.responseTimeBuckets {
		buckets[k] = v
	}

	return Snapshot{
		TotalRequests:       t.totalRequests,
		SuccessfulRequests:  t.successfulRequests,
		FailedRequests:      t.failedRequests,
		TotalResponseTime:   t.totalResponseTime,
		AverageResponseTime: avg,
		CacheHitRate:        t.cacheHitRate,
		QualityScore:        t.qualityScore,
		ErrorDistribution:   errors,
		ResponseTimeBuckets: buckets,
	}
}
