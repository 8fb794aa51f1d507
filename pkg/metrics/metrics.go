package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds performance metrics for the gateway
type Metrics struct {
	// Request metrics
	TotalRequests      int64 `json:"total_requests"`
	SuccessfulRequests int64 `json:"successful_requests"`
	FailedRequests     int64 `json:"failed_requests"`
	RateLimited        int64 `json:"rate_limited"`

	// Response time metrics
	AverageResponseTime time.Duration `json:"average_response_time"`
	MinResponseTime     time.Duration `json:"min_response_time"`
	MaxResponseTime     time.Duration `json:"max_response_time"`

	// Tiered cache metrics
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	CacheStale  int64 `json:"cache_stale"`

	// Upstream provider metrics
	UpstreamCalls    int64         `json:"upstream_calls"`
	UpstreamFailures int64         `json:"upstream_failures"`
	UpstreamTimeouts int64         `json:"upstream_timeouts"`
	AverageCallTime  time.Duration `json:"average_call_time"`

	// Concurrency metrics
	ActiveRequests int64 `json:"active_requests"`

	// Internal fields for calculations
	totalResponseTime time.Duration
	totalCallTime     time.Duration
	callsByProvider   map[string]int64
	mutex             sync.RWMutex
}

// Collector provides thread-safe metrics collection
type Collector struct {
	metrics   *Metrics
	startTime time.Time
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		metrics: &Metrics{
			MinResponseTime: time.Duration(^uint64(0) >> 1), // Max duration
			callsByProvider: make(map[string]int64),
		},
		startTime: time.Now(),
	}
}

// RecordRequest records a new request
func (c *Collector) RecordRequest() {
	atomic.AddInt64(&c.metrics.TotalRequests, 1)
	atomic.AddInt64(&c.metrics.ActiveRequests, 1)
}

// RecordRequestComplete records request completion
func (c *Collector) RecordRequestComplete(duration time.Duration, success bool) {
	atomic.AddInt64(&c.metrics.ActiveRequests, -1)

	if success {
		atomic.AddInt64(&c.metrics.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&c.metrics.FailedRequests, 1)
	}

	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()

	c.metrics.totalResponseTime += duration

	if duration < c.metrics.MinResponseTime {
		c.metrics.MinResponseTime = duration
	}
	if duration > c.metrics.MaxResponseTime {
		c.metrics.MaxResponseTime = duration
	}

	totalRequests := atomic.LoadInt64(&c.metrics.TotalRequests)
	if totalRequests > 0 {
		c.metrics.AverageResponseTime = c.metrics.totalResponseTime / time.Duration(totalRequests)
	}
}

// RecordRateLimited records a request rejected by the rate limiter
func (c *Collector) RecordRateLimited() {
	atomic.AddInt64(&c.metrics.RateLimited, 1)
}

// RecordCacheHit records a tiered cache hit
func (c *Collector) RecordCacheHit() {
	atomic.AddInt64(&c.metrics.CacheHits, 1)
}

// RecordCacheMiss records a tiered cache miss
func (c *Collector) RecordCacheMiss() {
	atomic.AddInt64(&c.metrics.CacheMisses, 1)
}

// RecordCacheStale records a stale value served after an upstream failure
func (c *Collector) RecordCacheStale() {
	atomic.AddInt64(&c.metrics.CacheStale, 1)
}

// RecordUpstreamCall records one outbound provider call
func (c *Collector) RecordUpstreamCall(provider string, duration time.Duration, success bool) {
	atomic.AddInt64(&c.metrics.UpstreamCalls, 1)

	if !success {
		atomic.AddInt64(&c.metrics.UpstreamFailures, 1)
	}

	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()

	c.metrics.callsByProvider[provider]++
	c.metrics.totalCallTime += duration

	totalCalls := atomic.LoadInt64(&c.metrics.UpstreamCalls)
	if totalCalls > 0 {
		c.metrics.AverageCallTime = c.metrics.totalCallTime / time.Duration(totalCalls)
	}
}

// RecordUpstreamTimeout records an outbound call that exceeded its budget
func (c *Collector) RecordUpstreamTimeout() {
	atomic.AddInt64(&c.metrics.UpstreamTimeouts, 1)
}

// GetMetrics returns a snapshot of current metrics
func (c *Collector) GetMetrics() *Metrics {
	c.metrics.mutex.RLock()
	defer c.metrics.mutex.RUnlock()

	snapshot := &Metrics{
		TotalRequests:       atomic.LoadInt64(&c.metrics.TotalRequests),
		SuccessfulRequests:  atomic.LoadInt64(&c.metrics.SuccessfulRequests),
		FailedRequests:      atomic.LoadInt64(&c.metrics.FailedRequests),
		RateLimited:         atomic.LoadInt64(&c.metrics.RateLimited),
		AverageResponseTime: c.metrics.AverageResponseTime,
		MinResponseTime:     c.metrics.MinResponseTime,
		MaxResponseTime:     c.metrics.MaxResponseTime,
		CacheHits:           atomic.LoadInt64(&c.metrics.CacheHits),
		CacheMisses:         atomic.LoadInt64(&c.metrics.CacheMisses),
		CacheStale:          atomic.LoadInt64(&c.metrics.CacheStale),
		UpstreamCalls:       atomic.LoadInt64(&c.metrics.UpstreamCalls),
		UpstreamFailures:    atomic.LoadInt64(&c.metrics.UpstreamFailures),
		UpstreamTimeouts:    atomic.LoadInt64(&c.metrics.UpstreamTimeouts),
		AverageCallTime:     c.metrics.AverageCallTime,
		ActiveRequests:      atomic.LoadInt64(&c.metrics.ActiveRequests),
	}
	return snapshot
}

// GetCallsByProvider returns per-provider upstream call counts
func (c *Collector) GetCallsByProvider() map[string]int64 {
	c.metrics.mutex.RLock()
	defer c.metrics.mutex.RUnlock()

	out := make(map[string]int64, len(c.metrics.callsByProvider))
	for provider, count := range c.metrics.callsByProvider {
		out[provider] = count
	}
	return out
}

// GetCacheHitRatio returns the cache hit ratio as a percentage
func (c *Collector) GetCacheHitRatio() float64 {
	hits := atomic.LoadInt64(&c.metrics.CacheHits)
	misses := atomic.LoadInt64(&c.metrics.CacheMisses)

	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// GetSuccessRate returns the request success rate as a percentage
func (c *Collector) GetSuccessRate() float64 {
	successful := atomic.LoadInt64(&c.metrics.SuccessfulRequests)
	failed := atomic.LoadInt64(&c.metrics.FailedRequests)

	total := successful + failed
	if total == 0 {
		return 0
	}
	return float64(successful) / float64(total) * 100
}

// GetUptime returns how long the collector has been running
func (c *Collector) GetUptime() time.Duration {
	return time.Since(c.startTime)
}

// Reset clears all metrics
func (c *Collector) Reset() {
	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()

	atomic.StoreInt64(&c.metrics.TotalRequests, 0)
	atomic.StoreInt64(&c.metrics.SuccessfulRequests, 0)
	atomic.StoreInt64(&c.metrics.FailedRequests, 0)
	atomic.StoreInt64(&c.metrics.RateLimited, 0)
	atomic.StoreInt64(&c.metrics.CacheHits, 0)
	atomic.StoreInt64(&c.metrics.CacheMisses, 0)
	atomic.StoreInt64(&c.metrics.CacheStale, 0)
	atomic.StoreInt64(&c.metrics.UpstreamCalls, 0)
	atomic.StoreInt64(&c.metrics.UpstreamFailures, 0)
	atomic.StoreInt64(&c.metrics.UpstreamTimeouts, 0)
	atomic.StoreInt64(&c.metrics.ActiveRequests, 0)

	c.metrics.totalResponseTime = 0
	c.metrics.totalCallTime = 0
	c.metrics.AverageResponseTime = 0
	c.metrics.AverageCallTime = 0
	c.metrics.MinResponseTime = time.Duration(^uint64(0) >> 1)
	c.metrics.MaxResponseTime = 0
	c.metrics.callsByProvider = make(map[string]int64)
}
