package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	collector := NewCollector()

	t.Run("InitialState", func(t *testing.T) {
		m := collector.GetMetrics()
		assert.Equal(t, int64(0), m.TotalRequests)
		assert.Equal(t, int64(0), m.SuccessfulRequests)
		assert.Equal(t, int64(0), m.FailedRequests)
		assert.Equal(t, int64(0), m.CacheHits)
		assert.Equal(t, int64(0), m.UpstreamCalls)
	})

	t.Run("RecordRequest", func(t *testing.T) {
		collector.RecordRequest()
		m := collector.GetMetrics()
		assert.Equal(t, int64(1), m.TotalRequests)
		assert.Equal(t, int64(1), m.ActiveRequests)
	})

	t.Run("RecordRequestComplete", func(t *testing.T) {
		duration := 100 * time.Millisecond
		collector.RecordRequestComplete(duration, true)

		m := collector.GetMetrics()
		assert.Equal(t, int64(1), m.SuccessfulRequests)
		assert.Equal(t, int64(0), m.ActiveRequests)
		assert.Equal(t, duration, m.AverageResponseTime)
		assert.Equal(t, duration, m.MinResponseTime)
		assert.Equal(t, duration, m.MaxResponseTime)
	})

	t.Run("CacheMetrics", func(t *testing.T) {
		collector.RecordCacheHit()
		collector.RecordCacheHit()
		collector.RecordCacheMiss()
		collector.RecordCacheStale()

		m := collector.GetMetrics()
		assert.Equal(t, int64(2), m.CacheHits)
		assert.Equal(t, int64(1), m.CacheMisses)
		assert.Equal(t, int64(1), m.CacheStale)

		assert.InDelta(t, 66.67, collector.GetCacheHitRatio(), 0.1)
	})

	t.Run("UpstreamMetrics", func(t *testing.T) {
		duration := 50 * time.Millisecond
		collector.RecordUpstreamCall("marketdata", duration, true)
		collector.RecordUpstreamCall("defi", duration*2, false)
		collector.RecordUpstreamTimeout()

		m := collector.GetMetrics()
		assert.Equal(t, int64(2), m.UpstreamCalls)
		assert.Equal(t, int64(1), m.UpstreamFailures)
		assert.Equal(t, int64(1), m.UpstreamTimeouts)
		assert.Equal(t, duration*3/2, m.AverageCallTime)

		byProvider := collector.GetCallsByProvider()
		assert.Equal(t, int64(1), byProvider["marketdata"])
		assert.Equal(t, int64(1), byProvider["defi"])
	})

	t.Run("SuccessRate", func(t *testing.T) {
		collector.Reset()

		collector.RecordRequest()
		collector.RecordRequestComplete(10*time.Millisecond, true)

		collector.RecordRequest()
		collector.RecordRequestComplete(20*time.Millisecond, true)

		collector.RecordRequest()
		collector.RecordRequestComplete(30*time.Millisecond, false)

		assert.InDelta(t, 66.67, collector.GetSuccessRate(), 0.1)
	})

	t.Run("Reset", func(t *testing.T) {
		collector.Reset()

		m := collector.GetMetrics()
		assert.Equal(t, int64(0), m.TotalRequests)
		assert.Equal(t, int64(0), m.CacheHits)
		assert.Equal(t, int64(0), m.UpstreamCalls)
		assert.Empty(t, collector.GetCallsByProvider())
	})
}
