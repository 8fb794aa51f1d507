package handlers

import (
	"context"
	"net/http"
	"time"

	"coindash-api/internal/cache"
	"coindash-api/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves the operational endpoints
type HealthHandler struct {
	cache     *cache.Tiered
	collector *metrics.Collector
}

// NewHealthHandler creates a health handler
func NewHealthHandler(tiered *cache.Tiered, collector *metrics.Collector) *HealthHandler {
	return &HealthHandler{cache: tiered, collector: collector}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The durable cache tier is the only hard
// dependency worth reporting; upstream providers are allowed to be down.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.cache.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"reason": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Metrics handles GET /metrics
func (h *HealthHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.collector.GetMetrics())
}

// Status handles GET /status with a condensed operational summary
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds":  int64(h.collector.GetUptime().Seconds()),
		"cache_hit_ratio": h.collector.GetCacheHitRatio(),
		"success_rate":    h.collector.GetSuccessRate(),
		"upstream_calls":  h.collector.GetCallsByProvider(),
	})
}
