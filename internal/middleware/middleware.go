// Package middleware holds the gin middleware applied to every route:
// request metrics and CORS headers for browser dashboards.
package middleware

import (
	"net/http"
	"time"

	"coindash-api/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency into the collector
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		collector.RecordRequest()

		c.Next()

		status := c.Writer.Status()
		collector.RecordRequestComplete(time.Since(start), status < http.StatusInternalServerError)
		if status == http.StatusTooManyRequests {
			collector.RecordRateLimited()
		}
	}
}

// CORS allows browser dashboards on other origins to call the API
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Correlation-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
