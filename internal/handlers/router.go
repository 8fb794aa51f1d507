package handlers

import (
	"coindash-api/internal/cache"
	"coindash-api/internal/config"
	"coindash-api/internal/gateway"
	"coindash-api/internal/middleware"
	"coindash-api/internal/providers"
	"coindash-api/pkg/logger"
	"coindash-api/pkg/metrics"
	"coindash-api/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
)

// Deps bundles the dependencies the router wires into handlers
type Deps struct {
	Config     *config.Config
	Gateway    *gateway.Gateway
	Cache      *cache.Tiered
	MarketData *providers.MarketDataClient
	Limiter    *ratelimiter.RateLimiter
	Collector  *metrics.Collector
}

// NewRouter builds the gin engine with the full middleware stack and routes.
// Operational endpoints sit outside the rate-limited /api group so probes
// never consume client quota.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Config.Logging.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		logger.RecoveryMiddleware(),
		logger.LoggingMiddleware(),
		middleware.CORS(),
		middleware.Metrics(deps.Collector),
	)

	health := NewHealthHandler(deps.Cache, deps.Collector)
	engine.GET("/healthz", health.Liveness)
	engine.GET("/readyz", health.Readiness)
	engine.GET("/metrics", health.Metrics)
	engine.GET("/status", health.Status)

	batch := NewBatchHandler(deps.Gateway)
	resource := NewResourceHandler(deps.Cache, deps.MarketData,
		deps.Config.Cache.QuoteTTL, deps.Config.Cache.MetadataTTL)

	api := engine.Group("/api")
	api.Use(deps.Limiter.Middleware())
	{
		api.POST("/batch", batch.Batch)
		api.GET("/coins/:id", resource.CoinProfile)
		api.GET("/coins/:id/price", resource.CoinPrice)
	}

	return engine
}
