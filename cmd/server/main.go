package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coindash-api/internal/cache"
	"coindash-api/internal/config"
	"coindash-api/internal/gateway"
	"coindash-api/internal/handlers"
	"coindash-api/internal/policy"
	"coindash-api/internal/providers"
	"coindash-api/pkg/logger"
	"coindash-api/pkg/metrics"
	"coindash-api/pkg/ratelimiter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Local development convenience; a missing .env is not an error
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	if err := logger.Initialize(&logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Logging.Environment,
		OutputPaths: cfg.Logging.OutputPaths,
	}); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	collector := metrics.NewCollector()

	// The durable tier is optional at startup: when MongoDB is unreachable
	// the service runs with the ephemeral tier only.
	var durable cache.Durable
	mongoStore, err := cache.NewMongoStore(context.Background(), &cfg.Mongo)
	if err != nil {
		log.Warn("durable cache tier unavailable, continuing with ephemeral tier only", zap.Error(err))
	} else {
		durable = mongoStore
		log.Info("durable cache tier connected",
			zap.String("database", cfg.Mongo.Database),
			zap.String("collection", cfg.Mongo.Collection))
	}

	tiered := cache.NewTiered(cache.NewMemory(), durable, collector)

	marketData := providers.NewMarketDataClient(&cfg.MarketData)
	gw := gateway.New(cfg, gateway.Clients{
		MarketData: marketData,
		Onchain:    providers.NewOnchainClient(&cfg.Onchain),
		DeFi:       providers.NewDeFiClient(&cfg.DeFi),
		Sentiment:  providers.NewSentimentClient(&cfg.Sentiment),
	}, policy.NewDefaultGate(), collector)

	limiter := ratelimiter.New(cfg.RateLimit.Quota, cfg.RateLimit.Window)

	router := handlers.NewRouter(handlers.Deps{
		Config:     cfg,
		Gateway:    gw,
		Cache:      tiered,
		MarketData: marketData,
		Limiter:    limiter,
		Collector:  collector,
	})

	stopCleanup := make(chan struct{})
	go cleanupLoop(cfg, limiter, tiered, stopCleanup)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutdown signal received")
	close(stopCleanup)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if mongoStore != nil {
		if err := mongoStore.Close(shutdownCtx); err != nil {
			log.Error("failed to close durable cache", zap.Error(err))
		}
	}

	log.Info("server stopped")
}

// cleanupLoop periodically evicts expired rate-limiter windows and
// long-stale cache entries
func cleanupLoop(cfg *config.Config, limiter *ratelimiter.RateLimiter, tiered *cache.Tiered, stop <-chan struct{}) {
	// Stale entries survive one metadata TTL past expiry for stale-on-error
	maxStale := cfg.Cache.MetadataTTL

	limiterTicker := time.NewTicker(cfg.RateLimit.CleanupInterval)
	cacheTicker := time.NewTicker(cfg.Cache.CleanupInterval)
	defer limiterTicker.Stop()
	defer cacheTicker.Stop()

	for {
		select {
		case <-limiterTicker.C:
			limiter.Cleanup()
		case <-cacheTicker.C:
			tiered.Cleanup(maxStale)
		case <-stop:
			return
		}
	}
}
