package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"coindash-api/internal/cache"
	"coindash-api/internal/models"
	"coindash-api/internal/providers"
	"coindash-api/internal/sanitize"
	"coindash-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ResourceHandler serves the cached single-resource endpoints. Quotes use the
// short TTL, slow-changing metadata the long one; every response carries an
// X-Cache header saying how it was satisfied.
type ResourceHandler struct {
	cache       *cache.Tiered
	marketData  *providers.MarketDataClient
	quoteTTL    time.Duration
	metadataTTL time.Duration
	log         *logger.Logger
}

// NewResourceHandler creates a resource handler
func NewResourceHandler(tiered *cache.Tiered, marketData *providers.MarketDataClient, quoteTTL, metadataTTL time.Duration) *ResourceHandler {
	return &ResourceHandler{
		cache:       tiered,
		marketData:  marketData,
		quoteTTL:    quoteTTL,
		metadataTTL: metadataTTL,
		log:         logger.GetLogger(),
	}
}

// CoinProfile handles GET /api/coins/:id
func (h *ResourceHandler) CoinProfile(c *gin.Context) {
	h.serve(c, "profile", h.metadataTTL, func(ctx context.Context, coinID string) (interface{}, error) {
		return h.marketData.CoinProfile(ctx, coinID)
	})
}

// CoinPrice handles GET /api/coins/:id/price
func (h *ResourceHandler) CoinPrice(c *gin.Context) {
	h.serve(c, "price", h.quoteTTL, func(ctx context.Context, coinID string) (interface{}, error) {
		return h.marketData.SimplePrice(ctx, coinID)
	})
}

// serve runs one read-through lookup for the coin id in the route
func (h *ResourceHandler) serve(c *gin.Context, kind string, ttl time.Duration, fetch func(ctx context.Context, coinID string) (interface{}, error)) {
	log := h.log.WithContext(c.Request.Context())

	coinID, err := sanitize.Identifier(c.Param("id"))
	if err != nil {
		models.HandleError(c, models.NewAppErrorWithCause(
			models.ErrorCodeInvalidCoinID, "Invalid coin id", err), log)
		return
	}

	key := kind + ":" + coinID
	lookup, err := h.cache.GetOrFetch(c.Request.Context(), key, ttl, func(ctx context.Context) ([]byte, error) {
		value, err := fetch(ctx, coinID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if err != nil {
		code := models.ErrorCodeUpstreamError
		if providers.IsTimeout(err) {
			code = models.ErrorCodeUpstreamTimeout
		}
		models.HandleError(c, models.NewAppErrorWithCause(code, "Upstream fetch failed", err), log)
		return
	}

	c.Header("X-Cache", string(lookup.Status))
	c.Data(http.StatusOK, "application/json", lookup.Value)
}
