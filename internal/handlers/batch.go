// Package handlers wires HTTP routes to the gateway, the tiered cache and
// the operational endpoints.
package handlers

import (
	"net/http"

	"coindash-api/internal/gateway"
	"coindash-api/internal/models"
	"coindash-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// BatchHandler serves the batch aggregation endpoint
type BatchHandler struct {
	gateway *gateway.Gateway
	log     *logger.Logger
}

// NewBatchHandler creates a batch handler
func NewBatchHandler(g *gateway.Gateway) *BatchHandler {
	return &BatchHandler{gateway: g, log: logger.GetLogger()}
}

// Batch handles POST /api/batch. The response is 200 as soon as any
// endpoint produced data; only an empty request or a batch where every
// endpoint failed gets an error status.
func (h *BatchHandler) Batch(c *gin.Context) {
	log := h.log.WithContext(c.Request.Context())

	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		models.HandleError(c, models.NewAppErrorWithCause(
			models.ErrorCodeMalformedJSON, "Request body must be valid JSON", err), log)
		return
	}

	if len(req.Endpoints) == 0 {
		models.HandleError(c, models.NewAppError(
			models.ErrorCodeEmptyEndpoints, "At least one endpoint must be requested"), log)
		return
	}

	result := h.gateway.Execute(c.Request.Context(), &req)

	if !result.HasData() && result.FirstError != "" {
		models.HandleError(c, models.NewAppErrorWithDetails(
			models.ErrorCodeAllEndpointsFailed, "All requested endpoints failed", result.FirstError), log)
		return
	}

	c.JSON(http.StatusOK, result.Body())
}
