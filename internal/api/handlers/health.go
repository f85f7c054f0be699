// Package handlers provides HTTP handlers for the API.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unifiedui/typed-docdb/internal/api/dto"
)

const pingTimeout = 3 * time.Second

// Pinger is a dependency the health checks probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	cache Pinger
	docDB Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(cache Pinger, docDB Pinger) *HealthHandler {
	return &HealthHandler{
		cache: cache,
		docDB: docDB,
	}
}

func ping(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}

// Health handles the /health endpoint.
// @Summary Health check
// @Description Returns the overall health status and component statuses
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service healthy"
// @Failure 503 {object} dto.HealthResponse "Service unhealthy"
// @Router /api/v1/docdb/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	components := map[string]string{"cache": "healthy", "docdb": "healthy"}
	healthy := true

	if err := ping(c.Request.Context(), h.cache); err != nil {
		components["cache"] = "unhealthy"
		healthy = false
	}
	if err := ping(c.Request.Context(), h.docDB); err != nil {
		components["docdb"] = "unhealthy"
		healthy = false
	}

	status, statusCode := "healthy", http.StatusOK
	if !healthy {
		status, statusCode = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(statusCode, dto.HealthResponse{
		Status:     status,
		Components: components,
	})
}

// Ready handles the /ready endpoint.
// @Summary Readiness check
// @Description Returns 200 if the service is ready to accept traffic
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service ready"
// @Failure 503 {object} map[string]string "Service not ready"
// @Router /api/v1/docdb/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := ping(c.Request.Context(), h.docDB); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "docdb unavailable",
		})
		return
	}

	// The cache is optional for serving traffic: reads fall back to the database.
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// Live handles the /live endpoint.
// @Summary Liveness check
// @Description Returns 200 if the service is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service alive"
// @Router /api/v1/docdb/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
