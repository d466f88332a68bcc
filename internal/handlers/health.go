package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qcbd/app-beneficiary/internal/services"
)

// HealthHandlers serves the health check
type HealthHandlers struct {
	health *services.HealthService
}

// NewHealthHandlers creates a new instance of health handlers
func NewHealthHandlers(health *services.HealthService) *HealthHandlers {
	return &HealthHandlers{health: health}
}

// HealthCheck godoc
// @Summary Health check
// @Description Reports the reachability of MongoDB and Redis.
// @Tags health
// @Produce json
// @Success 200 {object} services.HealthStatus
// @Failure 503 {object} services.HealthStatus
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c *gin.Context) {
	status := h.health.Check(c.Request.Context())
	if status.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}
