package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/hubpanel/pkg/api/types"
	"github.com/urmzd/hubpanel/pkg/panel"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	panel *panel.Panel
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(p *panel.Panel) *HealthHandler {
	return &HealthHandler{panel: p}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health of the panel and whether a hub is configured
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Failure      503  {object}  types.HealthResponse  "No hub configured"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	hub := "unconfigured"
	status := "degraded"
	httpStatus := http.StatusServiceUnavailable

	if h.panel.Configured() {
		hub = "configured"
		status = "healthy"
		httpStatus = http.StatusOK
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:    status,
		Hub:       hub,
		Screen:    h.panel.State().String(),
		Timestamp: time.Now(),
	})
}
