package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/hubpanel/pkg/api/types"
	"github.com/urmzd/hubpanel/pkg/panel"
)

// SystemHandler handles hub logs and the pairing window
type SystemHandler struct {
	panel *panel.Panel
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(p *panel.Panel) *SystemHandler {
	return &SystemHandler{panel: p}
}

// Logs handles GET /logs
// @Summary      Hub logs
// @Description  Returns the most recent hub log lines, newest first
// @Tags         system
// @Produce      json
// @Success      200  {object}  types.LogsResponse
// @Failure      502  {object}  types.ErrorResponse  "Hub error"
// @Router       /logs [get]
func (h *SystemHandler) Logs(c *gin.Context) {
	lines, err := h.panel.Logs(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.LogsResponse{Lines: lines, Count: len(lines)})
}

// StartPairing handles POST /pairing/start
// @Summary      Start pairing
// @Description  Opens the hub's discovery window; it closes by itself after the configured window
// @Tags         system
// @Produce      json
// @Success      200  {object}  types.PairingResponse
// @Failure      502  {object}  types.ErrorResponse  "Hub error"
// @Failure      503  {object}  types.ErrorResponse  "No hub configured"
// @Router       /pairing/start [post]
func (h *SystemHandler) StartPairing(c *gin.Context) {
	if err := h.panel.StartPairing(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	pairing := h.panel.Page().Pairing
	c.JSON(http.StatusOK, types.PairingResponse{
		Status:           "pairing_enabled",
		RemainingSeconds: pairing.Remaining,
	})
}

// StopPairing handles POST /pairing/stop
// @Summary      Stop pairing
// @Description  Closes the discovery window early and refreshes the device list
// @Tags         system
// @Produce      json
// @Success      200  {object}  types.PairingResponse
// @Failure      502  {object}  types.ErrorResponse  "Hub error"
// @Router       /pairing/stop [post]
func (h *SystemHandler) StopPairing(c *gin.Context) {
	if err := h.panel.StopPairing(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.PairingResponse{Status: "pairing_disabled"})
}
