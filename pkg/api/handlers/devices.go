package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/hubpanel/pkg/api/types"
	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/panel"
)

// DevicesHandler handles device endpoints
type DevicesHandler struct {
	panel *panel.Panel
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(p *panel.Panel) *DevicesHandler {
	return &DevicesHandler{panel: p}
}

// ListDevices handles GET /devices
// @Summary      List all devices
// @Description  Refetches the device list from the hub, with each device's embedded state
// @Tags         devices
// @Produce      json
// @Success      200  {object}  types.ListDevicesResponse
// @Failure      502  {object}  types.ErrorResponse  "Hub error"
// @Failure      503  {object}  types.ErrorResponse  "No hub configured"
// @Router       /devices [get]
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	// A stale refresh still returns the newer snapshot.
	devices, err := h.panel.Cache().RefreshDevices(c.Request.Context())
	if err != nil && !cache.IsStale(err) {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ListDevicesResponse{
		Devices: devices,
		Count:   len(devices),
	})
}

// Toggle handles POST /devices/:id/toggle
// @Summary      Toggle a device
// @Description  Sends turn_off when the device is ON and turn_on otherwise
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  types.ToggleResponse
// @Failure      404  {object}  types.ErrorResponse  "Device not found"
// @Failure      502  {object}  types.ErrorResponse  "Hub error"
// @Router       /devices/{id}/toggle [post]
func (h *DevicesHandler) Toggle(c *gin.Context) {
	id := c.Param("id")
	action, err := h.panel.Toggle(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ToggleResponse{ID: id, Action: action})
}

// SetBrightness handles POST /devices/:id/brightness
// @Summary      Set brightness
// @Description  Sends set_brightness (0-254) to a light or group
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id       path  string                   true  "Device or group id"
// @Param        request  body  types.BrightnessRequest  true  "Brightness level"
// @Success      204      "Brightness set"
// @Failure      400      {object}  types.ErrorResponse  "Invalid level"
// @Failure      502      {object}  types.ErrorResponse  "Hub error"
// @Router       /devices/{id}/brightness [post]
func (h *DevicesHandler) SetBrightness(c *gin.Context) {
	var req types.BrightnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "level is required")
		return
	}
	if err := h.panel.SetBrightness(c.Request.Context(), c.Param("id"), *req.Level); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RenameDevice handles PUT /devices/:id/name
// @Summary      Rename a device
// @Description  Changes the name of a device on the hub
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Device id"
// @Param        request  body  types.RenameDeviceRequest  true  "New name"
// @Success      204      "Device renamed"
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Failure      502      {object}  types.ErrorResponse  "Hub error"
// @Router       /devices/{id}/name [put]
func (h *DevicesHandler) RenameDevice(c *gin.Context) {
	var req types.RenameDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	if err := h.panel.RenameDevice(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveDevice handles DELETE /devices/:id
// @Summary      Remove a device
// @Description  Removes a device from the hub
// @Tags         devices
// @Produce      json
// @Param        id   path  string  true  "Device id"
// @Success      204  "Device removed"
// @Failure      404  {object}  types.ErrorResponse  "Device not found"
// @Failure      502  {object}  types.ErrorResponse  "Hub error"
// @Router       /devices/{id} [delete]
func (h *DevicesHandler) RemoveDevice(c *gin.Context) {
	if err := h.panel.RemoveDevice(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
