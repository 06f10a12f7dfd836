package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/hubpanel/pkg/api/types"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/panel"
)

// writeError maps panel and hub errors to a status code and ErrorResponse.
func writeError(c *gin.Context, err error) {
	var rej *device.RejectionError
	switch {
	case errors.Is(err, device.ErrValidation):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, device.ErrNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error:   "not_found",
			Message: device.UserMessage(err),
		})
	case errors.Is(err, panel.ErrNoForm):
		c.JSON(http.StatusConflict, types.ErrorResponse{
			Error:   "no_form",
			Message: err.Error(),
		})
	case errors.As(err, &rej):
		status := http.StatusBadGateway
		if rej.Status == http.StatusConflict {
			status = http.StatusConflict
		}
		c.JSON(status, types.ErrorResponse{
			Error:   "hub_rejected",
			Message: rej.Message(),
		})
	case errors.Is(err, device.ErrNotConnected):
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{
			Error:   "hub_not_configured",
			Message: device.UserMessage(err),
		})
	case errors.Is(err, device.ErrNetwork):
		c.JSON(http.StatusBadGateway, types.ErrorResponse{
			Error:   "hub_unreachable",
			Message: device.UserMessage(err),
		})
	default:
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{
		Error:   "invalid_request",
		Message: msg,
	})
}
