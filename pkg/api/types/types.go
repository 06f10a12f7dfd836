package types

import (
	"time"

	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/rule"
)

// --- Request DTOs ---

// RenameDeviceRequest is the request body for PUT /devices/:id/name
type RenameDeviceRequest struct {
	Name string `json:"name" form:"name" binding:"required"`
}

// BrightnessRequest is the request body for POST /devices/:id/brightness
type BrightnessRequest struct {
	Level *int `json:"level" form:"level" binding:"required"`
}

// CreateGroupRequest is the request body for POST /groups
type CreateGroupRequest struct {
	Name    string   `json:"name" form:"name" binding:"required"`
	Members []string `json:"members" form:"members"`
}

// AddMemberRequest is the form body for adding a group member from the UI
type AddMemberRequest struct {
	DeviceID string `form:"device_id" binding:"required"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Hub       string    `json:"hub"`
	Screen    string    `json:"screen"`
	Timestamp time.Time `json:"timestamp"`
}

// ListDevicesResponse is returned from GET /devices
type ListDevicesResponse struct {
	Devices []device.Device `json:"devices"`
	Count   int             `json:"count"`
}

// ListGroupsResponse is returned from GET /groups
type ListGroupsResponse struct {
	Groups []device.Group `json:"groups"`
	Count  int            `json:"count"`
}

// GroupResponse is returned from POST /groups
type GroupResponse struct {
	Group device.Group `json:"group"`
}

// ListRulesResponse is returned from GET /rules
type ListRulesResponse struct {
	Rules []rule.Rule `json:"rules"`
	Count int         `json:"count"`
}

// RuleResponse is returned when a rule is created or updated
type RuleResponse struct {
	Rule rule.Rule `json:"rule"`
}

// ToggleResponse is returned from the toggle endpoints
type ToggleResponse struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// LogsResponse is returned from GET /logs
type LogsResponse struct {
	Lines []string `json:"lines"`
	Count int      `json:"count"`
}

// PairingResponse is returned from the pairing endpoints
type PairingResponse struct {
	Status           string `json:"status"`
	RemainingSeconds int    `json:"remaining_seconds"`
}
