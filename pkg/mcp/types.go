package mcp

import (
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/rule"
)

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status    string `json:"status" jsonschema:"description=healthy when a hub is configured, degraded otherwise"`
	Hub       string `json:"hub" jsonschema:"description=configured or unconfigured"`
	Screen    string `json:"screen" jsonschema:"description=Current screen of the panel"`
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// ListDevicesOutput is the output for the list_devices tool
type ListDevicesOutput struct {
	Devices []DeviceInfo `json:"devices" jsonschema:"description=Hub devices"`
	Count   int          `json:"count" jsonschema:"description=Total number of devices"`
}

// DeviceInfo represents a device in tool outputs
type DeviceInfo struct {
	ID    string       `json:"id" jsonschema:"description=Stable device identifier"`
	Name  string       `json:"name" jsonschema:"description=User-facing name"`
	Type  string       `json:"type" jsonschema:"description=socket, light, sensor, ..."`
	Power string       `json:"power" jsonschema:"description=ON, OFF or UNKNOWN"`
	State device.State `json:"state,omitempty" jsonschema:"description=Last reported state"`
	Keys  []string     `json:"keys,omitempty" jsonschema:"description=State keys usable in rule triggers"`
}

// ListGroupsOutput is the output for the list_groups tool
type ListGroupsOutput struct {
	Groups []GroupInfo `json:"groups"`
	Count  int         `json:"count"`
}

// GroupInfo represents a group in tool outputs
type GroupInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Power   string   `json:"power" jsonschema:"description=ON when any resolved member is ON"`
	Members []string `json:"members"`
}

// ListRulesOutput is the output for the list_rules tool
type ListRulesOutput struct {
	Rules []RuleInfo `json:"rules"`
	Count int        `json:"count"`
}

// RuleInfo represents a rule in tool outputs
type RuleInfo struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Active  bool             `json:"active"`
	Trigger rule.TriggerType `json:"trigger" jsonschema:"description=time or state"`
	Summary string           `json:"summary" jsonschema:"description=One-line description of trigger and action"`
}

// ToggleOutput is the output for the toggle tool
type ToggleOutput struct {
	ID     string `json:"id"`
	Action string `json:"action" jsonschema:"description=Action sent to the hub"`
}

// ActionOutput is the output of tools that only report success
type ActionOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GroupOutput is the output for the create_group tool
type GroupOutput struct {
	Group device.Group `json:"group"`
}

// RuleOutput is the output for the rule creation tools
type RuleOutput struct {
	Rule rule.Rule `json:"rule"`
}

// PairingOutput is the output for the pairing tools
type PairingOutput struct {
	Active           bool `json:"active"`
	RemainingSeconds int  `json:"remaining_seconds"`
}

// LogsOutput is the output for the get_logs tool
type LogsOutput struct {
	Lines []string `json:"lines"`
	Count int      `json:"count"`
}

// DeviceToInfo converts a device.Device to DeviceInfo
func DeviceToInfo(d device.Device) DeviceInfo {
	return DeviceInfo{
		ID:    d.ID,
		Name:  d.Name,
		Type:  d.Type,
		Power: d.Power(),
		State: d.State,
		Keys:  d.AvailableKeys,
	}
}
