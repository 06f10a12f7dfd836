package hub

import (
	"context"

	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/rule"
)

// Gateway is the panel's only route to the hub. Every network call made by
// the panel goes through one of these methods.
type Gateway interface {
	// ListDevices returns all devices with their embedded state
	ListDevices(ctx context.Context) ([]device.Device, error)

	// SendAction sends an action (turn_on, turn_off, ...) to a device or group id
	SendAction(ctx context.Context, targetID, action string, value any) error

	// RenameDevice changes a device's name
	RenameDevice(ctx context.Context, id, newName string) error

	// RemoveDevice removes a device from the hub
	RemoveDevice(ctx context.Context, id string) error

	// ListGroups returns all groups
	ListGroups(ctx context.Context) ([]device.Group, error)

	// CreateGroup creates a group
	CreateGroup(ctx context.Context, g device.Group) error

	// DeleteGroup removes a group
	DeleteGroup(ctx context.Context, id string) error

	// AddGroupMember adds a device to a group
	AddGroupMember(ctx context.Context, groupID, deviceID string) error

	// RemoveGroupMember removes a device from a group
	RemoveGroupMember(ctx context.Context, groupID, deviceID string) error

	// ListRules returns all automation rules
	ListRules(ctx context.Context) ([]rule.Rule, error)

	// CreateRule stores a new rule
	CreateRule(ctx context.Context, r rule.Rule) error

	// UpdateRule replaces an existing rule
	UpdateRule(ctx context.Context, r rule.Rule) error

	// DeleteRule removes a rule
	DeleteRule(ctx context.Context, id string) error

	// SetPairing opens or closes the hub's discovery window
	SetPairing(ctx context.Context, enable bool) error

	// Logs returns the most recent hub log lines, oldest first
	Logs(ctx context.Context, lines int) ([]string, error)

	// IsConfigured returns true if the gateway points at a real hub
	IsConfigured() bool
}
