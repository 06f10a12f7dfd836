package hub

import (
	"context"

	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/rule"
)

// NullGateway is used when no hub URL is configured. Reads return empty
// lists so every screen renders; writes fail with device.ErrNotConnected.
type NullGateway struct{}

// NewNullGateway creates a new NullGateway.
func NewNullGateway() *NullGateway {
	return &NullGateway{}
}

func (NullGateway) ListDevices(ctx context.Context) ([]device.Device, error) {
	return []device.Device{}, nil
}

func (NullGateway) SendAction(ctx context.Context, targetID, action string, value any) error {
	return device.ErrNotConnected
}

func (NullGateway) RenameDevice(ctx context.Context, id, newName string) error {
	return device.ErrNotConnected
}

func (NullGateway) RemoveDevice(ctx context.Context, id string) error {
	return device.ErrNotConnected
}

func (NullGateway) ListGroups(ctx context.Context) ([]device.Group, error) {
	return []device.Group{}, nil
}

func (NullGateway) CreateGroup(ctx context.Context, g device.Group) error {
	return device.ErrNotConnected
}

func (NullGateway) DeleteGroup(ctx context.Context, id string) error {
	return device.ErrNotConnected
}

func (NullGateway) AddGroupMember(ctx context.Context, groupID, deviceID string) error {
	return device.ErrNotConnected
}

func (NullGateway) RemoveGroupMember(ctx context.Context, groupID, deviceID string) error {
	return device.ErrNotConnected
}

func (NullGateway) ListRules(ctx context.Context) ([]rule.Rule, error) {
	return []rule.Rule{}, nil
}

func (NullGateway) CreateRule(ctx context.Context, r rule.Rule) error {
	return device.ErrNotConnected
}

func (NullGateway) UpdateRule(ctx context.Context, r rule.Rule) error {
	return device.ErrNotConnected
}

func (NullGateway) DeleteRule(ctx context.Context, id string) error {
	return device.ErrNotConnected
}

func (NullGateway) SetPairing(ctx context.Context, enable bool) error {
	return device.ErrNotConnected
}

func (NullGateway) Logs(ctx context.Context, lines int) ([]string, error) {
	return []string{}, nil
}

func (NullGateway) IsConfigured() bool {
	return false
}
