package panel

import (
	"context"
	"fmt"

	"github.com/urmzd/hubpanel/pkg/device"
)

// The dispatcher posts a notice for every failure; the panel only has to
// push the new page to subscribers.
func (p *Panel) notify(err error) error {
	if err != nil {
		p.broadcast()
	}
	return err
}

func uncontrollable(id string) error {
	return fmt.Errorf("%w: %q has no power control", device.ErrValidation, id)
}

// RenameDevice changes a device's name on the hub.
func (p *Panel) RenameDevice(ctx context.Context, id, name string) error {
	return p.notify(p.dispatch.Rename(ctx, id, name))
}

// RemoveDevice deletes a device from the hub.
func (p *Panel) RemoveDevice(ctx context.Context, id string) error {
	return p.notify(p.dispatch.Delete(ctx, id))
}

// SetBrightness sends set_brightness to a light or group.
func (p *Panel) SetBrightness(ctx context.Context, id string, level int) error {
	if d, ok := p.cache.Device(id); ok && !d.Controllable() {
		return p.dispatchFailure("Set brightness", uncontrollable(id))
	}
	return p.notify(p.dispatch.SetBrightness(ctx, id, level))
}

// CreateGroup creates a group from a name and initial members.
func (p *Panel) CreateGroup(ctx context.Context, name string, members []string) (device.Group, error) {
	g, err := p.dispatch.CreateGroup(ctx, name, members)
	return g, p.notify(err)
}

// DeleteGroup removes a group.
func (p *Panel) DeleteGroup(ctx context.Context, id string) error {
	return p.notify(p.dispatch.DeleteGroup(ctx, id))
}

// AddMember adds a device to a group.
func (p *Panel) AddMember(ctx context.Context, groupID, deviceID string) error {
	return p.notify(p.dispatch.AddMember(ctx, groupID, deviceID))
}

// RemoveMember removes a device from a group.
func (p *Panel) RemoveMember(ctx context.Context, groupID, deviceID string) error {
	return p.notify(p.dispatch.RemoveMember(ctx, groupID, deviceID))
}

// DeleteRule removes a rule.
func (p *Panel) DeleteRule(ctx context.Context, id string) error {
	return p.notify(p.dispatch.DeleteRule(ctx, id))
}
