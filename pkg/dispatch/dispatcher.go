// Package dispatch issues device, group and rule mutations through the hub
// gateway. Every successful mutation is followed by a refresh of the current
// view; every failure becomes a user-visible notice and is returned.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/device/schema"
	"github.com/urmzd/hubpanel/pkg/notice"
	"github.com/urmzd/hubpanel/pkg/rule"
)

// DefaultRefreshDelay is the pause between a toggle and the refresh that
// shows its effect; the hub applies device state asynchronously.
const DefaultRefreshDelay = 500 * time.Millisecond

// Gateway is the write side of the hub used by the dispatcher.
type Gateway interface {
	SendAction(ctx context.Context, targetID, action string, value any) error
	RenameDevice(ctx context.Context, id, newName string) error
	RemoveDevice(ctx context.Context, id string) error
	CreateGroup(ctx context.Context, g device.Group) error
	DeleteGroup(ctx context.Context, id string) error
	AddGroupMember(ctx context.Context, groupID, deviceID string) error
	RemoveGroupMember(ctx context.Context, groupID, deviceID string) error
	DeleteRule(ctx context.Context, id string) error
}

// Notifier receives failure notices.
type Notifier interface {
	Failure(op string, err error) notice.Notice
}

// Event describes a completed mutation.
type Event struct {
	Op      string
	Kind    cache.Kind
	ID      string
	Deleted bool
}

// RerenderFunc refreshes and re-renders the current view after a mutation.
type RerenderFunc func(ctx context.Context, ev Event)

// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	gw           Gateway
	notices      Notifier
	validator    *schema.Validator
	rerender     RerenderFunc
	refreshDelay time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRerender sets the hook run after every successful mutation.
func WithRerender(fn RerenderFunc) Option {
	return func(d *Dispatcher) { d.rerender = fn }
}

// WithRefreshDelay overrides DefaultRefreshDelay.
func WithRefreshDelay(delay time.Duration) Option {
	return func(d *Dispatcher) { d.refreshDelay = delay }
}

// WithValidator sets the schema validator used for group payloads.
func WithValidator(v *schema.Validator) Option {
	return func(d *Dispatcher) { d.validator = v }
}

// New creates a Dispatcher.
func New(gw Gateway, notices Notifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		gw:           gw,
		notices:      notices,
		validator:    schema.NewValidator(),
		refreshDelay: DefaultRefreshDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Inverse returns the action that flips the given power state:
// ON becomes turn_off, anything else turn_on.
func Inverse(power string) string {
	if power == device.PowerOn {
		return device.ActionTurnOff
	}
	return device.ActionTurnOn
}

// Toggle sends the inverse of currentState to a device or group id and
// returns the action sent.
func (d *Dispatcher) Toggle(ctx context.Context, targetID, currentState string) (string, error) {
	action := Inverse(currentState)
	if err := d.gw.SendAction(ctx, targetID, action, nil); err != nil {
		return "", d.fail("Toggle", err)
	}
	log.Info().Str("target", targetID).Str("action", action).Msg("Toggled")
	d.settle(ctx)
	d.done(ctx, Event{Op: "toggle", Kind: cache.KindDevices, ID: targetID})
	return action, nil
}

// ToggleGroup sends action to a group; the hub fans it out to the members.
func (d *Dispatcher) ToggleGroup(ctx context.Context, groupID, action string) error {
	if action != device.ActionTurnOn && action != device.ActionTurnOff {
		return d.fail("Toggle group", fmt.Errorf("%w: unsupported group action %q", device.ErrValidation, action))
	}
	if err := d.gw.SendAction(ctx, groupID, action, nil); err != nil {
		return d.fail("Toggle group", err)
	}
	log.Info().Str("group", groupID).Str("action", action).Msg("Toggled group")
	d.settle(ctx)
	d.done(ctx, Event{Op: "toggle_group", Kind: cache.KindGroups, ID: groupID})
	return nil
}

// SetBrightness sends set_brightness to a light or group.
func (d *Dispatcher) SetBrightness(ctx context.Context, targetID string, level int) error {
	if level < device.BrightnessMin || level > device.BrightnessMax {
		return d.fail("Set brightness", fmt.Errorf("%w: brightness must be between %d and %d",
			device.ErrValidation, device.BrightnessMin, device.BrightnessMax))
	}
	if err := d.gw.SendAction(ctx, targetID, device.ActionSetBrightness, level); err != nil {
		return d.fail("Set brightness", err)
	}
	d.settle(ctx)
	d.done(ctx, Event{Op: "set_brightness", Kind: cache.KindDevices, ID: targetID})
	return nil
}

// Rename changes a device's name.
func (d *Dispatcher) Rename(ctx context.Context, deviceID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return d.fail("Rename", fmt.Errorf("%w: name is required", device.ErrValidation))
	}
	if err := d.gw.RenameDevice(ctx, deviceID, newName); err != nil {
		return d.fail("Rename", err)
	}
	d.done(ctx, Event{Op: "rename", Kind: cache.KindDevices, ID: deviceID})
	return nil
}

// Delete removes a device from the hub.
func (d *Dispatcher) Delete(ctx context.Context, deviceID string) error {
	if err := d.gw.RemoveDevice(ctx, deviceID); err != nil {
		return d.fail("Delete device", err)
	}
	d.done(ctx, Event{Op: "delete", Kind: cache.KindDevices, ID: deviceID, Deleted: true})
	return nil
}

// CreateGroup creates a group with a generated id and returns it.
func (d *Dispatcher) CreateGroup(ctx context.Context, name string, memberIDs []string) (device.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return device.Group{}, d.fail("Create group", fmt.Errorf("%w: name is required", device.ErrValidation))
	}
	g := device.Group{ID: rule.NewID(name), Name: name, Members: uniq(memberIDs)}
	if err := d.validator.ValidateGroup(g); err != nil {
		return device.Group{}, d.fail("Create group", err)
	}
	if err := d.gw.CreateGroup(ctx, g); err != nil {
		return device.Group{}, d.fail("Create group", err)
	}
	d.done(ctx, Event{Op: "create_group", Kind: cache.KindGroups, ID: g.ID})
	return g, nil
}

// DeleteGroup removes a group.
func (d *Dispatcher) DeleteGroup(ctx context.Context, groupID string) error {
	if err := d.gw.DeleteGroup(ctx, groupID); err != nil {
		return d.fail("Delete group", err)
	}
	d.done(ctx, Event{Op: "delete_group", Kind: cache.KindGroups, ID: groupID, Deleted: true})
	return nil
}

// AddMember adds a device to a group.
func (d *Dispatcher) AddMember(ctx context.Context, groupID, deviceID string) error {
	if deviceID == "" {
		return d.fail("Add member", fmt.Errorf("%w: device is required", device.ErrValidation))
	}
	if err := d.gw.AddGroupMember(ctx, groupID, deviceID); err != nil {
		return d.fail("Add member", err)
	}
	d.done(ctx, Event{Op: "add_member", Kind: cache.KindGroups, ID: groupID})
	return nil
}

// RemoveMember removes a device from a group.
func (d *Dispatcher) RemoveMember(ctx context.Context, groupID, deviceID string) error {
	if err := d.gw.RemoveGroupMember(ctx, groupID, deviceID); err != nil {
		return d.fail("Remove member", err)
	}
	d.done(ctx, Event{Op: "remove_member", Kind: cache.KindGroups, ID: groupID})
	return nil
}

// DeleteRule removes a rule.
func (d *Dispatcher) DeleteRule(ctx context.Context, ruleID string) error {
	if err := d.gw.DeleteRule(ctx, ruleID); err != nil {
		return d.fail("Delete rule", err)
	}
	d.done(ctx, Event{Op: "delete_rule", Kind: cache.KindRules, ID: ruleID, Deleted: true})
	return nil
}

func (d *Dispatcher) fail(op string, err error) error {
	if d.notices != nil {
		d.notices.Failure(op, err)
	}
	return err
}

// settle waits out the refresh delay. A cancelled context skips the wait
// but the refresh still runs.
func (d *Dispatcher) settle(ctx context.Context) {
	if d.refreshDelay <= 0 {
		return
	}
	t := time.NewTimer(d.refreshDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (d *Dispatcher) done(ctx context.Context, ev Event) {
	if d.rerender != nil {
		d.rerender(ctx, ev)
	}
}

func uniq(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
