// Package cache holds the last-fetched snapshots of devices, groups and rules.
//
// Each snapshot is replaced wholesale by a refresh; nothing expires on its
// own. Refreshes of the same kind are fenced by a monotonic ticket so an
// older response that resolves late never overwrites a newer one.
package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/rule"
)

// Kind names one of the cached entity collections.
type Kind string

const (
	KindDevices Kind = "devices"
	KindGroups  Kind = "groups"
	KindRules   Kind = "rules"
)

// Source is the read side of the hub the cache pulls from.
type Source interface {
	ListDevices(ctx context.Context) ([]device.Device, error)
	ListGroups(ctx context.Context) ([]device.Group, error)
	ListRules(ctx context.Context) ([]rule.Rule, error)
}

type fence struct {
	issued  uint64
	applied uint64
	loaded  time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	src Source

	mu      sync.RWMutex
	devices []device.Device
	groups  []device.Group
	rules   []rule.Rule
	fences  map[Kind]*fence
}

// New creates an empty cache reading from src.
func New(src Source) *Cache {
	return &Cache{
		src: src,
		fences: map[Kind]*fence{
			KindDevices: {},
			KindGroups:  {},
			KindRules:   {},
		},
	}
}

// ticket reserves the next sequence number for kind.
func (c *Cache) ticket(kind Kind) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.fences[kind]
	f.issued++
	return f.issued
}

// accept reports whether a response holding ticket t may be applied, and
// records it as applied. Caller must hold c.mu.
func (c *Cache) accept(kind Kind, t uint64) bool {
	f := c.fences[kind]
	if t <= f.applied {
		return false
	}
	f.applied = t
	f.loaded = time.Now()
	return true
}

func stale(kind Kind, t uint64) error {
	log.Debug().Str("kind", string(kind)).Uint64("ticket", t).Msg("Discarding stale refresh")
	return fmt.Errorf("%w: %s refresh #%d", device.ErrStale, kind, t)
}

// IsStale reports whether err is a discarded out-of-order refresh.
func IsStale(err error) bool {
	return errors.Is(err, device.ErrStale)
}

// RefreshDevices replaces the device snapshot with the hub's current list.
func (c *Cache) RefreshDevices(ctx context.Context) ([]device.Device, error) {
	t := c.ticket(KindDevices)
	devices, err := c.src.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.accept(KindDevices, t) {
		return slices.Clone(c.devices), stale(KindDevices, t)
	}
	c.devices = slices.Clone(devices)
	return slices.Clone(c.devices), nil
}

// RefreshGroups replaces the group snapshot with the hub's current list.
func (c *Cache) RefreshGroups(ctx context.Context) ([]device.Group, error) {
	t := c.ticket(KindGroups)
	groups, err := c.src.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.accept(KindGroups, t) {
		return slices.Clone(c.groups), stale(KindGroups, t)
	}
	c.groups = slices.Clone(groups)
	return slices.Clone(c.groups), nil
}

// RefreshRules replaces the rule snapshot with the hub's current list.
func (c *Cache) RefreshRules(ctx context.Context) ([]rule.Rule, error) {
	t := c.ticket(KindRules)
	rules, err := c.src.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.accept(KindRules, t) {
		return slices.Clone(c.rules), stale(KindRules, t)
	}
	c.rules = slices.Clone(rules)
	return slices.Clone(c.rules), nil
}

// Refresh refreshes the given kinds in order and returns the first error.
// A stale discard is not an error here: a newer snapshot is already in place.
func (c *Cache) Refresh(ctx context.Context, kinds ...Kind) error {
	for _, k := range kinds {
		var err error
		switch k {
		case KindDevices:
			_, err = c.RefreshDevices(ctx)
		case KindGroups:
			_, err = c.RefreshGroups(ctx)
		case KindRules:
			_, err = c.RefreshRules(ctx)
		default:
			err = fmt.Errorf("unknown cache kind %q", k)
		}
		if err != nil && !IsStale(err) {
			return err
		}
	}
	return nil
}

// Device looks up a device in the latest snapshot.
func (c *Cache) Device(id string) (device.Device, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.devices {
		if d.ID == id {
			return d, true
		}
	}
	return device.Device{}, false
}

// Group looks up a group in the latest snapshot.
func (c *Cache) Group(id string) (device.Group, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, g := range c.groups {
		if g.ID == id {
			return g, true
		}
	}
	return device.Group{}, false
}

// Rule looks up a rule in the latest snapshot.
func (c *Cache) Rule(id string) (rule.Rule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.rules {
		if r.ID == id {
			return r, true
		}
	}
	return rule.Rule{}, false
}

// Snapshot is a consistent copy of all cached collections.
type Snapshot struct {
	Devices []device.Device `json:"devices"`
	Groups  []device.Group  `json:"groups"`
	Rules   []rule.Rule     `json:"rules"`
}

// Device looks up a device in the snapshot.
func (s Snapshot) Device(id string) (device.Device, bool) {
	i := slices.IndexFunc(s.Devices, func(d device.Device) bool { return d.ID == id })
	if i < 0 {
		return device.Device{}, false
	}
	return s.Devices[i], true
}

// Group looks up a group in the snapshot.
func (s Snapshot) Group(id string) (device.Group, bool) {
	i := slices.IndexFunc(s.Groups, func(g device.Group) bool { return g.ID == id })
	if i < 0 {
		return device.Group{}, false
	}
	return s.Groups[i], true
}

// Rule looks up a rule in the snapshot.
func (s Snapshot) Rule(id string) (rule.Rule, bool) {
	i := slices.IndexFunc(s.Rules, func(r rule.Rule) bool { return r.ID == id })
	if i < 0 {
		return rule.Rule{}, false
	}
	return s.Rules[i], true
}

// Name returns the display name of a device or group id, or the id itself.
func (s Snapshot) Name(id string) string {
	if d, ok := s.Device(id); ok && d.Name != "" {
		return d.Name
	}
	if g, ok := s.Group(id); ok && g.Name != "" {
		return g.Name
	}
	return id
}

// Snapshot returns a copy of the current collections.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Devices: slices.Clone(c.devices),
		Groups:  slices.Clone(c.groups),
		Rules:   slices.Clone(c.rules),
	}
}

// LoadedAt returns when kind was last replaced, or the zero time.
func (c *Cache) LoadedAt(kind Kind) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if f, ok := c.fences[kind]; ok {
		return f.loaded
	}
	return time.Time{}
}
