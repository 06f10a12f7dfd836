package view

import (
	"fmt"
	"slices"
	"sort"

	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/rule"
)

// Pairing describes the hub's discovery window as shown on the devices screen.
type Pairing struct {
	Active    bool `json:"active"`
	Remaining int  `json:"remaining_seconds"`
}

// Extras carries screen inputs that do not live in the entity cache.
type Extras struct {
	Form    *rule.View
	Logs    []string // newest first
	MapURL  string
	Pairing Pairing
	Notices []string
}

// Page is the render model of one screen.
type Page struct {
	Screen    Screen   `json:"screen"`
	Title     string   `json:"title"`
	Epoch     uint64   `json:"epoch"`
	Banner    string   `json:"banner,omitempty"`
	Back      *Target  `json:"back,omitempty"`
	Notices   []string `json:"notices,omitempty"`
	Pairing   Pairing  `json:"pairing"`
	Missing   bool     `json:"missing,omitempty"`
	MissingID string   `json:"missing_id,omitempty"`

	Devices []DeviceCard  `json:"devices,omitempty"`
	Groups  []GroupCard   `json:"groups,omitempty"`
	Device  *DeviceView   `json:"device,omitempty"`
	Group   *GroupView    `json:"group,omitempty"`
	Rules   []RuleSummary `json:"rules,omitempty"`
	Form    *rule.View    `json:"form,omitempty"`
	MapURL  string        `json:"map_url,omitempty"`
	Logs    []string      `json:"logs,omitempty"`
	Nav     []NavEntry    `json:"nav"`
	State   State         `json:"state"`
}

// NavEntry is a top-level navigation link.
type NavEntry struct {
	Screen Screen `json:"screen"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// Reading is a formatted telemetry value.
type Reading struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// DeviceCard summarizes a device in lists.
type DeviceCard struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Icon         string    `json:"icon"`
	Power        string    `json:"power"`
	On           bool      `json:"on"`
	Controllable bool      `json:"controllable"`
	Dimmable     bool      `json:"dimmable"`
	Readings     []Reading `json:"readings,omitempty"`
}

// StateEntry is one key of a device's raw state.
type StateEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DeviceView is the device detail screen.
type DeviceView struct {
	DeviceCard
	Topic      string        `json:"topic,omitempty"`
	State      []StateEntry  `json:"state"`
	Keys       []string      `json:"keys"`
	Brightness string        `json:"brightness,omitempty"`
	Rules      []RuleSummary `json:"rules,omitempty"`
}

// GroupCard summarizes a group in lists.
type GroupCard struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Power       string `json:"power"`
	On          bool   `json:"on"`
	MemberCount int    `json:"member_count"`
}

// GroupView is the group detail screen.
type GroupView struct {
	GroupCard
	Members    []DeviceCard `json:"members"`
	Candidates []DeviceCard `json:"candidates"`
}

// RuleSummary is one line of the rules list.
type RuleSummary struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Active  bool             `json:"active"`
	Trigger rule.TriggerType `json:"trigger"`
	Summary string           `json:"summary"`
}

// Render builds the page for s from a cache snapshot. It has no side effects.
func Render(s State, snap cache.Snapshot, x Extras) Page {
	p := Page{
		Screen:  s.Screen,
		Title:   s.Screen.Title(),
		Epoch:   s.Epoch,
		Banner:  s.Banner,
		Notices: x.Notices,
		Pairing: x.Pairing,
		Nav:     nav(s.Screen),
		State:   s,
	}
	if t, ok := BackTarget(s); ok {
		p.Back = &t
	}
	if s.Banner != "" {
		return p
	}

	switch s.Screen {
	case ScreenDevices:
		p.Devices = deviceCards(snap.Devices)
	case ScreenDeviceDetail:
		d, ok := snap.Device(s.DeviceID)
		if !ok {
			p.Missing, p.MissingID = true, s.DeviceID
			break
		}
		p.Title = d.Name
		p.Device = deviceView(d, snap)
	case ScreenGroups:
		p.Groups = groupCards(snap)
	case ScreenGroupDetail:
		g, ok := snap.Group(s.GroupID)
		if !ok {
			p.Missing, p.MissingID = true, s.GroupID
			break
		}
		p.Title = g.Name
		p.Group = groupView(g, snap)
	case ScreenRules:
		p.Rules = ruleSummaries(snap.Rules, snap)
	case ScreenRuleDetail:
		if !s.Creating() {
			if r, ok := snap.Rule(s.RuleID); ok {
				p.Title = r.Name
			} else if x.Form == nil {
				p.Missing, p.MissingID = true, s.RuleID
				break
			}
		} else {
			p.Title = "New rule"
		}
		p.Form = x.Form
	case ScreenMap:
		p.MapURL = x.MapURL
	case ScreenLogs:
		p.Logs = x.Logs
	}
	return p
}

func nav(active Screen) []NavEntry {
	top := []Screen{ScreenDevices, ScreenGroups, ScreenRules, ScreenMap, ScreenLogs}
	out := make([]NavEntry, 0, len(top))
	for _, s := range top {
		out = append(out, NavEntry{Screen: s, Title: s.Title(), Active: s == active || parentOf(active) == s})
	}
	return out
}

func parentOf(s Screen) Screen {
	switch s {
	case ScreenDeviceDetail:
		return ScreenDevices
	case ScreenGroupDetail:
		return ScreenGroups
	case ScreenRuleDetail:
		return ScreenRules
	}
	return s
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return rule.FormatValue(v)
	}
}

func deviceCard(d device.Device) DeviceCard {
	c := DeviceCard{
		ID:           d.ID,
		Name:         d.Name,
		Type:         d.Type,
		Icon:         d.Icon(),
		Power:        d.Power(),
		On:           d.IsOn(),
		Controllable: d.Controllable(),
		Dimmable:     d.Dimmable(),
	}
	if c.Name == "" {
		c.Name = d.ID
	}
	for _, r := range d.Telemetry() {
		c.Readings = append(c.Readings, Reading{Key: r.Key, Value: formatValue(r.Value), Unit: r.Unit})
	}
	return c
}

func deviceCards(devices []device.Device) []DeviceCard {
	out := make([]DeviceCard, 0, len(devices))
	for _, d := range devices {
		out = append(out, deviceCard(d))
	}
	return out
}

func deviceView(d device.Device, snap cache.Snapshot) *DeviceView {
	v := &DeviceView{
		DeviceCard: deviceCard(d),
		Topic:      d.Topic,
		Keys:       rule.KeyDomain(d),
	}
	keys := make([]string, 0, len(d.State))
	for k := range d.State {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.State = append(v.State, StateEntry{Key: k, Value: formatValue(d.State[k])})
	}
	if b, ok := d.State["brightness"]; ok && b != nil {
		v.Brightness = formatValue(b)
	}
	var related []rule.Rule
	for _, r := range snap.Rules {
		if r.Action.DeviceID == d.ID {
			related = append(related, r)
			continue
		}
		if st, ok := r.Trigger.(rule.StateTrigger); ok && st.DeviceID == d.ID {
			related = append(related, r)
		}
	}
	v.Rules = ruleSummaries(related, snap)
	return v
}

func groupCard(g device.Group, snap cache.Snapshot) GroupCard {
	members := g.Resolve(snap.Device)
	power := g.Power(snap.Device)
	name := g.Name
	if name == "" {
		name = g.ID
	}
	return GroupCard{
		ID:          g.ID,
		Name:        name,
		Power:       power,
		On:          power == device.PowerOn,
		MemberCount: len(members),
	}
}

func groupCards(snap cache.Snapshot) []GroupCard {
	out := make([]GroupCard, 0, len(snap.Groups))
	for _, g := range snap.Groups {
		out = append(out, groupCard(g, snap))
	}
	return out
}

func groupView(g device.Group, snap cache.Snapshot) *GroupView {
	v := &GroupView{
		GroupCard: groupCard(g, snap),
		Members:   deviceCards(g.Resolve(snap.Device)),
	}
	v.Candidates = []DeviceCard{}
	for _, d := range snap.Devices {
		if !g.HasMember(d.ID) {
			v.Candidates = append(v.Candidates, deviceCard(d))
		}
	}
	return v
}

func ruleSummaries(rules []rule.Rule, snap cache.Snapshot) []RuleSummary {
	out := make([]RuleSummary, 0, len(rules))
	for _, r := range rules {
		var kind rule.TriggerType
		if r.Trigger != nil {
			kind = r.Trigger.Kind()
		}
		out = append(out, RuleSummary{
			ID:      r.ID,
			Name:    r.Name,
			Active:  r.Active,
			Trigger: kind,
			Summary: r.Describe(snap.Name),
		})
	}
	return out
}

// String renders a short label for logs and the page title bar.
func (s State) String() string {
	switch {
	case s.DeviceID != "" && s.Screen == ScreenDeviceDetail:
		return fmt.Sprintf("%s(%s)", s.Screen, s.DeviceID)
	case s.GroupID != "" && s.Screen == ScreenGroupDetail:
		return fmt.Sprintf("%s(%s)", s.Screen, s.GroupID)
	case s.Screen == ScreenRuleDetail && s.RuleID != "":
		return fmt.Sprintf("%s(%s)", s.Screen, s.RuleID)
	default:
		return string(s.Screen)
	}
}

// HasScreen reports whether the page shows any of the given screens.
func (p Page) HasScreen(screens ...Screen) bool {
	return slices.Contains(screens, p.Screen)
}
