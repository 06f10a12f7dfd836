// Package view implements the panel's screen state machine and the pure
// rendering of a View-State plus cache snapshot into a page model.
package view

import (
	"fmt"

	"github.com/urmzd/hubpanel/pkg/device"
)

// Screen is one of the mutually exclusive top-level panel screens.
type Screen string

const (
	ScreenDevices      Screen = "devices"
	ScreenDeviceDetail Screen = "device_detail"
	ScreenGroups       Screen = "groups"
	ScreenGroupDetail  Screen = "group_detail"
	ScreenRules        Screen = "rules"
	ScreenRuleDetail   Screen = "rule_detail"
	ScreenMap          Screen = "map"
	ScreenLogs         Screen = "logs"
)

// Screens lists every screen in navigation order.
var Screens = []Screen{
	ScreenDevices, ScreenDeviceDetail, ScreenGroups, ScreenGroupDetail,
	ScreenRules, ScreenRuleDetail, ScreenMap, ScreenLogs,
}

var screenTitles = map[Screen]string{
	ScreenDevices:      "Devices",
	ScreenDeviceDetail: "Device",
	ScreenGroups:       "Groups",
	ScreenGroupDetail:  "Group",
	ScreenRules:        "Rules",
	ScreenRuleDetail:   "Rule",
	ScreenMap:          "Map",
	ScreenLogs:         "Logs",
}

// Valid reports whether s names a known screen.
func (s Screen) Valid() bool {
	_, ok := screenTitles[s]
	return ok
}

// Title returns the heading shown for the screen.
func (s Screen) Title() string {
	return screenTitles[s]
}

// Detail reports whether the screen focuses a single entity.
func (s Screen) Detail() bool {
	return s == ScreenDeviceDetail || s == ScreenGroupDetail || s == ScreenRuleDetail
}

// ParseScreen converts a path segment into a Screen.
func ParseScreen(s string) (Screen, error) {
	if Screen(s).Valid() {
		return Screen(s), nil
	}
	return "", fmt.Errorf("%w: unknown screen %q", device.ErrValidation, s)
}

// State is the complete View-State. It is a plain value: the router swaps it
// whole, and it is persisted and passed to Render as is.
type State struct {
	Screen Screen `json:"screen"`

	// Origin is where DeviceDetail returns to: devices or group_detail.
	Origin Screen `json:"origin,omitempty"`

	// Focus references. Each is set only while a screen that uses it is active.
	DeviceID string `json:"device_id,omitempty"`
	GroupID  string `json:"group_id,omitempty"`
	RuleID   string `json:"rule_id,omitempty"`

	// Prefill preselects the action target of a new rule.
	Prefill string `json:"prefill,omitempty"`

	// Epoch increments on every transition.
	Epoch uint64 `json:"epoch"`

	// Banner is an inline error replacing the content area.
	Banner string `json:"banner,omitempty"`
}

// Initial returns the state the panel starts in.
func Initial() State {
	return State{Screen: ScreenDevices}
}

// Target is a navigation request.
type Target struct {
	Screen  Screen `json:"screen" binding:"required"`
	ID      string `json:"id,omitempty"`
	Prefill string `json:"prefill,omitempty"`
}

// Validate checks that a target carries the id its screen needs.
func (t Target) Validate() error {
	if !t.Screen.Valid() {
		return fmt.Errorf("%w: unknown screen %q", device.ErrValidation, t.Screen)
	}
	switch t.Screen {
	case ScreenDeviceDetail, ScreenGroupDetail:
		if t.ID == "" {
			return fmt.Errorf("%w: %s needs an id", device.ErrValidation, t.Screen)
		}
	}
	return nil
}

// Creating reports whether a rule_detail state opens a new rule.
func (s State) Creating() bool {
	return s.Screen == ScreenRuleDetail && s.RuleID == ""
}

// CanBack reports whether the screen has a back affordance.
func (s State) CanBack() bool {
	return s.Screen.Detail()
}

// Validate checks a restored state for consistency.
func (s State) Validate() error {
	if !s.Screen.Valid() {
		return fmt.Errorf("%w: unknown screen %q", device.ErrValidation, s.Screen)
	}
	switch s.Screen {
	case ScreenDeviceDetail:
		if s.DeviceID == "" {
			return fmt.Errorf("%w: device_detail without device id", device.ErrValidation)
		}
		if s.Origin == ScreenGroupDetail && s.GroupID == "" {
			return fmt.Errorf("%w: group origin without group id", device.ErrValidation)
		}
	case ScreenGroupDetail:
		if s.GroupID == "" {
			return fmt.Errorf("%w: group_detail without group id", device.ErrValidation)
		}
	}
	return nil
}
