package device

import "slices"

// Device mirrors a hub device. The panel never creates or removes devices
// itself; pairing and deletion happen on the hub.
type Device struct {
	ID            string   `json:"id"`                       // Stable identifier (IEEE address for Zigbee)
	Name          string   `json:"name"`                     // User-facing name, mutable via rename
	Type          string   `json:"type"`                     // socket, light, sensor, ...
	Topic         string   `json:"topic,omitempty"`          // Hub-side MQTT topic, informational only
	State         State    `json:"state"`                    // Last reported key/value state
	AvailableKeys []string `json:"available_keys,omitempty"` // Telemetry keys usable in rule triggers
}

// State represents the current state of a device as a dynamic map.
type State map[string]any

// Group is a named set of device ids that accepts the same action
// vocabulary as a device.
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Power state values reported under state.state
const (
	PowerOn      = "ON"
	PowerOff     = "OFF"
	PowerUnknown = "UNKNOWN"
)

// Device type constants
const (
	TypeSocket     = "socket"
	TypeLight      = "light"
	TypeSensor     = "sensor"
	TypeCover      = "cover"
	TypeLock       = "lock"
	TypeThermostat = "thermostat"
	TypeController = "controller"
)

// Action vocabulary shared by devices and groups
const (
	ActionTurnOn        = "turn_on"
	ActionTurnOff       = "turn_off"
	ActionSetBrightness = "set_brightness"
)

// Brightness bounds accepted by light devices
const (
	BrightnessMin = 0
	BrightnessMax = 254
)

// Power returns the device's state.state, or UNKNOWN when absent.
func (d Device) Power() string {
	if s, ok := d.State["state"].(string); ok && s != "" {
		return s
	}
	return PowerUnknown
}

// IsOn reports whether the last known power state is ON.
func (d Device) IsOn() bool {
	return d.Power() == PowerOn
}

// Controllable reports whether the device exposes a power control.
// Sensors only expose telemetry.
func (d Device) Controllable() bool {
	return d.Type != TypeSensor
}

// Dimmable reports whether the device accepts set_brightness.
func (d Device) Dimmable() bool {
	return d.Type == TypeLight
}

// Reading is a single telemetry value with its unit.
type Reading struct {
	Key   string
	Value any
	Unit  string
}

var telemetryUnits = []struct{ key, unit string }{
	{"power", "W"},
	{"temperature", "°C"},
	{"humidity", "%"},
	{"brightness", ""},
}

// Telemetry returns the known telemetry readings present in the device state.
func (d Device) Telemetry() []Reading {
	var out []Reading
	for _, t := range telemetryUnits {
		v, ok := d.State[t.key]
		if !ok || v == nil {
			continue
		}
		out = append(out, Reading{Key: t.key, Value: v, Unit: t.unit})
	}
	return out
}

// Icon returns the icon name used by the panel for the device type.
func (d Device) Icon() string {
	switch d.Type {
	case TypeSocket:
		return "plug"
	case TypeLight:
		return "lightbulb"
	case TypeSensor:
		return "temperature-half"
	case TypeCover:
		return "blinds"
	case TypeLock:
		return "lock"
	case TypeThermostat:
		return "fire"
	case TypeController:
		return "gamepad"
	default:
		return "question"
	}
}

// HasMember reports whether deviceID is listed in the group.
func (g Group) HasMember(deviceID string) bool {
	return slices.Contains(g.Members, deviceID)
}

// Resolve returns the member devices found by lookup, in member order.
// Dangling and repeated ids are omitted.
func (g Group) Resolve(lookup func(id string) (Device, bool)) []Device {
	seen := make(map[string]struct{}, len(g.Members))
	out := make([]Device, 0, len(g.Members))
	for _, id := range g.Members {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if d, ok := lookup(id); ok {
			out = append(out, d)
		}
	}
	return out
}

// Power returns ON when any resolved member is on, OFF when all are known
// to be off, and UNKNOWN otherwise.
func (g Group) Power(lookup func(id string) (Device, bool)) string {
	members := g.Resolve(lookup)
	if len(members) == 0 {
		return PowerUnknown
	}
	allOff := true
	for _, d := range members {
		switch d.Power() {
		case PowerOn:
			return PowerOn
		case PowerOff:
		default:
			allOff = false
		}
	}
	if allOff {
		return PowerOff
	}
	return PowerUnknown
}
