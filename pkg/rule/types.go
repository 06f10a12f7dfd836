package rule

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urmzd/hubpanel/pkg/device"
)

// Rule is a stored trigger→action automation entry. The hub evaluates it;
// the panel only authors it.
type Rule struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Active  bool    `json:"active"`
	Trigger Trigger `json:"trigger"`
	Action  Action  `json:"action"`
}

// Trigger is the condition that fires a rule. It is implemented by
// TimeTrigger and StateTrigger only.
type Trigger interface {
	Kind() TriggerType
	isTrigger()
}

// TriggerType discriminates the Trigger variants on the wire.
type TriggerType string

const (
	TriggerTime  TriggerType = "time"
	TriggerState TriggerType = "state"
)

// TimeTrigger fires once a day at Time ("HH:MM").
type TimeTrigger struct {
	Time string
}

// StateTrigger fires when a device state key compares true against Value.
type StateTrigger struct {
	DeviceID string
	Key      string
	Operator Operator
	Value    any // float64 or string, see Coerce
}

func (TimeTrigger) Kind() TriggerType  { return TriggerTime }
func (StateTrigger) Kind() TriggerType { return TriggerState }
func (TimeTrigger) isTrigger()         {}
func (StateTrigger) isTrigger()        {}

// Operator is a comparison token as stored by the hub.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpLt  Operator = "lt"
	OpGte Operator = "gte"
	OpLte Operator = "lte"
)

// Operators lists the comparison operators the hub understands, in display order.
var Operators = []Operator{OpEq, OpNeq, OpGt, OpLt, OpGte, OpLte}

var operatorSymbols = map[Operator]string{
	OpEq:  "==",
	OpNeq: "!=",
	OpGt:  ">",
	OpLt:  "<",
	OpGte: ">=",
	OpLte: "<=",
}

// Symbol returns the display form of the operator.
func (o Operator) Symbol() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return string(o)
}

// Valid reports whether the hub understands the operator.
func (o Operator) Valid() bool {
	_, ok := operatorSymbols[o]
	return ok
}

// ParseOperator accepts either the hub token or the display symbol.
func ParseOperator(s string) (Operator, error) {
	if Operator(s).Valid() {
		return Operator(s), nil
	}
	for op, sym := range operatorSymbols {
		if sym == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: unknown operator %q", device.ErrValidation, s)
}

// Action is the command a rule applies to a device or group.
type Action struct {
	DeviceID string
	Command  string
	Value    any // nil unless Command is set_brightness
}

// Commands lists the commands offered for rule actions.
var Commands = []string{device.ActionTurnOn, device.ActionTurnOff, device.ActionSetBrightness}

// TakesValue reports whether command requires a parameter.
func TakesValue(command string) bool {
	return command == device.ActionSetBrightness
}

type actionJSON struct {
	DeviceID string `json:"device_id"`
	Command  string `json:"command"`
	Value    any    `json:"value"`
}

// MarshalJSON always emits value, as null unless the command takes one.
func (a Action) MarshalJSON() ([]byte, error) {
	out := actionJSON{DeviceID: a.DeviceID, Command: a.Command}
	if TakesValue(a.Command) {
		out.Value = a.Value
	}
	return json.Marshal(out)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var in actionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	a.DeviceID = in.DeviceID
	a.Command = in.Command
	a.Value = nil
	if TakesValue(in.Command) {
		a.Value = in.Value
	}
	return nil
}

type triggerJSON struct {
	Type     TriggerType `json:"type"`
	Time     string      `json:"time,omitempty"`
	DeviceID string      `json:"device_id,omitempty"`
	Key      string      `json:"key,omitempty"`
	Operator Operator    `json:"operator,omitempty"`
	Value    any         `json:"value,omitempty"`
}

type timeTriggerJSON struct {
	Type TriggerType `json:"type"`
	Time string      `json:"time"`
}

type stateTriggerJSON struct {
	Type     TriggerType `json:"type"`
	DeviceID string      `json:"device_id"`
	Key      string      `json:"key"`
	Operator Operator    `json:"operator"`
	Value    any         `json:"value"`
}

type ruleJSON struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Active  bool            `json:"active"`
	Trigger json.RawMessage `json:"trigger"`
	Action  Action          `json:"action"`
}

var errNoTrigger = errors.New("rule has no trigger")

// EncodeTrigger converts a trigger into its wire representation.
func EncodeTrigger(t Trigger) (json.RawMessage, error) {
	var out any
	switch v := t.(type) {
	case TimeTrigger:
		out = timeTriggerJSON{Type: TriggerTime, Time: v.Time}
	case StateTrigger:
		out = stateTriggerJSON{
			Type:     TriggerState,
			DeviceID: v.DeviceID,
			Key:      v.Key,
			Operator: v.Operator,
			Value:    v.Value,
		}
	case nil:
		return nil, errNoTrigger
	default:
		return nil, fmt.Errorf("unsupported trigger %T", t)
	}
	return json.Marshal(out)
}

// DecodeTrigger parses a wire trigger. A missing type is inferred from the
// fields present, since older hub records omit it.
func DecodeTrigger(data []byte) (Trigger, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, errNoTrigger
	}
	var in triggerJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode trigger: %w", err)
	}
	kind := in.Type
	if kind == "" {
		if in.Time != "" {
			kind = TriggerTime
		} else {
			kind = TriggerState
		}
	}
	switch kind {
	case TriggerTime:
		return TimeTrigger{Time: in.Time}, nil
	case TriggerState:
		return StateTrigger{
			DeviceID: in.DeviceID,
			Key:      in.Key,
			Operator: in.Operator,
			Value:    in.Value,
		}, nil
	default:
		return nil, fmt.Errorf("unknown trigger type %q", in.Type)
	}
}

func (r Rule) MarshalJSON() ([]byte, error) {
	trig, err := EncodeTrigger(r.Trigger)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ruleJSON{
		ID:      r.ID,
		Name:    r.Name,
		Active:  r.Active,
		Trigger: trig,
		Action:  r.Action,
	})
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	in := ruleJSON{Active: true}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	trig, err := DecodeTrigger(in.Trigger)
	if err != nil {
		return fmt.Errorf("rule %q: %w", in.ID, err)
	}
	*r = Rule{
		ID:      in.ID,
		Name:    in.Name,
		Active:  in.Active,
		Trigger: trig,
		Action:  in.Action,
	}
	return nil
}

// ToMap converts the rule into a generic JSON object for schema validation.
func (r Rule) ToMap() (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Describe renders a one-line human summary of the rule.
func (r Rule) Describe(name func(id string) string) string {
	var when string
	switch t := r.Trigger.(type) {
	case TimeTrigger:
		when = "at " + t.Time
	case StateTrigger:
		when = fmt.Sprintf("when %s.%s %s %v", name(t.DeviceID), t.Key, t.Operator.Symbol(), t.Value)
	default:
		when = "never"
	}
	do := fmt.Sprintf("%s %s", r.Action.Command, name(r.Action.DeviceID))
	if TakesValue(r.Action.Command) && r.Action.Value != nil {
		do = fmt.Sprintf("%s = %v", do, r.Action.Value)
	}
	return when + ", " + do
}
