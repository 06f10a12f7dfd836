package rule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hubpanel/pkg/device"
)

func TestRule_MarshalTimeTrigger(t *testing.T) {
	r := Rule{
		ID: "wake-1", Name: "Wake", Active: true,
		Trigger: TimeTrigger{Time: "07:00"},
		Action:  Action{DeviceID: "lamp", Command: device.ActionTurnOn, Value: 12.0},
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":"wake-1","name":"Wake","active":true,
		"trigger":{"type":"time","time":"07:00"},
		"action":{"device_id":"lamp","command":"turn_on","value":null}
	}`, string(data))
}

func TestRule_MarshalStateTriggerKeepsZero(t *testing.T) {
	r := Rule{
		ID: "r", Name: "r", Active: false,
		Trigger: StateTrigger{DeviceID: "s1", Key: "power", Operator: OpEq, Value: 0.0},
		Action:  Action{DeviceID: "lamp", Command: device.ActionSetBrightness, Value: 100.0},
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":"r","name":"r","active":false,
		"trigger":{"type":"state","device_id":"s1","key":"power","operator":"eq","value":0},
		"action":{"device_id":"lamp","command":"set_brightness","value":100}
	}`, string(data))
}

func TestRule_UnmarshalDefaults(t *testing.T) {
	var r Rule
	err := json.Unmarshal([]byte(`{
		"id":"x","name":"x",
		"trigger":{"device_id":"s1","key":"state","operator":"neq","value":"ON"},
		"action":{"device_id":"d","command":"turn_off","value":5}
	}`), &r)
	require.NoError(t, err)
	assert.True(t, r.Active)
	assert.Equal(t, StateTrigger{DeviceID: "s1", Key: "state", Operator: OpNeq, Value: "ON"}, r.Trigger)
	assert.Nil(t, r.Action.Value)
}

func TestRule_UnmarshalRejectsUnknownTrigger(t *testing.T) {
	var r Rule
	err := json.Unmarshal([]byte(`{"id":"x","trigger":{"type":"sunset"},"action":{}}`), &r)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"id":"x","action":{}}`), &r)
	assert.Error(t, err)
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator(">=")
	require.NoError(t, err)
	assert.Equal(t, OpGte, op)

	op, err = ParseOperator("lt")
	require.NoError(t, err)
	assert.Equal(t, OpLt, op)

	_, err = ParseOperator("~")
	assert.ErrorIs(t, err, device.ErrValidation)
}

func TestRule_Describe(t *testing.T) {
	names := map[string]string{"s1": "Sensor", "lamp": "Lamp"}
	name := func(id string) string { return names[id] }

	r := Rule{
		Trigger: StateTrigger{DeviceID: "s1", Key: "temperature", Operator: OpGt, Value: 25.0},
		Action:  Action{DeviceID: "lamp", Command: device.ActionSetBrightness, Value: 80.0},
	}
	assert.Equal(t, "when Sensor.temperature > 25, set_brightness Lamp = 80", r.Describe(name))

	r.Trigger = TimeTrigger{Time: "22:00"}
	r.Action = Action{DeviceID: "lamp", Command: device.ActionTurnOff}
	assert.Equal(t, "at 22:00, turn_off Lamp", r.Describe(name))
}
