package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hubpanel/pkg/device"
)

func lightSetSchema() json.RawMessage {
	return json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"state": {"type": "string", "enum": ["ON", "OFF"]},
			"brightness": {"type": "number", "minimum": 0, "maximum": 254}
		},
		"additionalProperties": false
	}`)
}

func TestValidate_ValidPayload(t *testing.T) {
	v := NewValidator()
	err := v.Validate(lightSetSchema(), map[string]any{"state": "ON", "brightness": float64(200)})
	assert.NoError(t, err)
}

func TestValidate_InvalidEnumWrapsValidation(t *testing.T) {
	v := NewValidator()
	err := v.Validate(lightSetSchema(), map[string]any{"state": "INVALID"})
	require.Error(t, err)
	assert.ErrorIs(t, err, device.ErrValidation)
}

func TestValidate_EmptyAndNilSchema(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(json.RawMessage(`{}`), map[string]any{"anything": "goes"}))
	assert.NoError(t, v.Validate(nil, map[string]any{"anything": "goes"}))
}

func TestValidate_CachesSchema(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Validate(lightSetSchema(), map[string]any{"state": "ON"}))
	require.NoError(t, v.Validate(lightSetSchema(), map[string]any{"state": "OFF"}))

	v.mu.RLock()
	defer v.mu.RUnlock()
	assert.Len(t, v.compiled, 1)
}

func timeRule() map[string]any {
	return map[string]any{
		"id":      "wake-up-1a2b3c4d",
		"name":    "Wake up",
		"active":  true,
		"trigger": map[string]any{"type": "time", "time": "07:30"},
		"action":  map[string]any{"device_id": "d1", "command": "turn_on", "value": nil},
	}
}

func TestValidateRule_TimeTrigger(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateRule(timeRule()))
}

func TestValidateRule_StateTriggerNumericValue(t *testing.T) {
	v := NewValidator()
	r := timeRule()
	r["trigger"] = map[string]any{
		"type": "state", "device_id": "s1", "key": "temperature", "operator": "gt", "value": 21.5,
	}
	assert.NoError(t, v.ValidateRule(r))
}

func TestValidateRule_BadTime(t *testing.T) {
	v := NewValidator()
	r := timeRule()
	r["trigger"] = map[string]any{"type": "time", "time": "25:00"}
	assert.ErrorIs(t, v.ValidateRule(r), device.ErrValidation)
}

func TestValidateRule_MixedTriggerFieldsRejected(t *testing.T) {
	v := NewValidator()
	r := timeRule()
	r["trigger"] = map[string]any{"type": "time", "time": "07:30", "device_id": "d1"}
	assert.Error(t, v.ValidateRule(r))
}

func TestValidateRule_ValueOnlyWithBrightness(t *testing.T) {
	v := NewValidator()

	r := timeRule()
	r["action"] = map[string]any{"device_id": "d1", "command": "turn_on", "value": 100.0}
	assert.Error(t, v.ValidateRule(r), "turn_on must carry a null value")

	r["action"] = map[string]any{"device_id": "d1", "command": "set_brightness", "value": 100.0}
	assert.NoError(t, v.ValidateRule(r))

	r["action"] = map[string]any{"device_id": "d1", "command": "set_brightness", "value": nil}
	assert.Error(t, v.ValidateRule(r), "set_brightness needs a number")

	r["action"] = map[string]any{"device_id": "d1", "command": "set_brightness", "value": 300.0}
	assert.Error(t, v.ValidateRule(r))
}

func TestValidateGroup(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateGroup(map[string]any{
		"id": "kitchen-1", "name": "Kitchen", "members": []any{"d1", "d2"},
	}))
	assert.Error(t, v.ValidateGroup(map[string]any{
		"id": "kitchen-1", "name": "", "members": []any{"d1"},
	}))
	assert.Error(t, v.ValidateGroup(map[string]any{
		"id": "kitchen-1", "name": "Kitchen", "members": []any{"d1", "d1"},
	}))
}
