package schema

import (
	"encoding/json"
	"fmt"
)

// RuleSchema describes the rule payload accepted by the hub's /rules endpoints.
var RuleSchema = json.RawMessage(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["id", "name", "active", "trigger", "action"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"active": {"type": "boolean"},
		"trigger": {
			"oneOf": [
				{
					"type": "object",
					"required": ["type", "time"],
					"properties": {
						"type": {"const": "time"},
						"time": {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"}
					},
					"additionalProperties": false
				},
				{
					"type": "object",
					"required": ["type", "device_id", "key", "operator", "value"],
					"properties": {
						"type": {"const": "state"},
						"device_id": {"type": "string", "minLength": 1},
						"key": {"type": "string", "minLength": 1},
						"operator": {"enum": ["eq", "neq", "gt", "lt", "gte", "lte"]},
						"value": {"type": ["number", "string"]}
					},
					"additionalProperties": false
				}
			]
		},
		"action": {
			"type": "object",
			"required": ["device_id", "command", "value"],
			"properties": {
				"device_id": {"type": "string", "minLength": 1},
				"command": {"enum": ["turn_on", "turn_off", "set_brightness"]}
			},
			"if": {"properties": {"command": {"const": "set_brightness"}}},
			"then": {"properties": {"value": {"type": "number", "minimum": 0, "maximum": 254}}},
			"else": {"properties": {"value": {"type": "null"}}}
		}
	},
	"additionalProperties": false
}`)

// GroupSchema describes the group payload accepted by POST /groups.
var GroupSchema = json.RawMessage(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["id", "name", "members"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"members": {"type": "array", "items": {"type": "string", "minLength": 1}, "uniqueItems": true}
	},
	"additionalProperties": false
}`)

// ValidateValue marshals v to JSON and validates the generic form against schemaDoc.
func (v *Validator) ValidateValue(schemaDoc json.RawMessage, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("payload is not an object: %w", err)
	}
	return v.Validate(schemaDoc, payload)
}
