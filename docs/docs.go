// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/panel/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Service is healthy", "schema": {"$ref": "#/definitions/types.HealthResponse"}},
                    "503": {"description": "No hub configured", "schema": {"$ref": "#/definitions/types.HealthResponse"}}
                }
            }
        },
        "/view": {
            "get": {
                "produces": ["application/json"],
                "tags": ["view"],
                "summary": "Current page",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/view/navigate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["view"],
                "summary": "Navigate",
                "parameters": [
                    {"description": "Target screen, entity id and rule prefill", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/view.Target"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid target", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/view/back": {
            "post": {"tags": ["view"], "summary": "Back", "responses": {"200": {"description": "OK"}}}
        },
        "/view/refresh": {
            "post": {"tags": ["view"], "summary": "Refresh", "responses": {"200": {"description": "OK"}}}
        },
        "/view/form": {
            "patch": {
                "consumes": ["application/json"],
                "tags": ["view"],
                "summary": "Edit the open rule form",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid field", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "No rule form open", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/view/form/submit": {
            "post": {
                "tags": ["view"],
                "summary": "Save the open rule form",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid rule", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/devices": {
            "get": {
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "List all devices",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ListDevicesResponse"}},
                    "502": {"description": "Hub error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/devices/{id}": {
            "delete": {
                "tags": ["devices"],
                "summary": "Remove a device",
                "parameters": [{"type": "string", "description": "Device id", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "Device removed"}}
            }
        },
        "/devices/{id}/name": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["devices"],
                "summary": "Rename a device",
                "parameters": [
                    {"type": "string", "description": "Device id", "name": "id", "in": "path", "required": true},
                    {"description": "New name", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.RenameDeviceRequest"}}
                ],
                "responses": {"204": {"description": "Device renamed"}}
            }
        },
        "/devices/{id}/toggle": {
            "post": {
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Toggle a device",
                "parameters": [{"type": "string", "description": "Device id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ToggleResponse"}}}
            }
        },
        "/devices/{id}/brightness": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["devices"],
                "summary": "Set brightness",
                "parameters": [
                    {"type": "string", "description": "Device or group id", "name": "id", "in": "path", "required": true},
                    {"description": "Brightness level", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.BrightnessRequest"}}
                ],
                "responses": {"204": {"description": "Brightness set"}}
            }
        },
        "/groups": {
            "get": {
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "List all groups",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ListGroupsResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "Create a group",
                "parameters": [{"description": "Group name and members", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreateGroupRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/types.GroupResponse"}}}
            }
        },
        "/groups/{id}": {
            "delete": {
                "tags": ["groups"],
                "summary": "Delete a group",
                "parameters": [{"type": "string", "description": "Group id", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "Group deleted"}}
            }
        },
        "/groups/{id}/toggle": {
            "post": {
                "tags": ["groups"],
                "summary": "Toggle a group",
                "parameters": [{"type": "string", "description": "Group id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ToggleResponse"}}}
            }
        },
        "/groups/{id}/devices/{deviceId}": {
            "post": {
                "tags": ["groups"],
                "summary": "Add a group member",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Device id", "name": "deviceId", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "Member added"}}
            },
            "delete": {
                "tags": ["groups"],
                "summary": "Remove a group member",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Device id", "name": "deviceId", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "Member removed"}}
            }
        },
        "/rules": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rules"],
                "summary": "List all rules",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ListRulesResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rules"],
                "summary": "Create a rule",
                "parameters": [{"description": "Rule fields", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/rule.Input"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.RuleResponse"}},
                    "400": {"description": "Invalid rule", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/rules/{id}": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["rules"],
                "summary": "Update a rule",
                "parameters": [
                    {"type": "string", "description": "Rule id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/rule.Input"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.RuleResponse"}}}
            },
            "delete": {
                "tags": ["rules"],
                "summary": "Delete a rule",
                "parameters": [{"type": "string", "description": "Rule id", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "Rule deleted"}}
            }
        },
        "/logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Hub logs",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.LogsResponse"}}}
            }
        },
        "/pairing/start": {
            "post": {
                "tags": ["system"],
                "summary": "Start pairing",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PairingResponse"}}}
            }
        },
        "/pairing/stop": {
            "post": {
                "tags": ["system"],
                "summary": "Stop pairing",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PairingResponse"}}}
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "message": {"type": "string"}}
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "hub": {"type": "string"},
                "screen": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "types.RenameDeviceRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}}
        },
        "types.BrightnessRequest": {
            "type": "object",
            "required": ["level"],
            "properties": {"level": {"type": "integer", "minimum": 0, "maximum": 254}}
        },
        "types.CreateGroupRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}, "members": {"type": "array", "items": {"type": "string"}}}
        },
        "types.ListDevicesResponse": {
            "type": "object",
            "properties": {"devices": {"type": "array", "items": {"type": "object"}}, "count": {"type": "integer"}}
        },
        "types.ListGroupsResponse": {
            "type": "object",
            "properties": {"groups": {"type": "array", "items": {"type": "object"}}, "count": {"type": "integer"}}
        },
        "types.GroupResponse": {
            "type": "object",
            "properties": {"group": {"type": "object"}}
        },
        "types.ListRulesResponse": {
            "type": "object",
            "properties": {"rules": {"type": "array", "items": {"type": "object"}}, "count": {"type": "integer"}}
        },
        "types.RuleResponse": {
            "type": "object",
            "properties": {"rule": {"type": "object"}}
        },
        "types.ToggleResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "action": {"type": "string"}}
        },
        "types.LogsResponse": {
            "type": "object",
            "properties": {"lines": {"type": "array", "items": {"type": "string"}}, "count": {"type": "integer"}}
        },
        "types.PairingResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "remaining_seconds": {"type": "integer"}}
        },
        "view.Target": {
            "type": "object",
            "required": ["screen"],
            "properties": {
                "screen": {"type": "string", "enum": ["devices", "device_detail", "groups", "group_detail", "rules", "rule_detail", "map", "logs"]},
                "id": {"type": "string"},
                "prefill": {"type": "string"}
            }
        },
        "rule.Input": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "active": {"type": "boolean"},
                "trigger_type": {"type": "string", "enum": ["time", "state"]},
                "time": {"type": "string"},
                "trigger_device": {"type": "string"},
                "key": {"type": "string"},
                "operator": {"type": "string", "enum": ["eq", "neq", "gt", "lt", "gte", "lte"]},
                "value": {"type": "string"},
                "target": {"type": "string"},
                "command": {"type": "string"},
                "action_value": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Hub Panel API",
	Description:      "Control panel for a home automation hub: devices, groups, rules and the current screen",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
