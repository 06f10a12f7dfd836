package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/urmzd/hubpanel/pkg/device"
)

// Validator checks outgoing hub payloads against JSON Schema documents.
// Compiled schemas are cached by their raw bytes.
type Validator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewValidator creates a Validator with an empty cache.
func NewValidator() *Validator {
	return &Validator{compiled: make(map[string]*jsonschema.Schema)}
}

// Validate validates payload against schemaDoc. An empty or null schema
// accepts everything. Failures wrap device.ErrValidation.
func (v *Validator) Validate(schemaDoc json.RawMessage, payload map[string]any) error {
	switch string(schemaDoc) {
	case "", "{}", "null":
		return nil
	}

	s, err := v.schema(schemaDoc)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	if err := s.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", device.ErrValidation, err)
	}
	return nil
}

// ValidateRule checks a rule payload before it is posted to the hub.
func (v *Validator) ValidateRule(rule any) error {
	return v.ValidateValue(RuleSchema, rule)
}

// ValidateGroup checks a group payload before it is posted to the hub.
func (v *Validator) ValidateGroup(group any) error {
	return v.ValidateValue(GroupSchema, group)
}

func (v *Validator) schema(doc json.RawMessage) (*jsonschema.Schema, error) {
	key := string(doc)

	v.mu.RLock()
	s, ok := v.compiled[key]
	v.mu.RUnlock()
	if ok {
		return s, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.compiled[key]; ok {
		return s, nil
	}

	var parsed any
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("payload.json", parsed); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}
	s, err := c.Compile("payload.json")
	if err != nil {
		return nil, err
	}
	v.compiled[key] = s
	return s, nil
}
