package rule

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urmzd/hubpanel/pkg/device"
)

// Mode tells whether a form creates a new rule or edits an existing one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Target is an entry of the action-target domain.
type Target struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group bool   `json:"group"`
}

// Writer persists rules on the hub.
type Writer interface {
	CreateRule(ctx context.Context, r Rule) error
	UpdateRule(ctx context.Context, r Rule) error
}

// Builder opens rule forms and submits them through a Writer.
type Builder struct {
	writer Writer
	check  func(Rule) error
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithCheck adds a final check run on the built rule before it is sent.
func WithCheck(check func(Rule) error) BuilderOption {
	return func(b *Builder) { b.check = check }
}

// NewBuilder creates a Builder writing through w.
func NewBuilder(w Writer, opts ...BuilderOption) *Builder {
	b := &Builder{writer: w}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Form holds the editable state of one rule. Each trigger sub-form keeps its
// own fields; only the active one is read by Build.
type Form struct {
	mode   Mode
	ruleID string

	name   string
	active bool

	triggerType TriggerType

	time string

	triggerDevice string
	key           string
	operator      Operator
	valueText     string
	keys          []string

	target      string
	command     string
	actionValue string
	seedValue   string

	devices []device.Device
	targets []Target
}

// OpenForCreate returns a blank form. A prefill id preselects the action
// target and, when it names a device, the trigger device too.
func (b *Builder) OpenForCreate(devices []device.Device, groups []device.Group, prefillTargetID string) *Form {
	f := newForm(ModeCreate, devices, groups)
	f.active = true
	f.triggerType = TriggerTime
	f.operator = OpEq
	f.command = device.ActionTurnOn

	if len(f.devices) > 0 {
		f.triggerDevice = f.devices[0].ID
	}
	if len(f.targets) > 0 {
		f.target = f.targets[0].ID
	}
	if prefillTargetID != "" {
		if f.isTarget(prefillTargetID) {
			f.target = prefillTargetID
		}
		if _, ok := f.device(prefillTargetID); ok {
			f.triggerDevice = prefillTargetID
		}
	}
	f.recomputeKeys()
	return f
}

// OpenForEdit returns a form populated from an existing rule.
func (b *Builder) OpenForEdit(r Rule, devices []device.Device, groups []device.Group) *Form {
	f := newForm(ModeEdit, devices, groups)
	f.ruleID = r.ID
	f.name = r.Name
	f.active = r.Active
	f.operator = OpEq
	if len(f.devices) > 0 {
		f.triggerDevice = f.devices[0].ID
	}

	switch t := r.Trigger.(type) {
	case TimeTrigger:
		f.triggerType = TriggerTime
		f.time = t.Time
	case StateTrigger:
		f.triggerType = TriggerState
		f.triggerDevice = t.DeviceID
		f.operator = t.Operator
		f.valueText = FormatValue(t.Value)
		f.recomputeKeys()
		if t.Key != "" && !slices.Contains(f.keys, t.Key) {
			f.keys = append(f.keys, t.Key)
		}
		f.key = t.Key
	default:
		f.triggerType = TriggerTime
	}
	if f.keys == nil {
		f.recomputeKeys()
	}

	f.target = r.Action.DeviceID
	f.command = r.Action.Command
	if TakesValue(r.Action.Command) {
		f.seedValue = FormatValue(r.Action.Value)
		f.actionValue = f.seedValue
	}
	return f
}

func newForm(mode Mode, devices []device.Device, groups []device.Group) *Form {
	f := &Form{mode: mode, key: StateKey}
	f.devices = slices.Clone(devices)
	for _, d := range devices {
		f.targets = append(f.targets, Target{ID: d.ID, Name: d.Name})
	}
	for _, g := range groups {
		f.targets = append(f.targets, Target{ID: g.ID, Name: g.Name, Group: true})
	}
	return f
}

func (f *Form) device(id string) (device.Device, bool) {
	for _, d := range f.devices {
		if d.ID == id {
			return d, true
		}
	}
	return device.Device{}, false
}

func (f *Form) isTarget(id string) bool {
	return slices.ContainsFunc(f.targets, func(t Target) bool { return t.ID == id })
}

// recomputeKeys refreshes the key selector for the selected trigger device.
// It runs synchronously on every device change.
func (f *Form) recomputeKeys() {
	d, ok := f.device(f.triggerDevice)
	if !ok {
		f.keys = []string{StateKey}
	} else {
		f.keys = KeyDomain(d)
	}
	if !slices.Contains(f.keys, f.key) {
		f.key = StateKey
	}
}

// Mode returns whether the form creates or edits.
func (f *Form) Mode() Mode { return f.mode }

// RuleID returns the id of the edited rule, or the id assigned on the first
// successful build of a new rule.
func (f *Form) RuleID() string { return f.ruleID }

// Keys returns the current trigger key domain.
func (f *Form) Keys() []string { return slices.Clone(f.keys) }

// TriggerType returns the visible trigger sub-form.
func (f *Form) TriggerType() TriggerType { return f.triggerType }

// ValueVisible reports whether the action value input is shown.
func (f *Form) ValueVisible() bool { return TakesValue(f.command) }

// SetName sets the rule name.
func (f *Form) SetName(name string) { f.name = strings.TrimSpace(name) }

// SetActive sets whether the hub should evaluate the rule.
func (f *Form) SetActive(active bool) { f.active = active }

// SetTriggerType switches the visible trigger sub-form. Fields of the hidden
// sub-form are kept so switching back restores them.
func (f *Form) SetTriggerType(t TriggerType) error {
	switch t {
	case TriggerTime, TriggerState:
		f.triggerType = t
		return nil
	default:
		return fmt.Errorf("%w: unknown trigger type %q", device.ErrValidation, t)
	}
}

// SetTime sets the time sub-form value.
func (f *Form) SetTime(s string) { f.time = strings.TrimSpace(s) }

// SelectTriggerDevice changes the trigger device and recomputes the key domain.
// Groups are not valid trigger devices.
func (f *Form) SelectTriggerDevice(id string) error {
	if _, ok := f.device(id); !ok {
		return fmt.Errorf("%w: %q is not a device", device.ErrValidation, id)
	}
	f.triggerDevice = id
	f.recomputeKeys()
	return nil
}

// SetTriggerKey selects a key from the current key domain.
func (f *Form) SetTriggerKey(key string) error {
	if !slices.Contains(f.keys, key) {
		return fmt.Errorf("%w: key %q not available", device.ErrValidation, key)
	}
	f.key = key
	return nil
}

// SetOperator sets the comparison operator.
func (f *Form) SetOperator(op Operator) error {
	if !op.Valid() {
		return fmt.Errorf("%w: unknown operator %q", device.ErrValidation, op)
	}
	f.operator = op
	return nil
}

// SetTriggerValue sets the raw comparison value text.
func (f *Form) SetTriggerValue(text string) { f.valueText = text }

// SetActionTarget selects a device or group as the action target.
func (f *Form) SetActionTarget(id string) error {
	if !f.isTarget(id) {
		return fmt.Errorf("%w: unknown target %q", device.ErrValidation, id)
	}
	f.target = id
	return nil
}

// SetCommand selects the action command. Leaving set_brightness clears the
// typed value; coming back starts from the edited rule's value, or blank.
func (f *Form) SetCommand(cmd string) error {
	if !slices.Contains(Commands, cmd) {
		return fmt.Errorf("%w: unknown command %q", device.ErrValidation, cmd)
	}
	if cmd == f.command {
		return nil
	}
	was := TakesValue(f.command)
	f.command = cmd
	switch {
	case was && !TakesValue(cmd):
		f.actionValue = ""
	case !was && TakesValue(cmd):
		f.actionValue = f.seedValue
	}
	return nil
}

// SetActionValue sets the action value text. Ignored while the input is hidden.
func (f *Form) SetActionValue(text string) {
	if f.ValueVisible() {
		f.actionValue = strings.TrimSpace(text)
	}
}

// Input is a partial form update. Nil fields are left untouched. Fields are
// applied in dependency order: trigger type, trigger device, key, the rest.
type Input struct {
	Name          *string `json:"name,omitempty" form:"name"`
	Active        *bool   `json:"active,omitempty" form:"active"`
	TriggerType   *string `json:"trigger_type,omitempty" form:"trigger_type"`
	Time          *string `json:"time,omitempty" form:"time"`
	TriggerDevice *string `json:"trigger_device,omitempty" form:"trigger_device"`
	Key           *string `json:"key,omitempty" form:"key"`
	Operator      *string `json:"operator,omitempty" form:"operator"`
	Value         *string `json:"value,omitempty" form:"value"`
	Target        *string `json:"target,omitempty" form:"target"`
	Command       *string `json:"command,omitempty" form:"command"`
	ActionValue   *string `json:"action_value,omitempty" form:"action_value"`
}

// Apply applies an Input, stopping at the first invalid field.
func (f *Form) Apply(in Input) error {
	if in.Name != nil {
		f.SetName(*in.Name)
	}
	if in.Active != nil {
		f.SetActive(*in.Active)
	}
	if in.TriggerType != nil {
		if err := f.SetTriggerType(TriggerType(*in.TriggerType)); err != nil {
			return err
		}
	}
	if in.Time != nil {
		f.SetTime(*in.Time)
	}
	prevKeys := f.keys
	changed := in.TriggerDevice != nil && *in.TriggerDevice != f.triggerDevice
	if changed {
		if err := f.SelectTriggerDevice(*in.TriggerDevice); err != nil {
			return err
		}
	}
	if in.Key != nil {
		// A key posted with a device change may still belong to the old
		// device; keep the recomputed default for it.
		stale := changed && !slices.Contains(f.keys, *in.Key) && slices.Contains(prevKeys, *in.Key)
		if !stale {
			if err := f.SetTriggerKey(*in.Key); err != nil {
				return err
			}
		}
	}
	if in.Operator != nil {
		op, err := ParseOperator(*in.Operator)
		if err != nil {
			return err
		}
		f.operator = op
	}
	if in.Value != nil {
		f.SetTriggerValue(*in.Value)
	}
	if in.Target != nil {
		if err := f.SetActionTarget(*in.Target); err != nil {
			return err
		}
	}
	if in.Command != nil {
		if err := f.SetCommand(*in.Command); err != nil {
			return err
		}
	}
	if in.ActionValue != nil {
		f.SetActionValue(*in.ActionValue)
	}
	return nil
}

// Build assembles the canonical Rule from the form. Create and edit produce
// the same shape. A new rule gets its id on the first successful build.
func (f *Form) Build() (Rule, error) {
	if f.name == "" {
		return Rule{}, fmt.Errorf("%w: name is required", device.ErrValidation)
	}

	var trig Trigger
	switch f.triggerType {
	case TriggerTime:
		if !ValidTime(f.time) {
			return Rule{}, fmt.Errorf("%w: time must be HH:MM", device.ErrValidation)
		}
		trig = TimeTrigger{Time: f.time}
	case TriggerState:
		if f.triggerDevice == "" {
			return Rule{}, fmt.Errorf("%w: trigger device is required", device.ErrValidation)
		}
		if f.key == "" {
			return Rule{}, fmt.Errorf("%w: trigger key is required", device.ErrValidation)
		}
		if strings.TrimSpace(f.valueText) == "" {
			return Rule{}, fmt.Errorf("%w: trigger value is required", device.ErrValidation)
		}
		trig = StateTrigger{
			DeviceID: f.triggerDevice,
			Key:      f.key,
			Operator: f.operator,
			Value:    Coerce(f.valueText),
		}
	default:
		return Rule{}, fmt.Errorf("%w: unknown trigger type %q", device.ErrValidation, f.triggerType)
	}

	if f.target == "" {
		return Rule{}, fmt.Errorf("%w: action target is required", device.ErrValidation)
	}
	action := Action{DeviceID: f.target, Command: f.command}
	if TakesValue(f.command) {
		level, ok := parseNumber(f.actionValue)
		if !ok || level != float64(int(level)) || level < device.BrightnessMin || level > device.BrightnessMax {
			return Rule{}, fmt.Errorf("%w: brightness must be a whole number between %d and %d",
				device.ErrValidation, device.BrightnessMin, device.BrightnessMax)
		}
		action.Value = level
	}

	if f.ruleID == "" {
		f.ruleID = NewID(f.name)
	}
	return Rule{
		ID:      f.ruleID,
		Name:    f.name,
		Active:  f.active,
		Trigger: trig,
		Action:  action,
	}, nil
}

// Submit builds the rule and creates or updates it on the hub.
func (b *Builder) Submit(ctx context.Context, f *Form) (Rule, error) {
	r, err := b.Prepare(f)
	if err != nil {
		return Rule{}, err
	}
	if err := b.Save(ctx, f.mode, r); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// Prepare builds and checks the rule without writing it. It touches the
// form, so callers sharing f must hold their lock; Save does not.
func (b *Builder) Prepare(f *Form) (Rule, error) {
	r, err := f.Build()
	if err != nil {
		return Rule{}, err
	}
	if b.check != nil {
		if err := b.check(r); err != nil {
			return Rule{}, err
		}
	}
	return r, nil
}

// Save writes a prepared rule, updating in ModeEdit and creating otherwise.
func (b *Builder) Save(ctx context.Context, mode Mode, r Rule) error {
	if mode == ModeEdit {
		return b.writer.UpdateRule(ctx, r)
	}
	return b.writer.CreateRule(ctx, r)
}

// View is a render-ready snapshot of the form.
type View struct {
	Mode          Mode            `json:"mode"`
	RuleID        string          `json:"rule_id,omitempty"`
	Name          string          `json:"name"`
	Active        bool            `json:"active"`
	TriggerType   TriggerType     `json:"trigger_type"`
	Time          string          `json:"time"`
	TriggerDevice string          `json:"trigger_device"`
	Key           string          `json:"key"`
	Keys          []string        `json:"keys"`
	Operator      Operator        `json:"operator"`
	Operators     []Operator      `json:"operators"`
	Value         string          `json:"value"`
	Target        string          `json:"target"`
	Command       string          `json:"command"`
	Commands      []string        `json:"commands"`
	ValueVisible  bool            `json:"value_visible"`
	ActionValue   string          `json:"action_value"`
	Devices       []device.Device `json:"devices"`
	Targets       []Target        `json:"targets"`
}

// View returns the current form state for rendering.
func (f *Form) View() View {
	return View{
		Mode:          f.mode,
		RuleID:        f.ruleID,
		Name:          f.name,
		Active:        f.active,
		TriggerType:   f.triggerType,
		Time:          f.time,
		TriggerDevice: f.triggerDevice,
		Key:           f.key,
		Keys:          f.Keys(),
		Operator:      f.operator,
		Operators:     Operators,
		Value:         f.valueText,
		Target:        f.target,
		Command:       f.command,
		Commands:      Commands,
		ValueVisible:  f.ValueVisible(),
		ActionValue:   f.actionValue,
		Devices:       slices.Clone(f.devices),
		Targets:       slices.Clone(f.targets),
	}
}
