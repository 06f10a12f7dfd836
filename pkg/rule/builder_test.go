package rule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hubpanel/pkg/device"
)

type recordingWriter struct {
	created []Rule
	updated []Rule
	err     error
}

func (w *recordingWriter) CreateRule(_ context.Context, r Rule) error {
	if w.err != nil {
		return w.err
	}
	w.created = append(w.created, r)
	return nil
}

func (w *recordingWriter) UpdateRule(_ context.Context, r Rule) error {
	if w.err != nil {
		return w.err
	}
	w.updated = append(w.updated, r)
	return nil
}

func ptr[T any](v T) *T { return &v }

var (
	testDevices = []device.Device{
		{ID: "lamp", Name: "Lamp", Type: device.TypeLight, AvailableKeys: []string{"brightness"}},
		{ID: "sensor", Name: "Sensor", Type: device.TypeSensor, AvailableKeys: []string{"temperature", "humidity"}},
	}
	testGroups = []device.Group{{ID: "kitchen", Name: "Kitchen", Members: []string{"lamp"}}}
)

func TestOpenForCreate_Defaults(t *testing.T) {
	f := NewBuilder(&recordingWriter{}).OpenForCreate(testDevices, testGroups, "")

	v := f.View()
	assert.Equal(t, ModeCreate, v.Mode)
	assert.True(t, v.Active)
	assert.Equal(t, TriggerTime, v.TriggerType)
	assert.Equal(t, "lamp", v.TriggerDevice)
	assert.Equal(t, []string{"state", "brightness"}, v.Keys)
	assert.Equal(t, "lamp", v.Target)
	assert.Equal(t, device.ActionTurnOn, v.Command)
	assert.False(t, v.ValueVisible)
	assert.Len(t, v.Targets, 3)
	assert.Empty(t, f.RuleID())
}

func TestOpenForCreate_Prefill(t *testing.T) {
	b := NewBuilder(&recordingWriter{})

	f := b.OpenForCreate(testDevices, testGroups, "sensor")
	assert.Equal(t, "sensor", f.View().Target)
	assert.Equal(t, "sensor", f.View().TriggerDevice)

	f = b.OpenForCreate(testDevices, testGroups, "kitchen")
	assert.Equal(t, "kitchen", f.View().Target)
	assert.Equal(t, "lamp", f.View().TriggerDevice)
}

func TestForm_TriggerDeviceRecomputesKeys(t *testing.T) {
	f := NewBuilder(&recordingWriter{}).OpenForCreate(testDevices, testGroups, "")
	require.NoError(t, f.SetTriggerType(TriggerState))
	require.NoError(t, f.SetTriggerKey("brightness"))

	require.NoError(t, f.SelectTriggerDevice("sensor"))
	assert.Equal(t, []string{"state", "humidity", "temperature"}, f.Keys())
	assert.Equal(t, StateKey, f.View().Key)

	assert.ErrorIs(t, f.SelectTriggerDevice("kitchen"), device.ErrValidation)
	assert.ErrorIs(t, f.SetTriggerKey("brightness"), device.ErrValidation)
}

func TestForm_StateTriggerCoercesValue(t *testing.T) {
	f := NewBuilder(&recordingWriter{}).OpenForCreate(testDevices, testGroups, "")
	require.NoError(t, f.Apply(Input{
		Name:          ptr("Hot"),
		TriggerType:   ptr("state"),
		TriggerDevice: ptr("sensor"),
		Key:           ptr("temperature"),
		Operator:      ptr(">"),
		Value:         ptr("25"),
		Target:        ptr("kitchen"),
		Command:       ptr(device.ActionTurnOff),
	}))

	r, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, StateTrigger{DeviceID: "sensor", Key: "temperature", Operator: OpGt, Value: 25.0}, r.Trigger)
	assert.Equal(t, Action{DeviceID: "kitchen", Command: device.ActionTurnOff}, r.Action)

	f.SetTriggerValue("ON")
	r, err = f.Build()
	require.NoError(t, err)
	assert.Equal(t, "ON", r.Trigger.(StateTrigger).Value)
}

func TestForm_BrightnessValue(t *testing.T) {
	f := NewBuilder(&recordingWriter{}).OpenForCreate(testDevices, testGroups, "")
	f.SetName("Dim")
	f.SetTime("21:00")

	f.SetActionValue("10")
	assert.Empty(t, f.View().ActionValue, "hidden input ignores typing")

	require.NoError(t, f.SetCommand(device.ActionSetBrightness))
	assert.True(t, f.ValueVisible())
	assert.Empty(t, f.View().ActionValue)

	for _, bad := range []string{"", "255", "-1", "12.5", "bright"} {
		f.SetActionValue(bad)
		_, err := f.Build()
		assert.ErrorIs(t, err, device.ErrValidation, bad)
	}

	f.SetActionValue("128")
	r, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, 128.0, r.Action.Value)

	require.NoError(t, f.SetCommand(device.ActionTurnOn))
	assert.Empty(t, f.View().ActionValue)
	r, err = f.Build()
	require.NoError(t, err)
	assert.Nil(t, r.Action.Value)
}

func TestForm_BuildValidation(t *testing.T) {
	f := NewBuilder(&recordingWriter{}).OpenForCreate(testDevices, testGroups, "")

	_, err := f.Build()
	assert.ErrorIs(t, err, device.ErrValidation, "missing name")

	f.SetName("Night")
	f.SetTime("25:00")
	_, err = f.Build()
	assert.ErrorIs(t, err, device.ErrValidation, "bad time")

	require.NoError(t, f.SetTriggerType(TriggerState))
	f.SetTriggerValue("  ")
	_, err = f.Build()
	assert.ErrorIs(t, err, device.ErrValidation, "blank value")

	assert.ErrorIs(t, f.SetTriggerType("sunset"), device.ErrValidation)
	assert.ErrorIs(t, f.SetCommand("explode"), device.ErrValidation)
	assert.ErrorIs(t, f.SetActionTarget("ghost"), device.ErrValidation)
}

func TestForm_IDAssignedOnceOnCreate(t *testing.T) {
	f := NewBuilder(&recordingWriter{}).OpenForCreate(testDevices, testGroups, "")
	f.SetName("Wake up")
	f.SetTime("07:00")

	first, err := f.Build()
	require.NoError(t, err)
	assert.Contains(t, first.ID, "wake-up-")

	f.SetName("Renamed")
	second, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestOpenForEdit_TimeStateTimeRestoresFields(t *testing.T) {
	orig := Rule{
		ID: "wake-1", Name: "Wake", Active: false,
		Trigger: TimeTrigger{Time: "06:45"},
		Action:  Action{DeviceID: "lamp", Command: device.ActionSetBrightness, Value: 200.0},
	}
	f := NewBuilder(&recordingWriter{}).OpenForEdit(orig, testDevices, testGroups)
	assert.Equal(t, ModeEdit, f.Mode())
	assert.Equal(t, "200", f.View().ActionValue)

	require.NoError(t, f.SetTriggerType(TriggerState))
	assert.Equal(t, TriggerState, f.TriggerType())
	require.NoError(t, f.SetTriggerType(TriggerTime))

	r, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, orig, r)
}

func TestOpenForEdit_UnknownKeyIsKept(t *testing.T) {
	orig := Rule{
		ID: "hot", Name: "Hot", Active: true,
		Trigger: StateTrigger{DeviceID: "sensor", Key: "pressure", Operator: OpLte, Value: 990.0},
		Action:  Action{DeviceID: "kitchen", Command: device.ActionTurnOn},
	}
	f := NewBuilder(&recordingWriter{}).OpenForEdit(orig, testDevices, testGroups)
	assert.Contains(t, f.Keys(), "pressure")
	assert.Equal(t, "990", f.View().Value)

	r, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, orig, r)
}

func TestOpenForEdit_BrightnessSeedRestored(t *testing.T) {
	orig := Rule{
		ID: "dim", Name: "Dim", Active: true,
		Trigger: TimeTrigger{Time: "20:00"},
		Action:  Action{DeviceID: "lamp", Command: device.ActionSetBrightness, Value: 40.0},
	}
	f := NewBuilder(&recordingWriter{}).OpenForEdit(orig, testDevices, testGroups)

	require.NoError(t, f.SetCommand(device.ActionTurnOff))
	assert.Empty(t, f.View().ActionValue)
	require.NoError(t, f.SetCommand(device.ActionSetBrightness))
	assert.Equal(t, "40", f.View().ActionValue)
}

func TestCreateAndEditConverge(t *testing.T) {
	b := NewBuilder(&recordingWriter{})
	in := Input{
		Name:          ptr("Humid"),
		Active:        ptr(true),
		TriggerType:   ptr("state"),
		TriggerDevice: ptr("sensor"),
		Key:           ptr("humidity"),
		Operator:      ptr("gte"),
		Value:         ptr("70"),
		Target:        ptr("lamp"),
		Command:       ptr(device.ActionSetBrightness),
		ActionValue:   ptr("90"),
	}

	create := b.OpenForCreate(testDevices, testGroups, "")
	require.NoError(t, create.Apply(in))
	created, err := create.Build()
	require.NoError(t, err)

	edit := b.OpenForEdit(created, testDevices, testGroups)
	require.NoError(t, edit.Apply(in))
	edited, err := edit.Build()
	require.NoError(t, err)

	assert.Equal(t, created, edited)
}

func TestApply_StaleKeyFallsBack(t *testing.T) {
	f := NewBuilder(&recordingWriter{}).OpenForCreate(testDevices, testGroups, "")
	require.NoError(t, f.Apply(Input{
		TriggerType:   ptr("state"),
		TriggerDevice: ptr("sensor"),
		Key:           ptr("brightness"),
	}))
	assert.Equal(t, StateKey, f.View().Key)
}

func TestApply_UnknownKeyRejected(t *testing.T) {
	f := NewBuilder(&recordingWriter{}).OpenForCreate(testDevices, testGroups, "")
	err := f.Apply(Input{
		TriggerType:   ptr("state"),
		TriggerDevice: ptr("sensor"),
		Key:           ptr("temprature"),
	})
	assert.ErrorIs(t, err, device.ErrValidation)

	require.NoError(t, f.SelectTriggerDevice("sensor"))
	assert.ErrorIs(t, f.Apply(Input{Key: ptr("brightness")}), device.ErrValidation)
	assert.Equal(t, StateKey, f.View().Key)
}

func TestSubmit(t *testing.T) {
	w := &recordingWriter{}
	b := NewBuilder(w)

	f := b.OpenForCreate(testDevices, testGroups, "lamp")
	f.SetName("Morning")
	f.SetTime("07:00")
	r, err := b.Submit(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, w.created, 1)
	assert.Equal(t, r, w.created[0])

	edit := b.OpenForEdit(r, testDevices, testGroups)
	edit.SetTime("07:30")
	_, err = b.Submit(context.Background(), edit)
	require.NoError(t, err)
	require.Len(t, w.updated, 1)
	assert.Equal(t, r.ID, w.updated[0].ID)
	assert.Equal(t, TimeTrigger{Time: "07:30"}, w.updated[0].Trigger)
}

func TestSubmit_CheckAndWriterErrors(t *testing.T) {
	boom := errors.New("boom")
	w := &recordingWriter{}
	b := NewBuilder(w, WithCheck(func(Rule) error { return boom }))

	f := b.OpenForCreate(testDevices, testGroups, "")
	f.SetName("x")
	f.SetTime("01:00")
	_, err := b.Submit(context.Background(), f)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, w.created)

	w.err = boom
	_, err = NewBuilder(w).Submit(context.Background(), f)
	assert.ErrorIs(t, err, boom)
}

func TestPrepareThenSave(t *testing.T) {
	w := &recordingWriter{}
	b := NewBuilder(w)

	f := b.OpenForCreate(testDevices, testGroups, "lamp")
	f.SetName("Evening")
	f.SetTime("19:00")
	r, err := b.Prepare(f)
	require.NoError(t, err)
	assert.Empty(t, w.created)
	assert.Equal(t, r.ID, f.RuleID())

	require.NoError(t, b.Save(context.Background(), f.Mode(), r))
	require.Len(t, w.created, 1)
	require.NoError(t, b.Save(context.Background(), ModeEdit, r))
	require.Len(t, w.updated, 1)
}
