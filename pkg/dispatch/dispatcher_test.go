package dispatch

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/hub"
	"github.com/urmzd/hubpanel/pkg/hub/hubtest"
	"github.com/urmzd/hubpanel/pkg/notice"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) rerender(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func setup(t *testing.T) (*hubtest.Hub, *Dispatcher, *recorder, *notice.Board) {
	t.Helper()
	h := hubtest.New(t)
	h.SetDevices(
		device.Device{ID: "d1", Name: "Lamp", Type: device.TypeLight, State: device.State{"state": "OFF"}},
		device.Device{ID: "d2", Name: "Plug", Type: device.TypeSocket, State: device.State{"state": "ON"}},
	)
	rec := &recorder{}
	board := notice.NewBoard(time.Minute)
	d := New(hub.NewClient(h.URL()), board, WithRerender(rec.rerender), WithRefreshDelay(0))
	return h, d, rec, board
}

func TestInverse(t *testing.T) {
	assert.Equal(t, device.ActionTurnOff, Inverse(device.PowerOn))
	assert.Equal(t, device.ActionTurnOn, Inverse(device.PowerOff))
	assert.Equal(t, device.ActionTurnOn, Inverse(device.PowerUnknown))
	assert.Equal(t, device.ActionTurnOn, Inverse(""))
}

func TestToggle_OffDeviceTurnsOn(t *testing.T) {
	h, d, rec, _ := setup(t)

	action, err := d.Toggle(context.Background(), "d1", device.PowerOff)
	require.NoError(t, err)
	assert.Equal(t, device.ActionTurnOn, action)
	assert.Equal(t, []hubtest.Action{{DeviceID: "d1", Action: device.ActionTurnOn}}, h.Actions())
	assert.Equal(t, []Event{{Op: "toggle", Kind: cache.KindDevices, ID: "d1"}}, rec.all())
}

func TestToggle_Alternates(t *testing.T) {
	h, d, _, _ := setup(t)
	ctx := context.Background()

	var sent []string
	for i := 0; i < 4; i++ {
		cur, ok := h.Device("d1")
		require.True(t, ok)
		action, err := d.Toggle(ctx, "d1", cur.Power())
		require.NoError(t, err)
		sent = append(sent, action)
	}
	assert.Equal(t, []string{
		device.ActionTurnOn, device.ActionTurnOff, device.ActionTurnOn, device.ActionTurnOff,
	}, sent)
}

func TestToggleGroup_SingleCallWithGroupID(t *testing.T) {
	h, d, rec, _ := setup(t)
	h.SetGroups(device.Group{ID: "kitchen", Name: "Kitchen", Members: []string{"d1", "d2"}})

	require.NoError(t, d.ToggleGroup(context.Background(), "kitchen", device.ActionTurnOff))
	assert.Equal(t, []hubtest.Action{{DeviceID: "kitchen", Action: device.ActionTurnOff}}, h.Actions())
	require.Len(t, rec.all(), 1)

	assert.ErrorIs(t, d.ToggleGroup(context.Background(), "kitchen", "explode"), device.ErrValidation)
}

func TestToggle_FailurePostsNoticeAndSkipsRerender(t *testing.T) {
	h, d, rec, board := setup(t)
	h.Fail("POST /devices/action", http.StatusServiceUnavailable)

	_, err := d.Toggle(context.Background(), "d1", device.PowerOff)
	require.Error(t, err)
	assert.Empty(t, rec.all())
	assert.Equal(t, []string{"Toggle failed: forced failure for POST /devices/action"}, board.Messages())
}

func TestToggle_WaitsBeforeRefresh(t *testing.T) {
	h := hubtest.New(t)
	h.SetDevices(device.Device{ID: "d1"})

	var at time.Time
	d := New(hub.NewClient(h.URL()), notice.NewBoard(time.Minute),
		WithRefreshDelay(30*time.Millisecond),
		WithRerender(func(context.Context, Event) { at = time.Now() }),
	)
	start := time.Now()
	_, err := d.Toggle(context.Background(), "d1", "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, at.Sub(start), 30*time.Millisecond)
}

func TestRenameAndDelete(t *testing.T) {
	h, d, rec, board := setup(t)
	ctx := context.Background()

	require.NoError(t, d.Rename(ctx, "d1", "  Desk lamp "))
	got, _ := h.Device("d1")
	assert.Equal(t, "Desk lamp", got.Name)

	assert.ErrorIs(t, d.Rename(ctx, "d1", "   "), device.ErrValidation)

	require.NoError(t, d.Delete(ctx, "d2"))
	_, ok := h.Device("d2")
	assert.False(t, ok)

	err := d.Delete(ctx, "d2")
	assert.ErrorIs(t, err, device.ErrNotFound)

	assert.Equal(t, []Event{
		{Op: "rename", Kind: cache.KindDevices, ID: "d1"},
		{Op: "delete", Kind: cache.KindDevices, ID: "d2", Deleted: true},
	}, rec.all())
	assert.Len(t, board.Active(), 2)
}

func TestGroupLifecycle(t *testing.T) {
	h, d, rec, _ := setup(t)
	ctx := context.Background()

	g, err := d.CreateGroup(ctx, "Kitchen", []string{"d1", "d2", "d1", " "})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(g.ID, "kitchen-"))
	assert.Equal(t, []string{"d1", "d2"}, g.Members)
	require.Len(t, h.Groups(), 1)

	require.NoError(t, d.RemoveMember(ctx, g.ID, "d1"))
	require.NoError(t, d.AddMember(ctx, g.ID, "d1"))
	assert.Equal(t, []string{"d2", "d1"}, h.Groups()[0].Members)

	assert.ErrorIs(t, d.AddMember(ctx, g.ID, ""), device.ErrValidation)

	require.NoError(t, d.DeleteGroup(ctx, g.ID))
	assert.Empty(t, h.Groups())

	events := rec.all()
	require.Len(t, events, 4)
	assert.Equal(t, Event{Op: "delete_group", Kind: cache.KindGroups, ID: g.ID, Deleted: true}, events[3])

	_, err = d.CreateGroup(ctx, " ", nil)
	assert.ErrorIs(t, err, device.ErrValidation)
}

func TestSetBrightness(t *testing.T) {
	h, d, _, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, d.SetBrightness(ctx, "d1", 128))
	got, _ := h.Device("d1")
	assert.Equal(t, 128.0, got.State["brightness"])

	assert.ErrorIs(t, d.SetBrightness(ctx, "d1", 255), device.ErrValidation)
	assert.Len(t, h.Actions(), 1)
}

func TestDeleteRule_NotConnected(t *testing.T) {
	board := notice.NewBoard(time.Minute)
	d := New(hub.NewNullGateway(), board)

	err := d.DeleteRule(context.Background(), "r1")
	assert.ErrorIs(t, err, device.ErrNotConnected)
	assert.Equal(t, []string{"Delete rule failed: No hub configured"}, board.Messages())
}
