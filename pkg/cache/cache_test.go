package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/hub"
	"github.com/urmzd/hubpanel/pkg/hub/hubtest"
	"github.com/urmzd/hubpanel/pkg/rule"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

// gatedSource hands out device lists in the order the test releases them.
type gatedSource struct {
	mu    sync.Mutex
	calls int
	gates []chan []device.Device
}

func (s *gatedSource) ListDevices(ctx context.Context) ([]device.Device, error) {
	s.mu.Lock()
	gate := s.gates[s.calls]
	s.calls++
	s.mu.Unlock()
	return <-gate, nil
}

func (s *gatedSource) ListGroups(context.Context) ([]device.Group, error) { return nil, nil }
func (s *gatedSource) ListRules(context.Context) ([]rule.Rule, error)    { return nil, nil }

func TestCache_RefreshReplacesWholesale(t *testing.T) {
	h := hubtest.New(t)
	h.SetDevices(device.Device{ID: "d1", Name: "One"}, device.Device{ID: "d2", Name: "Two"})
	c := New(hub.NewClient(h.URL()))
	ctx := context.Background()

	_, ok := c.Device("d1")
	assert.False(t, ok, "empty before first refresh")

	devices, err := c.RefreshDevices(ctx)
	require.NoError(t, err)
	assert.Len(t, devices, 2)

	h.SetDevices(device.Device{ID: "d2", Name: "Two"})
	_, err = c.RefreshDevices(ctx)
	require.NoError(t, err)

	_, ok = c.Device("d1")
	assert.False(t, ok)
	d, ok := c.Device("d2")
	require.True(t, ok)
	assert.Equal(t, "Two", d.Name)
	assert.False(t, c.LoadedAt(KindDevices).IsZero())
}

func TestCache_LookupsNeverFail(t *testing.T) {
	c := New(hub.NewNullGateway())
	require.NoError(t, c.Refresh(context.Background(), KindDevices, KindGroups, KindRules))

	_, ok := c.Device("missing")
	assert.False(t, ok)
	_, ok = c.Group("missing")
	assert.False(t, ok)
	_, ok = c.Rule("missing")
	assert.False(t, ok)
}

func TestCache_StaleResponseDiscarded(t *testing.T) {
	src := &gatedSource{gates: []chan []device.Device{make(chan []device.Device), make(chan []device.Device)}}
	c := New(src)
	ctx := context.Background()

	older := make(chan error, 1)
	go func() {
		_, err := c.RefreshDevices(ctx)
		older <- err
	}()
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.calls == 1
	}, timeout, tick)

	newer := make(chan error, 1)
	go func() {
		_, err := c.RefreshDevices(ctx)
		newer <- err
	}()
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.calls == 2
	}, timeout, tick)

	src.gates[1] <- []device.Device{{ID: "fresh"}}
	require.NoError(t, <-newer)

	src.gates[0] <- []device.Device{{ID: "old"}}
	err := <-older
	assert.ErrorIs(t, err, device.ErrStale)
	assert.True(t, IsStale(err))

	_, ok := c.Device("fresh")
	assert.True(t, ok)
	_, ok = c.Device("old")
	assert.False(t, ok)
}

func TestCache_ErrorKeepsSnapshot(t *testing.T) {
	h := hubtest.New(t)
	h.SetGroups(device.Group{ID: "g1", Name: "Hall"})
	c := New(hub.NewClient(h.URL()))
	ctx := context.Background()

	_, err := c.RefreshGroups(ctx)
	require.NoError(t, err)

	h.Fail("GET /groups", 503)
	_, err = c.RefreshGroups(ctx)
	var rej *device.RejectionError
	require.True(t, errors.As(err, &rej))

	g, ok := c.Group("g1")
	require.True(t, ok)
	assert.Equal(t, "Hall", g.Name)
}

func TestSnapshot_Name(t *testing.T) {
	s := Snapshot{
		Devices: []device.Device{{ID: "d1", Name: "Lamp"}},
		Groups:  []device.Group{{ID: "g1", Name: "Kitchen"}},
	}
	assert.Equal(t, "Lamp", s.Name("d1"))
	assert.Equal(t, "Kitchen", s.Name("g1"))
	assert.Equal(t, "ghost", s.Name("ghost"))
}

func TestCache_SnapshotIsCopy(t *testing.T) {
	h := hubtest.New(t)
	h.SetRules(rule.Rule{ID: "r1", Name: "R", Active: true, Trigger: rule.TimeTrigger{Time: "05:00"}})
	c := New(hub.NewClient(h.URL()))
	require.NoError(t, c.Refresh(context.Background(), KindRules))

	snap := c.Snapshot()
	require.Len(t, snap.Rules, 1)
	snap.Rules[0].Name = "changed"

	r, ok := c.Rule("r1")
	require.True(t, ok)
	assert.Equal(t, "R", r.Name)
}
