package view

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/device"
)

func mustNavigate(t *testing.T, r *Router, target Target) State {
	t.Helper()
	s, err := r.Navigate(target)
	require.NoError(t, err)
	return s
}

func TestRouter_InitialState(t *testing.T) {
	r := NewRouter()
	assert.Equal(t, ScreenDevices, r.State().Screen)
	assert.Zero(t, r.State().Epoch)
}

func TestRouter_DeviceDetailFromGroupDetailReturnsToGroup(t *testing.T) {
	r := NewRouter()
	mustNavigate(t, r, Target{Screen: ScreenGroups})
	mustNavigate(t, r, Target{Screen: ScreenGroupDetail, ID: "kitchen"})

	s := mustNavigate(t, r, Target{Screen: ScreenDeviceDetail, ID: "d1"})
	assert.Equal(t, ScreenGroupDetail, s.Origin)
	assert.Equal(t, "kitchen", s.GroupID)

	s, ok := r.Back()
	require.True(t, ok)
	assert.Equal(t, ScreenGroupDetail, s.Screen)
	assert.Equal(t, "kitchen", s.GroupID)
	assert.Empty(t, s.DeviceID)
}

func TestRouter_DeviceDetailFromDevicesReturnsToList(t *testing.T) {
	r := NewRouter()
	s := mustNavigate(t, r, Target{Screen: ScreenDeviceDetail, ID: "d1"})
	assert.Equal(t, ScreenDevices, s.Origin)

	s, ok := r.Back()
	require.True(t, ok)
	assert.Equal(t, ScreenDevices, s.Screen)
}

func TestRouter_OtherOriginsFallBackToDevices(t *testing.T) {
	r := NewRouter()
	mustNavigate(t, r, Target{Screen: ScreenRules})
	s := mustNavigate(t, r, Target{Screen: ScreenDeviceDetail, ID: "d1"})
	assert.Equal(t, ScreenDevices, s.Origin)
	assert.Empty(t, s.GroupID)
}

func TestRouter_FocusClearedOnLeave(t *testing.T) {
	r := NewRouter()
	mustNavigate(t, r, Target{Screen: ScreenGroupDetail, ID: "g1"})
	mustNavigate(t, r, Target{Screen: ScreenRuleDetail, ID: "r1"})
	s := mustNavigate(t, r, Target{Screen: ScreenLogs})
	assert.Equal(t, State{Screen: ScreenLogs, Epoch: 3}, s)
}

func TestRouter_NavigateRejectsBadTargets(t *testing.T) {
	r := NewRouter()
	_, err := r.Navigate(Target{Screen: "kitchen"})
	assert.ErrorIs(t, err, device.ErrValidation)
	_, err = r.Navigate(Target{Screen: ScreenDeviceDetail})
	assert.ErrorIs(t, err, device.ErrValidation)
	assert.Equal(t, Initial(), r.State())
}

func TestRouter_BackOnTopLevelIsNoop(t *testing.T) {
	r := NewRouter()
	s, ok := r.Back()
	assert.False(t, ok)
	assert.Equal(t, Initial(), s)
}

func TestRouter_EpochGuardsBanner(t *testing.T) {
	r := NewRouter()
	old := mustNavigate(t, r, Target{Screen: ScreenRules})
	assert.True(t, r.Current(old.Epoch))

	cur := mustNavigate(t, r, Target{Screen: ScreenGroups})
	assert.False(t, r.Current(old.Epoch))

	assert.False(t, r.SetBanner(old.Epoch, "late failure"))
	assert.Empty(t, r.State().Banner)

	assert.True(t, r.SetBanner(cur.Epoch, "Connection to the hub failed"))
	assert.Equal(t, "Connection to the hub failed", r.State().Banner)

	s := mustNavigate(t, r, Target{Screen: ScreenDevices})
	assert.Empty(t, s.Banner)
}

func TestRouter_ForgetDeletedEntities(t *testing.T) {
	r := NewRouter()
	mustNavigate(t, r, Target{Screen: ScreenGroupDetail, ID: "g1"})
	mustNavigate(t, r, Target{Screen: ScreenDeviceDetail, ID: "d1"})

	s, moved := r.Forget(cache.KindGroups, "g1")
	assert.False(t, moved)
	assert.Equal(t, ScreenDeviceDetail, s.Screen)
	assert.Equal(t, ScreenDevices, s.Origin)
	assert.Empty(t, s.GroupID)

	s, moved = r.Forget(cache.KindDevices, "other")
	assert.False(t, moved)
	assert.Equal(t, "d1", s.DeviceID)

	s, moved = r.Forget(cache.KindDevices, "d1")
	assert.True(t, moved)
	assert.Equal(t, ScreenDevices, s.Screen)

	mustNavigate(t, r, Target{Screen: ScreenRuleDetail, ID: "r1"})
	s, moved = r.Forget(cache.KindRules, "r1")
	assert.True(t, moved)
	assert.Equal(t, ScreenRules, s.Screen)
}

func TestRouter_RuleDetailPrefillOnlyForCreate(t *testing.T) {
	r := NewRouter()
	s := mustNavigate(t, r, Target{Screen: ScreenRuleDetail, Prefill: "d1"})
	assert.True(t, s.Creating())
	assert.Equal(t, "d1", s.Prefill)

	s = mustNavigate(t, r, Target{Screen: ScreenRuleDetail, ID: "r1", Prefill: "d1"})
	assert.False(t, s.Creating())
	assert.Empty(t, s.Prefill)
}

func TestRouter_RestoreAndSerialize(t *testing.T) {
	saved := State{Screen: ScreenDeviceDetail, Origin: ScreenGroupDetail, GroupID: "g1", DeviceID: "d1", Epoch: 40, Banner: "old"}
	data, err := json.Marshal(saved)
	require.NoError(t, err)

	var decoded State
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, saved, decoded)

	r := NewRouter()
	require.True(t, r.Restore(decoded))
	s := r.State()
	assert.Equal(t, "d1", s.DeviceID)
	assert.Equal(t, uint64(1), s.Epoch)
	assert.Empty(t, s.Banner)

	assert.False(t, r.Restore(State{Screen: ScreenGroupDetail}))
	assert.Equal(t, s, r.State())
}

func TestRouter_ConcurrentNavigationIsAtomic(t *testing.T) {
	r := NewRouter()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = r.Navigate(Target{Screen: ScreenGroupDetail, ID: "g"})
		}()
		go func() {
			defer wg.Done()
			s := r.State()
			if s.Screen == ScreenGroupDetail {
				assert.Equal(t, "g", s.GroupID)
			} else {
				assert.Empty(t, s.GroupID)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), r.State().Epoch)
}
