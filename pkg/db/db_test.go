package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hubpanel/pkg/view"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "panel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Prepare(context.Background()))
	return database
}

func TestPrepare_MigratesAndBootstraps(t *testing.T) {
	ctx := context.Background()
	database := openTest(t)

	version, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	// A second run is a no-op.
	require.NoError(t, database.Prepare(ctx))
	profiles, err := database.Profiles().List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "default", profiles[0].Name)
	assert.True(t, profiles[0].IsActive)
}

func TestActiveConfig_Defaults(t *testing.T) {
	database := openTest(t)

	cfg, err := database.ActiveConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3000", cfg.APIAddress())
	assert.Empty(t, cfg.Hub.HubURL)

	s := cfg.Hub.PanelSettings()
	assert.Equal(t, 100, s.LogLines)
	assert.Equal(t, 5*time.Second, s.LogPollInterval)
	assert.Equal(t, 60*time.Second, s.PairingWindow)
	assert.Equal(t, 500*time.Millisecond, s.RefreshDelay)
}

func TestHubSettings_Update(t *testing.T) {
	ctx := context.Background()
	database := openTest(t)
	cfg, err := database.ActiveConfig(ctx)
	require.NoError(t, err)

	h := cfg.Hub
	h.HubURL = "http://192.168.1.20:8000"
	h.MapURL = "http://192.168.1.20:8080"
	h.PairingSeconds = 120
	require.NoError(t, database.HubSettings().Update(ctx, h))

	got, err := database.HubSettings().Get(ctx, cfg.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.20:8000", got.HubURL)
	assert.Equal(t, 2*time.Minute, got.PanelSettings().PairingWindow)
	assert.Equal(t, "http://192.168.1.20:8080", got.PanelSettings().MapURL)
}

func TestAPIServers_Update(t *testing.T) {
	ctx := context.Background()
	database := openTest(t)
	cfg, err := database.ActiveConfig(ctx)
	require.NoError(t, err)

	a := cfg.APIServer
	a.Host, a.Port = "127.0.0.1", 9000
	require.NoError(t, database.APIServers().Update(ctx, a))

	cfg, err = database.ActiveConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.APIAddress())

	err = database.APIServers().Update(ctx, &APIServer{ProfileID: 999, Host: "x", Port: 1})
	assert.ErrorIs(t, err, ErrAPIServerNotFound)
}

func TestUseProfile(t *testing.T) {
	ctx := context.Background()
	database := openTest(t)

	p, err := database.UseProfile(ctx, "cabin")
	require.NoError(t, err)
	assert.True(t, p.IsActive)

	cfg, err := database.ActiveConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cabin", cfg.Profile.Name)
	assert.Equal(t, p.ID, cfg.Hub.ProfileID)

	_, err = database.UseProfile(ctx, "default")
	require.NoError(t, err)
	active, err := database.Profiles().GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", active.Name)

	profiles, err := database.Profiles().List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	assert.ErrorIs(t, database.Profiles().SetActive(ctx, 999), ErrProfileNotFound)
}

func TestViewStates(t *testing.T) {
	ctx := context.Background()
	database := openTest(t)
	cfg, err := database.ActiveConfig(ctx)
	require.NoError(t, err)
	store := database.ViewStates(cfg.Profile.ID)

	_, ok, err := store.LoadViewState(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := view.State{
		Screen:   view.ScreenDeviceDetail,
		Origin:   view.ScreenGroupDetail,
		DeviceID: "lamp",
		GroupID:  "kitchen",
		Epoch:    7,
	}
	require.NoError(t, store.SaveViewState(ctx, want))
	want.DeviceID = "fan"
	require.NoError(t, store.SaveViewState(ctx, want))

	got, ok, err := store.LoadViewState(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	other := database.ViewStates(cfg.Profile.ID + 1)
	_, ok, err = other.LoadViewState(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
