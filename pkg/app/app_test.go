package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hubpanel/pkg/config"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/hub/hubtest"
	"github.com/urmzd/hubpanel/pkg/view"
)

func TestOpen_NoHubUsesNullGateway(t *testing.T) {
	a, err := Open(context.Background(), Options{DBPath: filepath.Join(t.TempDir(), "panel.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.False(t, a.Panel.Configured())
	assert.Equal(t, "default", a.Profile.Profile.Name)
	assert.Equal(t, "0.0.0.0:3000", a.ListenAddress(nil))
	assert.Equal(t, ":8080", a.ListenAddress(&config.Config{Listen: ":8080"}))
}

func TestOpen_ConfigOverridesStoredSettings(t *testing.T) {
	h := hubtest.New(t)
	h.SetDevices(device.Device{ID: "d1", Name: "Lamp", Type: device.TypeLight, State: device.State{"state": "OFF"}})

	cfg := &config.Config{HubURL: h.URL(), LogLines: 25, PairingWindow: 2 * time.Minute}
	a, err := Open(context.Background(), Options{
		DBPath:  filepath.Join(t.TempDir(), "panel.db"),
		Profile: "kitchen",
		Config:  cfg,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.True(t, a.Panel.Configured())
	assert.Equal(t, "kitchen", a.Profile.Profile.Name)
	assert.Equal(t, 25, a.Panel.Settings().LogLines)
	assert.Equal(t, 2*time.Minute, a.Panel.Settings().PairingWindow)
	assert.Len(t, a.Panel.Page().Devices, 1)
}

func TestOpen_RestoresViewState(t *testing.T) {
	h := hubtest.New(t)
	h.SetGroups()
	path := filepath.Join(t.TempDir(), "panel.db")
	cfg := &config.Config{HubURL: h.URL()}
	ctx := context.Background()

	a, err := Open(ctx, Options{DBPath: path, Config: cfg})
	require.NoError(t, err)
	_, err = a.Panel.Navigate(ctx, view.Target{Screen: view.ScreenGroups})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	a, err = Open(ctx, Options{DBPath: path, Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	assert.Equal(t, view.ScreenGroups, a.Panel.State().Screen)
}
