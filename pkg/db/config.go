package db

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoActiveProfile = errors.New("no active profile found")

// Config is the runtime configuration of the active profile.
type Config struct {
	Profile   *Profile
	APIServer *APIServer
	Hub       *HubSettings
}

// APIAddress returns the listen address of the web surface.
func (c *Config) APIAddress() string {
	if c.APIServer == nil {
		return "0.0.0.0:3000"
	}
	return c.APIServer.Address()
}

// Timezone returns the profile timezone.
func (c *Config) Timezone() string {
	if c.Profile == nil {
		return "UTC"
	}
	return c.Profile.Timezone
}

// ActiveConfig loads the configuration of the active profile.
func (db *DB) ActiveConfig(ctx context.Context) (*Config, error) {
	profile, err := db.Profiles().GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrNoActiveProfile
		}
		return nil, fmt.Errorf("failed to get active profile: %w", err)
	}

	config := &Config{Profile: profile}

	apiServer, err := db.APIServers().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrAPIServerNotFound) {
		return nil, fmt.Errorf("failed to get API server config: %w", err)
	}
	config.APIServer = apiServer

	hub, err := db.HubSettings().Get(ctx, profile.ID)
	switch {
	case errors.Is(err, ErrHubSettingsNotFound):
		hub = &HubSettings{ProfileID: profile.ID, LogLines: 100, LogPollSeconds: 5, PairingSeconds: 60, RefreshDelayMS: 500}
	case err != nil:
		return nil, fmt.Errorf("failed to get hub settings: %w", err)
	}
	config.Hub = hub

	return config, nil
}

// UseProfile makes the named profile active, creating it on first use.
func (db *DB) UseProfile(ctx context.Context, name string) (*Profile, error) {
	profiles := db.Profiles()
	p, err := profiles.GetByName(ctx, name)
	if errors.Is(err, ErrProfileNotFound) {
		p = &Profile{Name: name, Timezone: detectTimezone()}
		err = profiles.Create(ctx, p)
	}
	if err != nil {
		return nil, err
	}
	if err := profiles.SetActive(ctx, p.ID); err != nil {
		return nil, err
	}
	p.IsActive = true
	return p, nil
}
