package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/urmzd/hubpanel/pkg/panel"
)

var ErrHubSettingsNotFound = errors.New("hub settings not found")

// HubSettings locate the hub and tune the panel for one profile.
type HubSettings struct {
	ProfileID      int64
	HubURL         string
	MapURL         string
	LogLines       int
	LogPollSeconds int
	PairingSeconds int
	RefreshDelayMS int
	UpdatedAt      time.Time
}

// PanelSettings converts the stored values, keeping panel defaults for
// anything non-positive.
func (h *HubSettings) PanelSettings() panel.Settings {
	s := panel.DefaultSettings()
	s.MapURL = h.MapURL
	if h.LogLines > 0 {
		s.LogLines = h.LogLines
	}
	if h.LogPollSeconds > 0 {
		s.LogPollInterval = time.Duration(h.LogPollSeconds) * time.Second
	}
	if h.PairingSeconds > 0 {
		s.PairingWindow = time.Duration(h.PairingSeconds) * time.Second
	}
	if h.RefreshDelayMS >= 0 {
		s.RefreshDelay = time.Duration(h.RefreshDelayMS) * time.Millisecond
	}
	return s
}

// HubSettingsStore reads and writes hub settings.
type HubSettingsStore interface {
	Get(ctx context.Context, profileID int64) (*HubSettings, error)
	Update(ctx context.Context, h *HubSettings) error
}

// HubSettings returns a HubSettingsStore for this database.
func (db *DB) HubSettings() HubSettingsStore {
	return &hubSettingsStore{db: db}
}

type hubSettingsStore struct {
	db *DB
}

func (s *hubSettingsStore) Get(ctx context.Context, profileID int64) (*HubSettings, error) {
	h := &HubSettings{}
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT profile_id, hub_url, map_url, log_lines, log_poll_seconds,
		       pairing_seconds, refresh_delay_ms, updated_at
		FROM hub_settings WHERE profile_id = ?
	`, profileID).Scan(&h.ProfileID, &h.HubURL, &h.MapURL, &h.LogLines,
		&h.LogPollSeconds, &h.PairingSeconds, &h.RefreshDelayMS, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHubSettingsNotFound
	}
	if err != nil {
		return nil, err
	}
	h.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return h, nil
}

func (s *hubSettingsStore) Update(ctx context.Context, h *HubSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hub_settings (profile_id, hub_url, map_url, log_lines,
		                          log_poll_seconds, pairing_seconds, refresh_delay_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			hub_url = excluded.hub_url,
			map_url = excluded.map_url,
			log_lines = excluded.log_lines,
			log_poll_seconds = excluded.log_poll_seconds,
			pairing_seconds = excluded.pairing_seconds,
			refresh_delay_ms = excluded.refresh_delay_ms,
			updated_at = datetime('now')
	`, h.ProfileID, h.HubURL, h.MapURL, h.LogLines, h.LogPollSeconds, h.PairingSeconds, h.RefreshDelayMS)
	return err
}
