package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urmzd/hubpanel/pkg/view"
)

// ViewStateStore persists the panel's View-State for one profile.
type ViewStateStore struct {
	db        *DB
	profileID int64
}

// ViewStates returns the View-State store of a profile.
func (db *DB) ViewStates(profileID int64) *ViewStateStore {
	return &ViewStateStore{db: db, profileID: profileID}
}

// SaveViewState replaces the stored state.
func (s *ViewStateStore) SaveViewState(ctx context.Context, st view.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode view state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO view_state (profile_id, state) VALUES (?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET state = excluded.state, updated_at = datetime('now')
	`, s.profileID, string(data))
	return err
}

// LoadViewState returns the stored state; ok is false when none was saved.
func (s *ViewStateStore) LoadViewState(ctx context.Context) (view.State, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM view_state WHERE profile_id = ?`, s.profileID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return view.State{}, false, nil
	}
	if err != nil {
		return view.State{}, false, err
	}
	var st view.State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return view.State{}, false, fmt.Errorf("failed to decode view state: %w", err)
	}
	return st, true, nil
}
