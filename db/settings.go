// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hemangsrr/Ward14VotingTracker/models"
)

// EnsureSettings creates the settings row with voting disabled if it does not
// exist yet. An existing row is left untouched.
func EnsureSettings(q Querier) error {
	_, err := q.Exec(`
		INSERT INTO app_settings (id, voting_enabled, updated_at)
		VALUES (1, FALSE, $1)
		ON CONFLICT (id) DO NOTHING
	`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to init settings: %w", err)
	}
	return nil
}

// GetSettings returns the settings row. ErrNotFound is returned until
// EnsureSettings or SaveSettings has created it.
func GetSettings(q Querier) (models.Settings, error) {
	var s models.Settings
	err := q.QueryRow(`SELECT voting_enabled, updated_at, updated_by FROM app_settings WHERE id = 1`).
		Scan(&s.VotingEnabled, &s.UpdatedAt, &s.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Settings{}, ErrNotFound
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}
	return s, nil
}

// SaveSettings writes the voting flag and records who changed it.
func SaveSettings(q Querier, enabled bool, updatedBy *int64) (models.Settings, error) {
	now := time.Now()
	_, err := q.Exec(`
		INSERT INTO app_settings (id, voting_enabled, updated_at, updated_by)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET voting_enabled = excluded.voting_enabled, updated_at = excluded.updated_at, updated_by = excluded.updated_by
	`, enabled, now, updatedBy)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return models.Settings{VotingEnabled: enabled, UpdatedAt: now, UpdatedBy: updatedBy}, nil
}
