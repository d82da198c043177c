// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/models"
)

// Gate is the process-wide voting switch. Its row is created on first use
// and is never deleted.
type Gate struct {
	db *sql.DB

	mu    sync.Mutex
	ready bool
}

func NewGate(conn *sql.DB) *Gate {
	return &Gate{db: conn}
}

// ensure creates the settings row once. A failed attempt is retried on the
// next call.
func (g *Gate) ensure() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ready {
		return nil
	}
	if err := db.EnsureSettings(g.db); err != nil {
		return err
	}
	g.ready = true
	return nil
}

// Load returns the current settings.
func (g *Gate) Load() (models.Settings, error) {
	if err := g.ensure(); err != nil {
		return models.Settings{}, err
	}
	return db.GetSettings(g.db)
}

// SetVotingEnabled flips the switch and records the account that did it.
func (g *Gate) SetVotingEnabled(enabled bool, accountID *int64) (models.Settings, error) {
	s, err := db.SaveSettings(g.db, enabled, accountID)
	if err != nil {
		return models.Settings{}, err
	}

	by := int64(0)
	if accountID != nil {
		by = *accountID
	}
	slog.Info("voting gate changed", "voting_enabled", enabled, "updated_by", by)
	return s, nil
}

// VotingEnabled reads the switch through q, so the check can run inside the
// transaction that performs the update. A missing row reads as disabled.
func VotingEnabled(q db.Querier) (bool, error) {
	var enabled bool
	err := q.QueryRow(`SELECT voting_enabled FROM app_settings WHERE id = 1`).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read voting gate: %w", err)
	}
	return enabled, nil
}
