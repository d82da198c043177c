// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package importer

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
)

// Import kinds
const (
	KindVoters      = "voters"
	KindAssignments = "assignments"
	KindParty       = "party"
)

// Summary reports what a single import run did. A dry run reports the same
// counts a live run would.
type Summary struct {
	RunID     uuid.UUID `json:"run_id"`
	Kind      string    `json:"kind"`
	DryRun    bool      `json:"dry_run"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Unchanged int       `json:"unchanged"`
	Skipped   int       `json:"skipped"`
	Errors    int       `json:"errors"`

	NotFound  []string `json:"not_found"`
	Conflicts []string `json:"conflicts"`
	Warnings  []string `json:"warnings"`

	// Distribution counts voters per volunteer handle for assignment runs.
	Distribution map[string]int `json:"distribution,omitempty"`
}

func newSummary(kind string, dryRun bool) *Summary {
	return &Summary{
		RunID:     uuid.New(),
		Kind:      kind,
		DryRun:    dryRun,
		NotFound:  []string{},
		Conflicts: []string{},
		Warnings:  []string{},
	}
}

func (s *Summary) conflict(format string, args ...any) {
	s.Conflicts = append(s.Conflicts, fmt.Sprintf(format, args...))
}

func (s *Summary) warn(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

func (s *Summary) notFound(format string, args ...any) {
	s.NotFound = append(s.NotFound, fmt.Sprintf(format, args...))
}

// Log writes the run totals to the default logger.
func (s *Summary) Log() {
	attrs := []any{
		"run_id", s.RunID,
		"kind", s.Kind,
		"dry_run", s.DryRun,
		"created", s.Created,
		"updated", s.Updated,
		"unchanged", s.Unchanged,
		"skipped", s.Skipped,
		"errors", s.Errors,
		"not_found", len(s.NotFound),
		"conflicts", len(s.Conflicts),
	}
	if s.Distribution != nil {
		handles := make([]string, 0, len(s.Distribution))
		for h := range s.Distribution {
			handles = append(handles, h)
		}
		sort.Strings(handles)
		for _, h := range handles {
			attrs = append(attrs, "assigned_"+h, s.Distribution[h])
		}
	}
	slog.Info("import finished", attrs...)

	for _, w := range s.Warnings {
		slog.Warn("import warning", "run_id", s.RunID, "warning", w)
	}
}

// apply runs fn in one transaction. Dry runs always roll back, so a dry run
// performs every lookup and write a live run would and leaves no trace.
func apply(conn *sql.DB, s *Summary, fn func(tx *sql.Tx) error) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if s.DryRun {
		return nil
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s import: %w", s.Kind, err)
	}
	return nil
}
