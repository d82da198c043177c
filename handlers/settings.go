// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/hemangsrr/Ward14VotingTracker/cliparse"
	"github.com/hemangsrr/Ward14VotingTracker/middleware"
	"github.com/hemangsrr/Ward14VotingTracker/models"
	"github.com/hemangsrr/Ward14VotingTracker/settings"
)

type SettingsHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	gate *settings.Gate
}

func NewSettingsHandler(db *sql.DB, cfg cliparse.Config, gate *settings.Gate) *SettingsHandler {
	return &SettingsHandler{db: db, cfg: cfg, gate: gate}
}

// GetSettings handles GET /settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.gate.Load()
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// updated_by is for auditing only
	s.UpdatedBy = nil
	middleware.JSONResponse(w, http.StatusOK, s)
}

// UpdateSettings handles PUT /settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req models.UpdateSettingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.VotingEnabled == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_enabled is required")
		return
	}

	s, err := h.gate.SetVotingEnabled(*req.VotingEnabled, &actor.Account.ID)
	if err != nil {
		slog.Error("failed to update settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s)
}
