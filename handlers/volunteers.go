// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hemangsrr/Ward14VotingTracker/cliparse"
	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/middleware"
	"github.com/hemangsrr/Ward14VotingTracker/models"
)

type VolunteerHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVolunteerHandler(db *sql.DB, cfg cliparse.Config) *VolunteerHandler {
	return &VolunteerHandler{db: db, cfg: cfg}
}

// saveError maps a SaveVolunteer failure to a response. It reports false
// for errors that are not the caller's fault.
func saveError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, db.ErrInvalidLevel):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Level must be level1 or level2")
	case errors.Is(err, db.ErrInvalidParent):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Parent volunteer must be a level 2 volunteer")
	case errors.Is(err, db.ErrHasChildren):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Volunteer still has level 1 volunteers assigned")
	case db.IsUniqueViolation(err):
		middleware.ErrorResponse(w, http.StatusConflict, "Volunteer number or user is already in use")
	default:
		return false
	}
	return true
}

// ListVolunteers handles GET /volunteers
func (h *VolunteerHandler) ListVolunteers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	var f models.VolunteerFilter
	if err := middleware.ParseQuery(r, &f); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.Level != "" && !models.IsValidLevel(f.Level) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Level must be level1 or level2")
		return
	}

	volunteers, err := db.ListVolunteers(h.db, f)
	if err != nil {
		slog.Error("failed to list volunteers", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, volunteers)
}

// GetVolunteer handles GET /volunteers/{id}
func (h *VolunteerHandler) GetVolunteer(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	detail, err := db.GetVolunteerDetail(h.db, id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Volunteer not found")
		return
	}
	if err != nil {
		slog.Error("failed to get volunteer", "error", err, "volunteer_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}

// CreateVolunteer handles POST /volunteers
func (h *VolunteerHandler) CreateVolunteer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req models.CreateVolunteerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.VolunteerID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "volunteer_id and name are required")
		return
	}

	v := models.NewVolunteer(req.VolunteerID, req.Name, req.Level, req.ParentID, req.AccountID)

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if err := db.SaveVolunteer(tx, &v); err != nil {
		if saveError(w, err) {
			return
		}
		slog.Error("failed to create volunteer", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create volunteer")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create volunteer")
		return
	}

	slog.Info("volunteer created", "volunteer_id", v.ID, "number", v.VolunteerID, "level", v.Level, "account_id", actor.Account.ID)

	detail, err := db.GetVolunteerDetail(h.db, v.ID)
	if err != nil {
		slog.Error("failed to reload volunteer", "error", err, "volunteer_id", v.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, detail)
}

// UpdateVolunteer handles PATCH /volunteers/{id}
func (h *VolunteerHandler) UpdateVolunteer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.UpdateVolunteerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	v, err := db.GetVolunteer(tx, id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Volunteer not found")
		return
	}
	if err != nil {
		slog.Error("failed to get volunteer", "error", err, "volunteer_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		v.Name = name
	}
	if req.Level != nil {
		v.Level = *req.Level
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	if req.ParentID.Set {
		v.ParentID = req.ParentID.Value
	}
	if req.AccountID.Set {
		v.AccountID = req.AccountID.Value
	}

	if err := db.SaveVolunteer(tx, &v); err != nil {
		if saveError(w, err) {
			return
		}
		slog.Error("failed to update volunteer", "error", err, "volunteer_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update volunteer")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update volunteer")
		return
	}

	slog.Info("volunteer updated", "volunteer_id", id, "account_id", actor.Account.ID)

	detail, err := db.GetVolunteerDetail(h.db, id)
	if err != nil {
		slog.Error("failed to reload volunteer", "error", err, "volunteer_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, detail)
}

// VolunteerVoters handles GET /volunteers/{id}/voters. The volunteer's voters
// are intersected with what the actor may see.
func (h *VolunteerHandler) VolunteerVoters(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var f models.VoterFilter
	if err := middleware.ParseQuery(r, &f); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := db.GetVolunteer(h.db, id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Volunteer not found")
		return
	}
	if err != nil {
		slog.Error("failed to get volunteer", "error", err, "volunteer_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	where := voterWhere(actor.Scope, &models.VoterFilter{
		HasVoted: f.HasVoted,
		Party:    f.Party,
		Status:   f.Status,
	})
	where.Add(levelColumn(v.Level)+" = ?", v.ID)

	voters, err := db.ListVoters(h.db, where, f.Ordering, 0, 0)
	if err != nil {
		slog.Error("failed to list volunteer voters", "error", err, "volunteer_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voters)
}

// canViewStats reports whether the actor may see a volunteer's statistics:
// admins and overview users see everyone, a volunteer sees itself, and a
// level2 volunteer sees its own level1 volunteers.
func canViewStats(actor *middleware.Actor, v *models.Volunteer) bool {
	switch actor.Account.Role {
	case models.RoleAdmin, models.RoleOverview:
		return true
	}
	self := actor.Volunteer
	if self == nil || !self.IsActive {
		return false
	}
	if self.ID == v.ID {
		return true
	}
	return self.Level == models.LevelTwo && v.ParentID != nil && *v.ParentID == self.ID
}

// VolunteerStats handles GET /volunteers/{id}/stats
func (h *VolunteerHandler) VolunteerStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	v, err := db.GetVolunteer(h.db, id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Volunteer not found")
		return
	}
	if err != nil {
		slog.Error("failed to get volunteer", "error", err, "volunteer_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !canViewStats(actor, &v) {
		middleware.ErrorResponse(w, http.StatusForbidden, "You do not have permission to view these statistics.")
		return
	}

	stats, err := ComputeVolunteerStats(h.db, v, h.cfg.FocusParty)
	if err != nil {
		slog.Error("failed to compute volunteer stats", "error", err, "volunteer_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}
