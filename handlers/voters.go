// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hemangsrr/Ward14VotingTracker/cliparse"
	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/middleware"
	"github.com/hemangsrr/Ward14VotingTracker/models"
	"github.com/hemangsrr/Ward14VotingTracker/scope"
	"github.com/hemangsrr/Ward14VotingTracker/settings"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type VoterHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoterHandler(db *sql.DB, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{db: db, cfg: cfg}
}

// voterWhere puts the scope condition first and intersects the filters.
func voterWhere(sc scope.Scope, f *models.VoterFilter) *db.Where {
	var w db.Where
	cond, args := sc.Condition()
	w.Add(cond, args...)

	if f.HasVoted != nil {
		w.Add("v.has_voted = ?", *f.HasVoted)
	}
	if f.Party != "" {
		w.Add("v.party = ?", f.Party)
	}
	if f.Status != "" {
		w.Add("v.status = ?", f.Status)
	}
	if f.Level1Volunteer != nil {
		w.Add("v.level1_volunteer_id = ?", *f.Level1Volunteer)
	}
	if f.Level2Volunteer != nil {
		w.Add("v.level2_volunteer_id = ?", *f.Level2Volunteer)
	}
	if f.Gender != "" {
		w.Add("v.gender = ?", f.Gender)
	}
	if f.MinAge != nil {
		w.Add("v.age >= ?", *f.MinAge)
	}
	if f.MaxAge != nil {
		w.Add("v.age <= ?", *f.MaxAge)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		w.Add(`(LOWER(v.name_en) LIKE ? OR LOWER(v.name_ml) LIKE ?
			OR LOWER(v.house_name_en) LIKE ? OR LOWER(v.house_name_ml) LIKE ?
			OR CAST(v.serial_no AS TEXT) LIKE ?)`, like, like, like, like, like)
	}
	return &w
}

// readOnlyMessage explains why an actor may not change voters.
func readOnlyMessage(actor *middleware.Actor) string {
	switch actor.Scope.Kind {
	case scope.KindLevel1:
		return "Level 1 volunteers have read-only access."
	case scope.KindAll:
		return "Overview users have read-only access."
	}
	return "You do not have permission to perform this action."
}

// ListVoters handles GET /voters
func (h *VoterHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var f models.VoterFilter
	if err := middleware.ParseQuery(r, &f); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}

	where := voterWhere(actor.Scope, &f)

	count, err := db.CountVoters(h.db, where)
	if err != nil {
		slog.Error("failed to count voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	voters, err := db.ListVoters(h.db, where, f.Ordering, f.PageSize, (f.Page-1)*f.PageSize)
	if err != nil {
		slog.Error("failed to list voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoterListResponse{
		Count:    count,
		Page:     f.Page,
		PageSize: f.PageSize,
		Results:  voters,
	})
}

// GetVoter handles GET /voters/{id}
func (h *VoterHandler) GetVoter(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	voter, err := db.GetVoter(h.db, id)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !actor.Scope.Allows(&voter)) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}
	if err != nil {
		slog.Error("failed to get voter", "error", err, "voter_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voter)
}

// updateError is a rejection with its HTTP status.
type updateError struct {
	status  int
	message string
}

func (e *updateError) Error() string { return e.message }

func reject(status int, format string, args ...any) error {
	return &updateError{status: status, message: fmt.Sprintf(format, args...)}
}

// checkVolunteer verifies that id names a volunteer of the given level.
func checkVolunteer(q db.Querier, id int64, level string) (models.Volunteer, error) {
	v, err := db.GetVolunteer(q, id)
	if errors.Is(err, db.ErrNotFound) {
		return v, reject(http.StatusBadRequest, "Volunteer %d does not exist", id)
	}
	if err != nil {
		return v, err
	}
	if v.Level != level {
		return v, reject(http.StatusBadRequest, "Volunteer %d is not a %s volunteer", id, level)
	}
	return v, nil
}

// buildVoterUpdate validates a request against the current row and the
// actor's rights, and returns the columns to write.
func buildVoterUpdate(q db.Querier, actor *middleware.Actor, voter *models.Voter, req *models.UpdateVoterRequest) (*db.Set, error) {
	var set db.Set

	if req.Status != nil {
		if !models.IsValidStatus(*req.Status) {
			return nil, reject(http.StatusBadRequest, "Invalid status %q", *req.Status)
		}
		set.Add("status", *req.Status)
	}
	if req.Party != nil {
		if !models.IsValidParty(*req.Party) {
			return nil, reject(http.StatusBadRequest, "Invalid party %q", *req.Party)
		}
		set.Add("party", *req.Party)
	}
	if req.PhoneNumber != nil {
		set.Add("phone_number", *req.PhoneNumber)
	}
	if req.Notes != nil {
		set.Add("notes", *req.Notes)
	}

	if req.Level2VolunteerID.Set {
		newID := req.Level2VolunteerID.Value
		if !actor.IsAdmin() && !sameID(newID, voter.Level2VolunteerID) {
			return nil, reject(http.StatusForbidden, "Level 2 volunteers cannot reassign voters to another level 2 volunteer.")
		}
		if newID != nil {
			if _, err := checkVolunteer(q, *newID, models.LevelTwo); err != nil {
				return nil, err
			}
		}
		set.Add("level2_volunteer_id", newID)
	}

	if req.Level1VolunteerID.Set {
		newID := req.Level1VolunteerID.Value
		if newID != nil {
			v, err := checkVolunteer(q, *newID, models.LevelOne)
			if err != nil {
				return nil, err
			}
			if !actor.IsAdmin() && (v.ParentID == nil || *v.ParentID != actor.Scope.VolunteerID) {
				return nil, reject(http.StatusForbidden, "Level 1 volunteer %d is not in your team.", *newID)
			}
		}
		set.Add("level1_volunteer_id", newID)
	}

	if req.HasVoted != nil {
		if *req.HasVoted != voter.HasVoted {
			if !actor.IsAdmin() {
				enabled, err := settings.VotingEnabled(q)
				if err != nil {
					return nil, err
				}
				if !enabled {
					return nil, reject(http.StatusForbidden, "Voting is not enabled yet.")
				}
			}
			if *req.HasVoted {
				set.Add("time_voted", time.Now())
			} else {
				set.Add("time_voted", nil)
			}
		}
		set.Add("has_voted", *req.HasVoted)
	}

	return &set, nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// UpdateVoter handles PUT and PATCH /voters/{id}. Only the fields present in
// the body are written.
func (h *VoterHandler) UpdateVoter(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if actor.Scope.ReadOnly() {
		middleware.ErrorResponse(w, http.StatusForbidden, readOnlyMessage(actor))
		return
	}

	var req models.UpdateVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Empty() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No fields to update")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	voter, err := db.GetVoter(tx, id)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !actor.Scope.Allows(&voter)) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}
	if err != nil {
		slog.Error("failed to get voter", "error", err, "voter_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	set, err := buildVoterUpdate(tx, actor, &voter, &req)
	var rejected *updateError
	if errors.As(err, &rejected) {
		middleware.ErrorResponse(w, rejected.status, rejected.message)
		return
	}
	if err != nil {
		slog.Error("failed to validate voter update", "error", err, "voter_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := db.UpdateVoter(tx, id, set); err != nil {
		slog.Error("failed to update voter", "error", err, "voter_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update voter")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update voter")
		return
	}

	slog.Info("voter updated", "voter_id", id, "account_id", actor.Account.ID, "has_voted", req.HasVoted != nil)

	updated, err := db.GetVoter(h.db, id)
	if err != nil {
		slog.Error("failed to reload voter", "error", err, "voter_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, updated)
}

// DeleteVoter handles DELETE /voters/{id}. Voters are never removed; the
// status becomes deleted.
func (h *VoterHandler) DeleteVoter(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if actor.Scope.ReadOnly() {
		middleware.ErrorResponse(w, http.StatusForbidden, readOnlyMessage(actor))
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	voter, err := db.GetVoter(tx, id)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !actor.Scope.Allows(&voter)) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}
	if err != nil {
		slog.Error("failed to get voter", "error", err, "voter_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var set db.Set
	set.Add("status", models.StatusDeleted)
	if err := db.UpdateVoter(tx, id, &set); err != nil {
		slog.Error("failed to delete voter", "error", err, "voter_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete voter")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete voter")
		return
	}

	slog.Info("voter marked deleted", "voter_id", id, "account_id", actor.Account.ID)
	w.WriteHeader(http.StatusNoContent)
}

// BulkUpdateVoted handles POST /voters/bulk_update_voted. It is an
// administrative correction: no per-row scoping and no voting gate.
func (h *VoterHandler) BulkUpdateVoted(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req models.BulkUpdateVotedRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.VoterIDs) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No voter IDs provided")
		return
	}

	hasVoted := true
	if req.HasVoted != nil {
		hasVoted = *req.HasVoted
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	updated, err := db.BulkSetVoted(tx, req.VoterIDs, hasVoted)
	if err != nil {
		slog.Error("failed to bulk update voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update voters")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update voters")
		return
	}

	slog.Info("bulk voted update", "account_id", actor.Account.ID, "has_voted", hasVoted, "updated", updated)

	middleware.JSONResponse(w, http.StatusOK, models.BulkUpdateVotedResponse{
		Message:      fmt.Sprintf("Updated %d voters", updated),
		UpdatedCount: updated,
	})
}
