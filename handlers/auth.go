// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hemangsrr/Ward14VotingTracker/auth"
	"github.com/hemangsrr/Ward14VotingTracker/cliparse"
	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/middleware"
	"github.com/hemangsrr/Ward14VotingTracker/models"
)

type AuthHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *auth.Sessions
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config, sessions *auth.Sessions) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, sessions: sessions}
}

// currentUser renders the actor the way the frontend expects it.
func currentUser(actor *middleware.Actor) models.CurrentUserResponse {
	resp := models.CurrentUserResponse{
		Account:    actor.Account,
		IsReadOnly: actor.Scope.ReadOnly(),
	}
	if v := actor.Volunteer; v != nil {
		resp.Volunteer = &models.VolunteerSummary{
			ID:          v.ID,
			VolunteerID: v.VolunteerID,
			Name:        v.Name,
			Level:       v.Level,
			IsReadOnly:  v.Level == models.LevelOne,
		}
	}
	return resp
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Username == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	account, err := auth.Authenticate(h.db, req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountInactive) {
		slog.Info("login rejected", "username", req.Username, "remote", middleware.GetClientIP(r), "reason", err)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		slog.Error("failed to authenticate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var volunteer *models.Volunteer
	v, err := db.GetVolunteerByAccount(h.db, account.ID)
	if err == nil {
		volunteer = &v
	} else if !errors.Is(err, db.ErrNotFound) {
		slog.Error("failed to load linked volunteer", "error", err, "account_id", account.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	sess := auth.Session{AccountID: account.ID, Version: account.SessionVersion}
	if err := h.sessions.Create(w, r, sess); err != nil {
		slog.Error("failed to create session", "error", err, "account_id", account.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("login", "account_id", account.ID, "role", account.Role)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Message: "Login successful",
		User:    currentUser(middleware.NewActor(account, volunteer)),
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if actor, ok := middleware.ActorFromContext(r.Context()); ok {
		if err := db.BumpSessionVersion(h.db, actor.Account.ID); err != nil && !errors.Is(err, db.ErrNotFound) {
			slog.Error("failed to revoke sessions", "error", err, "account_id", actor.Account.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
			return
		}
		slog.Info("logout", "account_id", actor.Account.ID)
	}

	err := h.sessions.Destroy(w, r)
	if err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
		slog.Error("failed to destroy session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Logout successful"})
}

// CurrentUser handles GET /auth/user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, currentUser(actor))
}
