// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/hemangsrr/Ward14VotingTracker/auth"
	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/models"
	"github.com/hemangsrr/Ward14VotingTracker/scope"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	Account   models.Account
	Volunteer *models.Volunteer
	Scope     scope.Scope
}

// NewActor resolves the scope for an account and its linked volunteer.
func NewActor(account models.Account, volunteer *models.Volunteer) *Actor {
	return &Actor{
		Account:   account,
		Volunteer: volunteer,
		Scope:     scope.Resolve(&account, volunteer),
	}
}

// IsAdmin reports whether the actor has the admin role.
func (a *Actor) IsAdmin() bool {
	return a.Account.Role == models.RoleAdmin
}

type actorKey struct{}

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor set by RequireAuth.
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(*Actor)
	return a, ok && a != nil
}

// RequireAuth loads the session's account, its linked volunteer and scope,
// and rejects anonymous or revoked sessions with 401. A request that already carries an
// actor is passed through.
func RequireAuth(conn *sql.DB, sessions *auth.Sessions, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFromContext(r.Context()); ok {
			next(w, r)
			return
		}

		sess, err := sessions.Load(w, r)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		account, err := db.GetAccount(conn, sess.AccountID)
		if errors.Is(err, db.ErrNotFound) {
			sessions.Destroy(w, r)
			ErrorResponse(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		if err != nil {
			slog.Error("failed to load session account", "error", err, "account_id", sess.AccountID)
			ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		if sess.Version != account.SessionVersion {
			sessions.Destroy(w, r)
			ErrorResponse(w, http.StatusUnauthorized, "Session has been revoked")
			return
		}

		if !account.IsActive {
			sessions.Destroy(w, r)
			slog.Info("dropped session of inactive account", "account_id", account.ID)
			ErrorResponse(w, http.StatusUnauthorized, "Account is inactive")
			return
		}

		var volunteer *models.Volunteer
		v, err := db.GetVolunteerByAccount(conn, account.ID)
		switch {
		case err == nil:
			volunteer = &v
		case !errors.Is(err, db.ErrNotFound):
			slog.Error("failed to load linked volunteer", "error", err, "account_id", account.ID)
			ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		next(w, r.WithContext(WithActor(r.Context(), NewActor(account, volunteer))))
	}
}

// RequireRole rejects actors whose role is not listed with 403. It must run
// inside RequireAuth.
func RequireRole(next http.HandlerFunc, message string, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			ErrorResponse(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		if !slices.Contains(roles, actor.Account.Role) {
			ErrorResponse(w, http.StatusForbidden, message)
			return
		}
		next(w, r)
	}
}
