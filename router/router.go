// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/hemangsrr/Ward14VotingTracker/auth"
	"github.com/hemangsrr/Ward14VotingTracker/cliparse"
	"github.com/hemangsrr/Ward14VotingTracker/handlers"
	"github.com/hemangsrr/Ward14VotingTracker/middleware"
	"github.com/hemangsrr/Ward14VotingTracker/models"
	"github.com/hemangsrr/Ward14VotingTracker/settings"
)

const (
	adminOnly     = "Only administrators can perform this action."
	dashboardOnly = "Dashboard is only accessible to administrators and overview users."
)

func NewRouter(db *sql.DB, cfg cliparse.Config, sessions *auth.Sessions, gate *settings.Gate) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, sessions)
	settingsHandler := handlers.NewSettingsHandler(db, cfg, gate)
	dashboardHandler := handlers.NewDashboardHandler(db, cfg)
	voterHandler := handlers.NewVoterHandler(db, cfg)
	volunteerHandler := handlers.NewVolunteerHandler(db, cfg)

	public := middleware.WithLogging
	session := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(db, sessions, h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return session(middleware.RequireRole(h, adminOnly, models.RoleAdmin))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, models.HealthResponse{Status: "healthy", Service: cfg.ServiceName})
	})

	// Authentication
	mux.HandleFunc("POST /auth/login", public(authHandler.Login))
	mux.HandleFunc("POST /auth/logout", session(authHandler.Logout))
	mux.HandleFunc("GET /auth/user", session(authHandler.CurrentUser))

	// Voting gate
	mux.HandleFunc("GET /settings", public(settingsHandler.GetSettings))
	mux.HandleFunc("PUT /settings", admin(settingsHandler.UpdateSettings))

	// Dashboard
	mux.HandleFunc("GET /dashboard/stats", session(middleware.RequireRole(dashboardHandler.GetStats,
		dashboardOnly, models.RoleAdmin, models.RoleOverview)))

	// Voters (scoped per actor)
	mux.HandleFunc("GET /voters", session(voterHandler.ListVoters))
	mux.HandleFunc("GET /voters/{id}", session(voterHandler.GetVoter))
	mux.HandleFunc("PUT /voters/{id}", session(voterHandler.UpdateVoter))
	mux.HandleFunc("PATCH /voters/{id}", session(voterHandler.UpdateVoter))
	mux.HandleFunc("DELETE /voters/{id}", session(voterHandler.DeleteVoter))
	mux.HandleFunc("POST /voters/bulk_update_voted", admin(voterHandler.BulkUpdateVoted))

	// Volunteers
	mux.HandleFunc("GET /volunteers", session(volunteerHandler.ListVolunteers))
	mux.HandleFunc("POST /volunteers", admin(volunteerHandler.CreateVolunteer))
	mux.HandleFunc("GET /volunteers/{id}", session(volunteerHandler.GetVolunteer))
	mux.HandleFunc("PATCH /volunteers/{id}", admin(volunteerHandler.UpdateVolunteer))
	mux.HandleFunc("GET /volunteers/{id}/voters", session(volunteerHandler.VolunteerVoters))
	mux.HandleFunc("GET /volunteers/{id}/stats", session(volunteerHandler.VolunteerStats))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ward voting tracker API v1"))
	})

	return mux
}
