// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (request_id, method, path, remote) and completion
(status, duration_ms). The request id is taken from X-Request-ID or
generated with google/uuid, and echoed back in the response header.

# Actors

RequireAuth resolves the session cookie to an Actor (account, linked
volunteer, and the scope.Scope computed once for the request) and stores it
in the request context:

	mux.HandleFunc("GET /voters", middleware.WithLogging(
		middleware.RequireAuth(conn, sessions, voterHandler.ListVoters)))

	actor, ok := middleware.ActorFromContext(r.Context())

A deactivated account, or a cookie whose session version is older than the
account's (after logout), gets 401 and its cookie is expired. RequireRole
narrows an authenticated route to a set of roles (403 otherwise).

# CORS Middleware

Enable credentialed cross-origin requests for the frontend:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigin)(mux),
	}

Only the configured origin is allowed. With no origin configured the
middleware adds no headers and the API is same-origin only.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Query Strings

ParseQuery decodes list filters with gorilla/schema:

	var f models.VoterFilter
	if err := middleware.ParseQuery(r, &f); err != nil { ... }

Unknown keys are ignored; malformed values are an error.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP; used in request and login logs.
*/
package middleware
