// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ward voting tracker.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, sessions, gate)

# Endpoints

Public:

	GET  /health
	POST /auth/login
	GET  /settings

Session required:

	POST /auth/logout
	GET  /auth/user
	GET  /voters                 - Scoped, filtered, paginated list
	GET  /voters/{id}
	PUT  /voters/{id}            - Partial update (also PATCH)
	DELETE /voters/{id}          - Soft delete
	GET  /volunteers
	GET  /volunteers/{id}
	GET  /volunteers/{id}/voters
	GET  /volunteers/{id}/stats

Admin or overview:

	GET /dashboard/stats

Admin only:

	PUT  /settings
	POST /voters/bulk_update_voted
	POST /volunteers
	PATCH /volunteers/{id}

Role gates are applied here; scope rules are applied by the handlers.
*/
package router
