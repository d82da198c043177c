// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ward voting tracker API server.

The tracker follows a single ward's voter roll on election day. Voters are
assigned to a two-level hierarchy of volunteers, and every read and write is
scoped to what the signed-in account may see.

# Starting the Server

The server reads flags, then environment variables, then a .env file:

	DATABASE_URL=ward.db go run main.go

Or with flags:

	go run main.go -p 8000 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 8000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SESSION_SECRET (--session-secret): Cookie signing key (default: random per start)
  - SECURE_COOKIES (--secure-cookies): HTTPS-only session cookie
  - FOCUS_PARTY (--focus-party): Party broken out in volunteer stats (default: ldf)
  - CORS_ORIGIN (--cors-origin): Allowed frontend origin
  - LOG_FILE, LOG_LEVEL, LOG_FORMAT: Logging output

# Architecture

  - handlers: HTTP request handlers and the dashboard aggregator
  - router: Route definitions using Go 1.22+ routing
  - middleware: Logging, JSON helpers, CORS, session and role guards
  - scope: Which voters and volunteers an account may see and edit
  - settings: The voting gate
  - auth: Password hashing and cookie sessions
  - importer: Roll, assignment and party imports used by cmd/wardctl
  - models: Domain, request and response types
  - db: Schema creation and queries
  - cliparse: Configuration parsing

Imports and account provisioning are done with cmd/wardctl.
*/
package main
