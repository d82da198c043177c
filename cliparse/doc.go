// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 8000)
  - DatabaseURL: Connection string or SQLite file (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - SessionSecret: Cookie signing key (random per process when empty)
  - SecureCookies: Mark the session cookie Secure
  - FocusParty: Party broken out in volunteer stats (default: ldf)
  - CORSOrigin: Allowed frontend origin
  - LogFile, LogLevel, LogFormat: see package logging

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-session-secret   Session signing key
	-secure-cookies   true/false
	-focus-party      ldf, udf, bjp, other, unknown
	-cors-origin      Frontend origin
	-log-file         Rotating log file
	-log-level        debug, info, warn, error
	-log-format       text or json
	-env-file         Environment file (default .env)

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	SESSION_SECRET  → -session-secret
	SECURE_COOKIES  → -secure-cookies
	FOCUS_PARTY     → -focus-party
	CORS_ORIGIN     → -cors-origin
	LOG_FILE, LOG_LEVEL, LOG_FORMAT

The env file is loaded with godotenv before the lookup. It never overrides
variables that are already set, and a missing file is ignored. CLI flags take
precedence over both.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - PORT or SECURE_COOKIES cannot be parsed
  - the database type or focus party is unknown
*/
package cliparse
