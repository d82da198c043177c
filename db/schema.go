// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dbType string) error {
	for _, stmt := range schemaStatements(dbType) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// schemaStatements renders the schema for a dialect and splits it into
// single statements.
func schemaStatements(dbType string) []string {
	pk := "BIGSERIAL PRIMARY KEY"
	if dbType == TypeSQLite {
		pk = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	var stmts []string
	for _, s := range strings.Split(strings.ReplaceAll(schema, "{{pk}}", pk), ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

const schema = `
-- Accounts
CREATE TABLE IF NOT EXISTS account (
    id {{pk}},
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('admin', 'level1', 'level2', 'overview')),
    phone_number TEXT,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    session_version INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

-- Volunteers
CREATE TABLE IF NOT EXISTS volunteer (
    id {{pk}},
    volunteer_id INTEGER NOT NULL UNIQUE,
    name TEXT NOT NULL,
    level TEXT NOT NULL CHECK (level IN ('level1', 'level2')),
    parent_id BIGINT REFERENCES volunteer(id) ON DELETE SET NULL,
    account_id BIGINT UNIQUE REFERENCES account(id) ON DELETE SET NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_volunteer_level ON volunteer(level);
CREATE INDEX IF NOT EXISTS idx_volunteer_parent_id ON volunteer(parent_id);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id {{pk}},
    serial_no INTEGER NOT NULL,
    sec_id TEXT NOT NULL UNIQUE,
    category TEXT NOT NULL DEFAULT 'existing' CHECK (category IN ('existing', 'deletion')),
    name_en TEXT NOT NULL,
    name_ml TEXT NOT NULL DEFAULT '',
    guardian_name_en TEXT NOT NULL DEFAULT '',
    guardian_name_ml TEXT NOT NULL DEFAULT '',
    old_ward_house_no TEXT NOT NULL DEFAULT '',
    house_name_en TEXT NOT NULL DEFAULT '',
    house_name_ml TEXT NOT NULL DEFAULT '',
    gender TEXT NOT NULL DEFAULT 'O' CHECK (gender IN ('M', 'F', 'O')),
    age INTEGER NOT NULL DEFAULT 0,
    level1_volunteer_id BIGINT REFERENCES volunteer(id) ON DELETE SET NULL,
    level2_volunteer_id BIGINT REFERENCES volunteer(id) ON DELETE SET NULL,
    status TEXT NOT NULL DEFAULT 'active'
        CHECK (status IN ('active', 'out_of_station', 'deceased', 'postal_vote', 'deleted')),
    party TEXT NOT NULL DEFAULT 'unknown' CHECK (party IN ('ldf', 'udf', 'bjp', 'other', 'unknown')),
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    time_voted TIMESTAMP,
    phone_number TEXT,
    notes TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_voter_serial_no ON voter(serial_no);
CREATE INDEX IF NOT EXISTS idx_voter_level1 ON voter(level1_volunteer_id);
CREATE INDEX IF NOT EXISTS idx_voter_level2 ON voter(level2_volunteer_id);
CREATE INDEX IF NOT EXISTS idx_voter_has_voted ON voter(has_voted);
CREATE INDEX IF NOT EXISTS idx_voter_status ON voter(status);
CREATE INDEX IF NOT EXISTS idx_voter_party ON voter(party);

-- Voting gate (single row)
CREATE TABLE IF NOT EXISTS app_settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    voting_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at TIMESTAMP NOT NULL,
    updated_by BIGINT REFERENCES account(id) ON DELETE SET NULL
);
`
