// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db is the entity store: schema creation, connections and queries.

# Connecting

Open accepts "postgres" (lib/pq) or "sqlite" (modernc.org/sqlite):

	conn, err := db.Open(db.TypePostgres, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.CreateSchema(conn, db.TypePostgres); err != nil {
		log.Fatal(err)
	}

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes. SQLite connections enable foreign keys and are limited
to one open connection.

# Tables

  - account: login handles and roles
  - volunteer: two-level volunteer hierarchy
  - voter: electoral roll rows with tracking fields
  - app_settings: the single voting gate row (id = 1)

# Relationships

	account 1──0..1 volunteer   (volunteer.account_id, unique)
	volunteer(level2) 1──* volunteer(level1)   (parent_id)
	volunteer 1──* voter   (level1_volunteer_id, level2_volunteer_id)
	account 1──* app_settings.updated_by

# Queries

Store functions take a Querier, which both *sql.DB and *sql.Tx satisfy:

	tx, err := conn.Begin()
	...
	defer tx.Rollback()
	v, err := db.GetVoter(tx, id)

Filters are built with Where, whose conditions use ? placeholders and are
numbered on render:

	var w db.Where
	w.Add("v.party = ?", "ldf")
	voters, err := db.ListVoters(conn, &w, "-age", 50, 0)

Updates that touch only some columns use Set.
*/
package db
