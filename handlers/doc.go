// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ward voting tracker.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AuthHandler: Login, logout and the current account
  - SettingsHandler: The voting gate
  - DashboardHandler: Ward-wide statistics
  - VoterHandler: Voter list, detail, updates and bulk marking
  - VolunteerHandler: Volunteer management, voter lists and statistics

Handlers are created via constructor functions:

	voterHandler := handlers.NewVoterHandler(db, cfg)

# Scope

Every handler behind a session reads the Actor placed in the request context
by middleware.RequireAuth. Its scope.Scope decides which voters a request may
read and whether it may write. Voters outside the scope answer 404, so their
existence is not revealed.

# Voting Gate

Non-admin updates that change has_voted are refused with 403 while the gate
is closed. The check runs inside the update transaction.

# Statistics

The aggregator lives in stats.go:

	stats, err := ComputeStats(db, actor.Scope, cfg.FocusParty)

Deleted voters are left out of every total. Drill-down rows cover active
volunteers and count only voters inside the caller's scope.
*/
package handlers
