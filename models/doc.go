// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Account: a login handle with a role (admin, level1, level2, overview)
  - Volunteer: a canvassing role-holder in the two-level hierarchy
  - Voter: a registered elector with tracking fields
  - Settings: the voting gate row

Volunteers are built with NewVolunteer, which applies the hierarchy rule
that only level1 volunteers may have a parent:

	v := models.NewVolunteer(14, "Ravi", models.LevelTwo, &parentID, nil)
	// v.ParentID == nil

# Request Types

Types for parsing incoming JSON:

  - LoginRequest: username, password
  - UpdateSettingsRequest: voting_enabled
  - UpdateVoterRequest: any subset of status, party, has_voted, phone_number,
    notes, level1_volunteer, level2_volunteer
  - BulkUpdateVotedRequest: voter_ids, has_voted
  - CreateVolunteerRequest / UpdateVolunteerRequest

Nullable foreign keys use OptionalID so that an absent field and an explicit
null can be told apart.

# Query Types

VoterFilter and VolunteerFilter are decoded from query strings with
gorilla/schema (see middleware.ParseQuery).

# Response Types

  - CurrentUserResponse: account, linked volunteer summary, read-only flag
  - VoterListResponse: paginated voters
  - VolunteerDetail: volunteer with parent name, username and voter count
  - DashboardStats / VolunteerStats: turnout statistics
  - ErrorResponse: {"error": "...", "message": "..."}

# Choices

Parties and Statuses keep display order and names for dashboards. The
deleted status is valid on a voter but never appears in Statuses.
*/
package models
