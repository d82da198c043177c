// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Account roles
const (
	RoleAdmin    = "admin"
	RoleLevel1   = "level1"
	RoleLevel2   = "level2"
	RoleOverview = "overview"
)

// Volunteer levels
const (
	LevelOne = "level1"
	LevelTwo = "level2"
)

// Voter tracking status constants
const (
	StatusActive       = "active"
	StatusOutOfStation = "out_of_station"
	StatusDeceased     = "deceased"
	StatusPostalVote   = "postal_vote"
	StatusDeleted      = "deleted"
)

// Party tags
const (
	PartyLDF     = "ldf"
	PartyUDF     = "udf"
	PartyBJP     = "bjp"
	PartyOther   = "other"
	PartyUnknown = "unknown"
)

// Electoral roll categories
const (
	CategoryExisting = "existing"
	CategoryDeletion = "deletion"
)

// Gender codes
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// Choice is a code with its display name, kept in display order.
type Choice struct {
	Code string
	Name string
}

var Parties = []Choice{
	{PartyLDF, "LDF"},
	{PartyUDF, "UDF"},
	{PartyBJP, "BJP"},
	{PartyOther, "Other"},
	{PartyUnknown, "Unknown"},
}

// Statuses lists the statuses reported on dashboards; StatusDeleted is
// never reported.
var Statuses = []Choice{
	{StatusActive, "Active"},
	{StatusOutOfStation, "Out of Station"},
	{StatusDeceased, "Deceased"},
	{StatusPostalVote, "Postal Vote"},
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleLevel1, RoleLevel2, RoleOverview:
		return true
	}
	return false
}

func IsValidLevel(level string) bool {
	return level == LevelOne || level == LevelTwo
}

func IsValidParty(party string) bool {
	for _, p := range Parties {
		if p.Code == party {
			return true
		}
	}
	return false
}

func IsValidStatus(status string) bool {
	if status == StatusDeleted {
		return true
	}
	for _, s := range Statuses {
		if s.Code == status {
			return true
		}
	}
	return false
}

func IsValidGender(gender string) bool {
	return gender == GenderMale || gender == GenderFemale || gender == GenderOther
}

// Domain types

type Account struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   []byte    `json:"-"` // Never expose in JSON
	Role           string    `json:"role"`
	PhoneNumber    *string   `json:"phone_number"`
	IsActive       bool      `json:"is_active"`
	SessionVersion int64     `json:"-"` // Bumped on logout; older cookies are rejected
	CreatedAt      time.Time `json:"created_at"`
}

type Volunteer struct {
	ID          int64     `json:"id"`
	VolunteerID int       `json:"volunteer_id"`
	Name        string    `json:"name"`
	Level       string    `json:"level"`
	ParentID    *int64    `json:"parent_volunteer"`
	AccountID   *int64    `json:"user"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewVolunteer builds a volunteer with the hierarchy rules applied: only
// level1 volunteers keep a parent.
func NewVolunteer(volunteerID int, name, level string, parentID, accountID *int64) Volunteer {
	v := Volunteer{
		VolunteerID: volunteerID,
		Name:        name,
		Level:       level,
		ParentID:    parentID,
		AccountID:   accountID,
		IsActive:    true,
	}
	v.Normalize()
	return v
}

// Normalize clears the parent of a level2 volunteer.
func (v *Volunteer) Normalize() {
	if v.Level == LevelTwo {
		v.ParentID = nil
	}
}

type Voter struct {
	ID                int64      `json:"id"`
	SerialNo          int        `json:"serial_no"`
	SecID             string     `json:"sec_id"`
	Category          string     `json:"category"`
	NameEn            string     `json:"name_en"`
	NameMl            string     `json:"name_ml"`
	GuardianNameEn    string     `json:"guardian_name_en"`
	GuardianNameMl    string     `json:"guardian_name_ml"`
	OldWardHouseNo    string     `json:"old_ward_house_no"`
	HouseNameEn       string     `json:"house_name_en"`
	HouseNameMl       string     `json:"house_name_ml"`
	Gender            string     `json:"gender"`
	Age               int        `json:"age"`
	Level1VolunteerID *int64     `json:"level1_volunteer"`
	Level1Name        *string    `json:"level1_volunteer_name"`
	Level2VolunteerID *int64     `json:"level2_volunteer"`
	Level2Name        *string    `json:"level2_volunteer_name"`
	AssignedID        *int64     `json:"assigned_volunteer"`
	AssignedName      *string    `json:"assigned_volunteer_name"`
	Status            string     `json:"status"`
	Party             string     `json:"party"`
	HasVoted          bool       `json:"has_voted"`
	TimeVoted         *time.Time `json:"time_voted"`
	PhoneNumber       *string    `json:"phone_number"`
	Notes             *string    `json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ResolveAssigned sets the displayed in-charge: the level2 volunteer if
// present, else the level1 volunteer, else none.
func (v *Voter) ResolveAssigned() {
	if v.Level2VolunteerID != nil {
		v.AssignedID, v.AssignedName = v.Level2VolunteerID, v.Level2Name
		return
	}
	v.AssignedID, v.AssignedName = v.Level1VolunteerID, v.Level1Name
}

type Settings struct {
	VotingEnabled bool      `json:"voting_enabled"`
	UpdatedAt     time.Time `json:"updated_at"`
	UpdatedBy     *int64    `json:"updated_by,omitempty"`
}

// Request types

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateSettingsRequest struct {
	VotingEnabled *bool `json:"voting_enabled"`
}

// UpdateVoterRequest carries only the fields the caller sent; nil means
// leave the column alone.
type UpdateVoterRequest struct {
	Status            *string    `json:"status"`
	Party             *string    `json:"party"`
	HasVoted          *bool      `json:"has_voted"`
	PhoneNumber       *string    `json:"phone_number"`
	Notes             *string    `json:"notes"`
	Level1VolunteerID OptionalID `json:"level1_volunteer"`
	Level2VolunteerID OptionalID `json:"level2_volunteer"`
}

func (r *UpdateVoterRequest) Empty() bool {
	return r.Status == nil && r.Party == nil && r.HasVoted == nil &&
		r.PhoneNumber == nil && r.Notes == nil &&
		!r.Level1VolunteerID.Set && !r.Level2VolunteerID.Set
}

type BulkUpdateVotedRequest struct {
	VoterIDs []int64 `json:"voter_ids"`
	HasVoted *bool   `json:"has_voted"`
}

type CreateVolunteerRequest struct {
	VolunteerID int    `json:"volunteer_id"`
	Name        string `json:"name"`
	Level       string `json:"level"`
	ParentID    *int64 `json:"parent_volunteer"`
	AccountID   *int64 `json:"user"`
}

type UpdateVolunteerRequest struct {
	Name      *string    `json:"name"`
	Level     *string    `json:"level"`
	IsActive  *bool      `json:"is_active"`
	ParentID  OptionalID `json:"parent_volunteer"`
	AccountID OptionalID `json:"user"`
}

// Query parameter types, decoded with gorilla/schema

type VoterFilter struct {
	HasVoted        *bool  `schema:"has_voted"`
	Party           string `schema:"party"`
	Status          string `schema:"status"`
	Level1Volunteer *int64 `schema:"level1_volunteer"`
	Level2Volunteer *int64 `schema:"level2_volunteer"`
	Gender          string `schema:"gender"`
	MinAge          *int   `schema:"min_age"`
	MaxAge          *int   `schema:"max_age"`
	Search          string `schema:"search"`
	Ordering        string `schema:"ordering"`
	Page            int    `schema:"page"`
	PageSize        int    `schema:"page_size"`
}

type VolunteerFilter struct {
	Level    string `schema:"level"`
	IsActive *bool  `schema:"is_active"`
	Search   string `schema:"search"`
}

// Response types

type VolunteerSummary struct {
	ID          int64  `json:"id"`
	VolunteerID int    `json:"volunteer_id"`
	Name        string `json:"name"`
	Level       string `json:"level"`
	IsReadOnly  bool   `json:"is_read_only"`
}

type CurrentUserResponse struct {
	Account
	Volunteer  *VolunteerSummary `json:"volunteer"`
	IsReadOnly bool              `json:"is_read_only"`
}

type LoginResponse struct {
	Message string              `json:"message"`
	User    CurrentUserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type VoterListResponse struct {
	Count    int     `json:"count"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Results  []Voter `json:"results"`
}

type BulkUpdateVotedResponse struct {
	Message      string `json:"message"`
	UpdatedCount int64  `json:"updated_count"`
}

type VolunteerDetail struct {
	Volunteer
	ParentName   *string `json:"parent_volunteer_name"`
	UserUsername *string `json:"user_username"`
	VoterCount   int     `json:"voter_count"`
}

// Statistics types

type PartyStat struct {
	Name       string `json:"name"`
	VotedCount int    `json:"voted_count"`
}

type StatusStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type VolunteerStats struct {
	ID               int64   `json:"id"`
	VolunteerID      int     `json:"volunteer_id"`
	Name             string  `json:"name"`
	TotalVoters      int     `json:"total_voters"`
	VotedCount       int     `json:"voted_count"`
	NotVotedCount    int     `json:"not_voted_count"`
	VotingPercentage float64 `json:"voting_percentage"`
	FocusParty       string  `json:"focus_party"`
	FocusTotal       int     `json:"focus_total"`
	FocusVoted       int     `json:"focus_voted"`
	FocusPercentage  float64 `json:"focus_percentage"`
}

type DashboardStats struct {
	TotalVoters          int                   `json:"total_voters"`
	VotedCount           int                   `json:"voted_count"`
	NotVotedCount        int                   `json:"not_voted_count"`
	VotingPercentage     float64               `json:"voting_percentage"`
	PartyStats           map[string]PartyStat  `json:"party_stats"`
	StatusStats          map[string]StatusStat `json:"status_stats"`
	Level1VolunteerStats []VolunteerStats      `json:"level1_volunteer_stats"`
	Level2VolunteerStats []VolunteerStats      `json:"level2_volunteer_stats"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
