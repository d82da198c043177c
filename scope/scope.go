// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scope

import (
	"github.com/hemangsrr/Ward14VotingTracker/models"
)

// Kind is the slice of voters an actor can see.
type Kind int

const (
	KindNone Kind = iota
	KindAll
	KindLevel1
	KindLevel2
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindLevel1:
		return "level1"
	case KindLevel2:
		return "level2"
	}
	return "none"
}

// Scope is computed once per request and decides which voters the actor may
// read and whether it may change them.
type Scope struct {
	Kind        Kind
	VolunteerID int64
	CanEdit     bool
	Admin       bool
}

// Resolve builds the scope for an actor. The volunteer may be nil when the
// account has no linked volunteer.
//
// Precedence: admin role, then a linked level1 volunteer (read-only), then a
// linked level2 volunteer, then the overview role (read-only). Anything else
// sees nothing.
func Resolve(account *models.Account, volunteer *models.Volunteer) Scope {
	if account == nil || !account.IsActive {
		return Scope{Kind: KindNone}
	}

	if account.Role == models.RoleAdmin {
		return Scope{Kind: KindAll, CanEdit: true, Admin: true}
	}

	if volunteer != nil && volunteer.IsActive {
		switch volunteer.Level {
		case models.LevelOne:
			return Scope{Kind: KindLevel1, VolunteerID: volunteer.ID}
		case models.LevelTwo:
			return Scope{Kind: KindLevel2, VolunteerID: volunteer.ID, CanEdit: true}
		}
	}

	if account.Role == models.RoleOverview {
		return Scope{Kind: KindAll}
	}

	return Scope{Kind: KindNone}
}

// ReadOnly reports whether every mutation must be rejected.
func (s Scope) ReadOnly() bool {
	return !s.CanEdit
}

// Condition returns a SQL condition on the voter table (aliased v) with ?
// placeholders. An empty condition means every voter.
func (s Scope) Condition() (string, []any) {
	switch s.Kind {
	case KindAll:
		return "", nil
	case KindLevel1:
		return "v.level1_volunteer_id = ?", []any{s.VolunteerID}
	case KindLevel2:
		return "v.level2_volunteer_id = ?", []any{s.VolunteerID}
	}
	return "1 = 0", nil
}

// Allows reports whether a voter is inside the scope.
func (s Scope) Allows(v *models.Voter) bool {
	switch s.Kind {
	case KindAll:
		return true
	case KindLevel1:
		return v.Level1VolunteerID != nil && *v.Level1VolunteerID == s.VolunteerID
	case KindLevel2:
		return v.Level2VolunteerID != nil && *v.Level2VolunteerID == s.VolunteerID
	}
	return false
}
