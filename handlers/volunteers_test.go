// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hemangsrr/Ward14VotingTracker/models"
	"github.com/hemangsrr/Ward14VotingTracker/testutil"
)

func TestListVolunteers(t *testing.T) {
	w := setupWard(t)
	h := NewVolunteerHandler(w.db, testutil.GetTestConfig())

	tests := []struct {
		name           string
		query          string
		expected       []int
		expectedStatus int
	}{
		{"all", "", []int{11, 12, 21, 1, 2}, http.StatusOK},
		{"level2", "?level=level2", []int{1, 2}, http.StatusOK},
		{"search name", "?search=member%20a", []int{11, 12}, http.StatusOK},
		{"search number", "?search=21", []int{21}, http.StatusOK},
		{"inactive", "?is_active=false", []int{}, http.StatusOK},
		{"bad level", "?level=level3", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := w.as(testutil.MakeRequest("GET", "/volunteers"+tt.query, nil, nil), w.memberA1Account)
			rec := run(h.ListVolunteers, req)

			testutil.AssertStatus(t, rec, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp []models.VolunteerDetail
			testutil.AssertJSON(t, rec, &resp)

			got := []int{}
			for _, v := range resp {
				got = append(got, v.VolunteerID)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Volunteers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetVolunteer(t *testing.T) {
	w := setupWard(t)
	h := NewVolunteerHandler(w.db, testutil.GetTestConfig())

	req := withID(w.as(testutil.MakeRequest("GET", "/volunteers/x", nil, nil), w.overview), w.memberA1.ID)
	rec := run(h.GetVolunteer, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var d models.VolunteerDetail
	testutil.AssertJSON(t, rec, &d)

	if d.ParentName == nil || *d.ParentName != "Leader A" {
		t.Errorf("Expected parent name Leader A, got %v", d.ParentName)
	}
	if d.UserUsername == nil || *d.UserUsername != "a1" {
		t.Errorf("Expected username a1, got %v", d.UserUsername)
	}
	// Voter 6 is deleted
	if d.VoterCount != 2 {
		t.Errorf("Expected voter_count 2, got %d", d.VoterCount)
	}

	req = withID(w.as(testutil.MakeRequest("GET", "/volunteers/x", nil, nil), w.overview), 9999)
	rec = run(h.GetVolunteer, req)
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestCreateVolunteer(t *testing.T) {
	w := setupWard(t)
	h := NewVolunteerHandler(w.db, testutil.GetTestConfig())

	tests := []struct {
		name           string
		body           models.CreateVolunteerRequest
		expectedStatus int
	}{
		{"level1 under level2", models.CreateVolunteerRequest{VolunteerID: 13, Name: "Member A3", Level: "level1", ParentID: &w.leaderA.ID}, http.StatusCreated},
		{"level1 without parent", models.CreateVolunteerRequest{VolunteerID: 14, Name: "Loose", Level: "level1"}, http.StatusCreated},
		{"parent must be level2", models.CreateVolunteerRequest{VolunteerID: 15, Name: "Nested", Level: "level1", ParentID: &w.memberA1.ID}, http.StatusBadRequest},
		{"unknown parent", models.CreateVolunteerRequest{VolunteerID: 16, Name: "Orphan", Level: "level1", ParentID: testutil.Int64(9999)}, http.StatusBadRequest},
		{"bad level", models.CreateVolunteerRequest{VolunteerID: 17, Name: "X", Level: "captain"}, http.StatusBadRequest},
		{"missing name", models.CreateVolunteerRequest{VolunteerID: 18, Level: "level2"}, http.StatusBadRequest},
		{"duplicate number", models.CreateVolunteerRequest{VolunteerID: 1, Name: "Again", Level: "level2"}, http.StatusConflict},
		{"account already linked", models.CreateVolunteerRequest{VolunteerID: 19, Name: "Twin", Level: "level2", AccountID: &w.leaderAAccount.ID}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := w.as(testutil.MakeRequest("POST", "/volunteers", tt.body, nil), w.admin)
			rec := run(h.CreateVolunteer, req)

			testutil.AssertStatus(t, rec, tt.expectedStatus)
		})
	}

	t.Run("level2 parent is dropped", func(t *testing.T) {
		body := models.CreateVolunteerRequest{VolunteerID: 3, Name: "Leader C", Level: "level2", ParentID: &w.leaderA.ID}
		req := w.as(testutil.MakeRequest("POST", "/volunteers", body, nil), w.admin)
		rec := run(h.CreateVolunteer, req)
		testutil.AssertStatus(t, rec, http.StatusCreated)

		var d models.VolunteerDetail
		testutil.AssertJSON(t, rec, &d)
		if d.ParentID != nil || d.ParentName != nil {
			t.Errorf("Level 2 volunteer kept a parent: %v %v", d.ParentID, d.ParentName)
		}
		if !d.IsActive {
			t.Error("New volunteers should be active")
		}
	})
}

func TestUpdateVolunteer(t *testing.T) {
	w := setupWard(t)
	h := NewVolunteerHandler(w.db, testutil.GetTestConfig())

	patch := func(id int64, body interface{}) (int, models.VolunteerDetail) {
		req := withID(w.as(testutil.MakeRequest("PATCH", "/volunteers/x", body, nil), w.admin), id)
		rec := run(h.UpdateVolunteer, req)

		var d models.VolunteerDetail
		if rec.Code == http.StatusOK {
			testutil.AssertJSON(t, rec, &d)
		}
		return rec.Code, d
	}

	t.Run("move to other leader", func(t *testing.T) {
		code, d := patch(w.memberA2.ID, map[string]int64{"parent_volunteer": w.leaderB.ID})
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", code)
		}
		if d.ParentID == nil || *d.ParentID != w.leaderB.ID {
			t.Errorf("Expected parent %d, got %v", w.leaderB.ID, d.ParentID)
		}
		if d.Name != "Member A2" {
			t.Errorf("Name changed unexpectedly: %s", d.Name)
		}
	})

	t.Run("promote clears parent", func(t *testing.T) {
		code, d := patch(w.memberB1.ID, map[string]string{"level": "level2"})
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", code)
		}
		if d.Level != models.LevelTwo || d.ParentID != nil {
			t.Errorf("Expected parentless level2, got level=%s parent=%v", d.Level, d.ParentID)
		}
	})

	t.Run("demote leader with team", func(t *testing.T) {
		code, _ := patch(w.leaderA.ID, map[string]string{"level": "level1"})
		if code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", code)
		}
	})

	t.Run("self parent", func(t *testing.T) {
		code, _ := patch(w.memberA1.ID, map[string]int64{"parent_volunteer": w.memberA1.ID})
		if code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", code)
		}
	})

	t.Run("deactivate and unlink", func(t *testing.T) {
		code, d := patch(w.memberA1.ID, map[string]interface{}{"is_active": false, "user": nil})
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", code)
		}
		if d.IsActive || d.AccountID != nil || d.UserUsername != nil {
			t.Errorf("Expected inactive and unlinked, got %+v", d)
		}
	})

	t.Run("blank name", func(t *testing.T) {
		code, _ := patch(w.leaderB.ID, map[string]string{"name": "  "})
		if code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", code)
		}
	})

	t.Run("missing", func(t *testing.T) {
		code, _ := patch(9999, map[string]string{"name": "X"})
		if code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", code)
		}
	})
}

func TestVolunteerVoters(t *testing.T) {
	w := setupWard(t)
	h := NewVolunteerHandler(w.db, testutil.GetTestConfig())

	tests := []struct {
		name        string
		account     models.Account
		volunteerID int64
		query       string
		expected    []string
	}{
		{"admin on level1", w.admin, w.memberA1.ID, "", []string{"SEC001", "SEC002", "SEC006"}},
		{"admin on level2", w.admin, w.leaderA.ID, "", []string{"SEC001", "SEC002", "SEC003", "SEC006"}},
		{"filtered", w.admin, w.leaderA.ID, "?has_voted=false", []string{"SEC002", "SEC003"}},
		{"party filter", w.admin, w.leaderA.ID, "?party=ldf&status=active", []string{"SEC001", "SEC003"}},
		{"leader on own member", w.leaderAAccount, w.memberA2.ID, "", []string{"SEC003"}},
		{"leader on other team", w.leaderAAccount, w.memberB1.ID, "", []string{}},
		{"member on own leader", w.memberA1Account, w.leaderA.ID, "", []string{"SEC001", "SEC002", "SEC006"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withID(w.as(testutil.MakeRequest("GET", "/volunteers/x/voters"+tt.query, nil, nil), tt.account), tt.volunteerID)
			rec := run(h.VolunteerVoters, req)
			testutil.AssertStatus(t, rec, http.StatusOK)

			var voters []models.Voter
			testutil.AssertJSON(t, rec, &voters)
			if diff := cmp.Diff(tt.expected, secIDs(voters)); diff != "" {
				t.Errorf("Voters mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("missing volunteer", func(t *testing.T) {
		req := withID(w.as(testutil.MakeRequest("GET", "/volunteers/x/voters", nil, nil), w.admin), 9999)
		rec := run(h.VolunteerVoters, req)
		testutil.AssertStatus(t, rec, http.StatusNotFound)
	})
}

func TestVolunteerStatsAccess(t *testing.T) {
	w := setupWard(t)
	h := NewVolunteerHandler(w.db, testutil.GetTestConfig())

	tests := []struct {
		name           string
		account        models.Account
		volunteerID    int64
		expectedStatus int
	}{
		{"admin", w.admin, w.memberB1.ID, http.StatusOK},
		{"overview", w.overview, w.leaderA.ID, http.StatusOK},
		{"self level1", w.memberA1Account, w.memberA1.ID, http.StatusOK},
		{"self level2", w.leaderAAccount, w.leaderA.ID, http.StatusOK},
		{"leader on own member", w.leaderAAccount, w.memberA2.ID, http.StatusOK},
		{"leader on other member", w.leaderAAccount, w.memberB1.ID, http.StatusForbidden},
		{"leader on other leader", w.leaderAAccount, w.leaderB.ID, http.StatusForbidden},
		{"member on leader", w.memberA1Account, w.leaderA.ID, http.StatusForbidden},
		{"no volunteer", w.orphan, w.memberA1.ID, http.StatusForbidden},
		{"missing", w.admin, 9999, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withID(w.as(testutil.MakeRequest("GET", "/volunteers/x/stats", nil, nil), tt.account), tt.volunteerID)
			rec := run(h.VolunteerStats, req)
			testutil.AssertStatus(t, rec, tt.expectedStatus)
		})
	}

	t.Run("figures", func(t *testing.T) {
		req := withID(w.as(testutil.MakeRequest("GET", "/volunteers/x/stats", nil, nil), w.leaderAAccount), w.leaderA.ID)
		rec := run(h.VolunteerStats, req)
		testutil.AssertStatus(t, rec, http.StatusOK)

		var s models.VolunteerStats
		testutil.AssertJSON(t, rec, &s)
		if s.TotalVoters != 3 || s.VotedCount != 1 || s.NotVotedCount != 2 {
			t.Errorf("Unexpected stats: %+v", s)
		}
		if s.FocusParty != models.PartyLDF || s.FocusTotal != 2 || s.FocusVoted != 1 {
			t.Errorf("Unexpected focus stats: %+v", s)
		}
	})
}
