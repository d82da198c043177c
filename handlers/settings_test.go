// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/hemangsrr/Ward14VotingTracker/models"
	"github.com/hemangsrr/Ward14VotingTracker/settings"
	"github.com/hemangsrr/Ward14VotingTracker/testutil"
)

func TestGetSettings(t *testing.T) {
	w := setupWard(t)
	h := NewSettingsHandler(w.db, testutil.GetTestConfig(), settings.NewGate(w.db))

	rec := run(h.GetSettings, testutil.MakeRequest("GET", "/settings", nil, nil))
	testutil.AssertStatus(t, rec, http.StatusOK)

	var resp map[string]interface{}
	testutil.AssertJSON(t, rec, &resp)

	if resp["voting_enabled"] != false {
		t.Errorf("Expected voting disabled by default, got %v", resp["voting_enabled"])
	}
	if _, ok := resp["updated_at"]; !ok {
		t.Error("Expected updated_at in response")
	}
	if _, ok := resp["updated_by"]; ok {
		t.Error("updated_by should not be exposed")
	}
}

func TestUpdateSettings(t *testing.T) {
	w := setupWard(t)
	gate := settings.NewGate(w.db)
	h := NewSettingsHandler(w.db, testutil.GetTestConfig(), gate)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedGate   bool
	}{
		{"missing field", map[string]string{}, http.StatusBadRequest, false},
		{"enable", map[string]bool{"voting_enabled": true}, http.StatusOK, true},
		{"disable", map[string]bool{"voting_enabled": false}, http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := w.as(testutil.MakeRequest("PUT", "/settings", tt.body, nil), w.admin)
			rec := run(h.UpdateSettings, req)
			testutil.AssertStatus(t, rec, tt.expectedStatus)

			enabled, err := settings.VotingEnabled(w.db)
			if err != nil {
				t.Fatalf("VotingEnabled() error = %v", err)
			}
			if enabled != tt.expectedGate {
				t.Errorf("Expected gate %v, got %v", tt.expectedGate, enabled)
			}
		})
	}

	s, err := gate.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.UpdatedBy == nil || *s.UpdatedBy != w.admin.ID {
		t.Errorf("Expected change recorded against admin, got %v", s.UpdatedBy)
	}
}

func TestDashboardStats(t *testing.T) {
	w := setupWard(t)
	h := NewDashboardHandler(w.db, testutil.GetTestConfig())

	rec := run(h.GetStats, w.as(testutil.MakeRequest("GET", "/dashboard/stats", nil, nil), w.overview))
	testutil.AssertStatus(t, rec, http.StatusOK)

	var stats models.DashboardStats
	testutil.AssertJSON(t, rec, &stats)

	if stats.TotalVoters != 5 || stats.VotedCount != 2 {
		t.Errorf("Unexpected totals: %d/%d", stats.VotedCount, stats.TotalVoters)
	}
	if len(stats.Level1VolunteerStats) != 3 || len(stats.Level2VolunteerStats) != 2 {
		t.Errorf("Unexpected drill-down sizes: %d level1, %d level2",
			len(stats.Level1VolunteerStats), len(stats.Level2VolunteerStats))
	}

	rec = run(h.GetStats, testutil.MakeRequest("GET", "/dashboard/stats", nil, nil))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
}
