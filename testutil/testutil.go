// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hemangsrr/Ward14VotingTracker/cliparse"
	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/middleware"
	"github.com/hemangsrr/Ward14VotingTracker/models"
)

// TestPassword is the password of every account made by CreateTestAccount.
const TestPassword = "password123"

// SetupTestDB opens a fresh in-memory SQLite database with the full schema.
// It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   ":memory:",
		DatabaseType:  db.TypeSQLite,
		SessionSecret: "test-session-secret",
		FocusParty:    models.PartyLDF,
		ServiceName:   "ward-voting-tracker",
	}
}

// CreateTestAccount creates an active account with TestPassword.
func CreateTestAccount(t *testing.T, q db.Querier, username, role string) models.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	id, err := db.CreateAccount(q, username, hash, role, nil)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	account, err := db.GetAccount(q, id)
	if err != nil {
		t.Fatalf("Failed to load test account: %v", err)
	}
	return account
}

// CreateTestVolunteer creates an active volunteer. parentID and accountID
// may be nil.
func CreateTestVolunteer(t *testing.T, q db.Querier, number int, name, level string, parentID, accountID *int64) models.Volunteer {
	t.Helper()

	v := models.NewVolunteer(number, name, level, parentID, accountID)
	if err := db.SaveVolunteer(q, &v); err != nil {
		t.Fatalf("Failed to create test volunteer: %v", err)
	}
	return v
}

// VoterOption sets tracking fields on a test voter.
type VoterOption func(*db.Set)

func Level1(id int64) VoterOption {
	return func(s *db.Set) { s.Add("level1_volunteer_id", id) }
}

func Level2(id int64) VoterOption {
	return func(s *db.Set) { s.Add("level2_volunteer_id", id) }
}

func Party(party string) VoterOption {
	return func(s *db.Set) { s.Add("party", party) }
}

func Status(status string) VoterOption {
	return func(s *db.Set) { s.Add("status", status) }
}

func Voted() VoterOption {
	return func(s *db.Set) { s.Add("has_voted", true) }
}

// CreateTestVoter creates a voter with default roll fields and applies opts.
func CreateTestVoter(t *testing.T, q db.Querier, serial int, secID string, opts ...VoterOption) models.Voter {
	t.Helper()

	v := models.Voter{
		SerialNo: serial,
		SecID:    secID,
		Category: models.CategoryExisting,
		NameEn:   "Voter " + secID,
		Gender:   models.GenderOther,
		Age:      40,
	}
	id, err := db.InsertVoter(q, &v)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	if len(opts) > 0 {
		var set db.Set
		for _, opt := range opts {
			opt(&set)
		}
		if err := db.UpdateVoter(q, id, &set); err != nil {
			t.Fatalf("Failed to update test voter: %v", err)
		}
	}

	voter, err := db.GetVoter(q, id)
	if err != nil {
		t.Fatalf("Failed to load test voter: %v", err)
	}
	return voter
}

// WithActor attaches an already resolved actor to a request, bypassing the
// session lookup.
func WithActor(r *http.Request, account models.Account, volunteer *models.Volunteer) *http.Request {
	return r.WithContext(middleware.WithActor(r.Context(), middleware.NewActor(account, volunteer)))
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// Int64 returns a pointer to n.
func Int64(n int64) *int64 {
	return &n
}
