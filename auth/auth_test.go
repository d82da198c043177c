// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hemangsrr/Ward14VotingTracker/auth"
	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/models"
	"github.com/hemangsrr/Ward14VotingTracker/testutil"
)

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if string(hash) == "correct horse" {
		t.Error("HashPassword() returned the plain password")
	}

	if err := auth.CheckPassword(hash, "correct horse"); err != nil {
		t.Errorf("CheckPassword() with right password error = %v", err)
	}
	if err := auth.CheckPassword(hash, "wrong horse"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("CheckPassword() with wrong password error = %v, want ErrInvalidCredentials", err)
	}

	// Same password hashes differently every time
	hash2, _ := auth.HashPassword("correct horse")
	if string(hash) == string(hash2) {
		t.Error("HashPassword() produced identical hashes")
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := auth.HashPassword("short"); !errors.Is(err, auth.ErrPasswordTooShort) {
		t.Errorf("HashPassword() error = %v, want ErrPasswordTooShort", err)
	}
}

func TestAuthenticate(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	testutil.CreateTestAccount(t, conn, "admin", models.RoleAdmin)
	inactive := testutil.CreateTestAccount(t, conn, "th01", models.RoleLevel2)
	if err := db.SetAccountActive(conn, inactive.ID, false); err != nil {
		t.Fatalf("SetAccountActive() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid credentials", "admin", testutil.TestPassword, nil},
		{"surrounding spaces in username", "  admin ", testutil.TestPassword, nil},
		{"wrong password", "admin", "not-the-password", auth.ErrInvalidCredentials},
		{"unknown user", "nobody", testutil.TestPassword, auth.ErrInvalidCredentials},
		{"inactive account", "th01", testutil.TestPassword, auth.ErrAccountInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := auth.Authenticate(conn, tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && account.Username != "admin" {
				t.Errorf("Authenticate() username = %q, want admin", account.Username)
			}
		})
	}
}

// cookiesFrom copies the response cookies onto a fresh request.
func cookiesFrom(w *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest("GET", "/auth/user", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionsRoundTrip(t *testing.T) {
	s := auth.NewSessions("test-session-secret-32-bytes-long", false)

	w := httptest.NewRecorder()
	if err := s.Create(w, httptest.NewRequest("POST", "/auth/login", nil), auth.Session{AccountID: 42, Version: 3}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != auth.SessionName {
		t.Fatalf("expected one %s cookie, got %v", auth.SessionName, cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	sess, err := s.Load(httptest.NewRecorder(), cookiesFrom(w))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if sess.AccountID != 42 || sess.Version != 3 {
		t.Errorf("Load() = %+v, want account 42 version 3", sess)
	}
}

func TestSessionsMissingCookie(t *testing.T) {
	s := auth.NewSessions("test-session-secret-32-bytes-long", false)

	_, err := s.Load(httptest.NewRecorder(), httptest.NewRequest("GET", "/auth/user", nil))
	if !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("Load() error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionsForeignKey(t *testing.T) {
	issuer := auth.NewSessions("first-secret-first-secret-first!", false)
	verifier := auth.NewSessions("other-secret-other-secret-other!", false)

	w := httptest.NewRecorder()
	if err := issuer.Create(w, httptest.NewRequest("POST", "/auth/login", nil), auth.Session{AccountID: 7}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := verifier.Load(httptest.NewRecorder(), cookiesFrom(w))
	if !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("Load() error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionsDestroy(t *testing.T) {
	s := auth.NewSessions("", false)

	w := httptest.NewRecorder()
	if err := s.Create(w, httptest.NewRequest("POST", "/auth/login", nil), auth.Session{AccountID: 3}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	out := httptest.NewRecorder()
	if err := s.Destroy(out, cookiesFrom(w)); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}

	cookies := out.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expiring cookie, got %v", cookies)
	}

	if err := s.Destroy(httptest.NewRecorder(), httptest.NewRequest("POST", "/auth/logout", nil)); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("Destroy() without session error = %v, want ErrSessionNotFound", err)
	}
}
