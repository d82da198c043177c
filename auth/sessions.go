// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	// SessionName is the cookie name.
	SessionName = "ward_session"

	sessionMaxAge = 86400 // One day

	sessionValueAccountID = "account_id"
	sessionValueVersion   = "version"
	sessionValueCreatedAt = "created_at"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is what a cookie proves: the account and the account's session
// version at login. A version older than the account's current one is
// revoked.
type Session struct {
	AccountID int64
	Version   int64
}

// Sessions keeps the logged-in account in a signed cookie.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions creates a cookie session store. An empty secret generates a
// random key, so sessions do not survive a restart.
func NewSessions(secret string, secure bool) *Sessions {
	key := []byte(secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Sessions{store: store}
}

func (s *Sessions) get(r *http.Request) (*sessions.Session, error) {
	return s.store.Get(r, SessionName)
}

// Create starts a session for the account and sets the cookie on w.
func (s *Sessions) Create(w http.ResponseWriter, r *http.Request, sess Session) error {
	// A cookie that fails to decode still yields a usable new session.
	session, _ := s.get(r)

	session.Values[sessionValueAccountID] = sess.AccountID
	session.Values[sessionValueVersion] = sess.Version
	session.Values[sessionValueCreatedAt] = time.Now().Unix()

	return s.store.Save(r, w, session)
}

// Load returns the session stored in the request's cookie. An
// ErrSessionNotFound error is returned if there is no session or it has
// expired. Checking the version against the account is up to the caller.
func (s *Sessions) Load(w http.ResponseWriter, r *http.Request) (Session, error) {
	session, err := s.get(r)
	if err != nil || session.IsNew {
		return Session{}, ErrSessionNotFound
	}

	createdAt, ok := session.Values[sessionValueCreatedAt].(int64)
	if !ok || time.Now().Unix() > createdAt+int64(session.Options.MaxAge) {
		// Saving with a negative MaxAge deletes the cookie.
		session.Options.MaxAge = -1
		s.store.Save(r, w, session)
		return Session{}, ErrSessionNotFound
	}

	id, ok := session.Values[sessionValueAccountID].(int64)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	version, ok := session.Values[sessionValueVersion].(int64)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return Session{AccountID: id, Version: version}, nil
}

// Destroy expires the request's session cookie. The cookie value stays
// valid until the account's session version is bumped.
func (s *Sessions) Destroy(w http.ResponseWriter, r *http.Request) error {
	session, err := s.get(r)
	if err != nil || session.IsNew {
		return ErrSessionNotFound
	}

	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return s.store.Save(r, w, session)
}
