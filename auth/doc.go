// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing and cookie sessions.

# Passwords

Passwords are hashed with bcrypt at the default cost:

	hash, err := auth.HashPassword("s3cret-pass")
	err = auth.CheckPassword(hash, "s3cret-pass")

Authenticate combines the account lookup and the password check. Unknown
usernames and wrong passwords return the same ErrInvalidCredentials, so the
response never reveals which handles exist. Inactive accounts return
ErrAccountInactive.

# Sessions

Sessions uses a gorilla/sessions CookieStore. The cookie holds the account
id, the account's session version and the creation time, signed with the
configured secret:

	s := auth.NewSessions(cfg.SessionSecret, cfg.SecureCookies)
	err := s.Create(w, r, auth.Session{AccountID: account.ID, Version: account.SessionVersion})
	sess, err := s.Load(w, r)
	err = s.Destroy(w, r)

A signed cookie stays decodable after it is expired on the client, so
revocation lives in the database. Logout bumps the account's session
version with db.BumpSessionVersion and the session middleware rejects any
cookie carrying an older version.

Sessions expire after one day. An expired cookie is deleted the next time it
is presented. With an empty secret a random key is generated at startup,
which logs everyone out on restart.

Accounts are never deleted. A deactivated account's session is dropped by
the session middleware the next time it is used.
*/
package auth
