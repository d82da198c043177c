// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hemangsrr/Ward14VotingTracker/models"
)

const accountColumns = `id, username, password_hash, role, phone_number, is_active, session_version, created_at`

func scanAccount(row interface{ Scan(...any) error }) (models.Account, error) {
	var a models.Account
	var hash string
	err := row.Scan(&a.ID, &a.Username, &hash, &a.Role, &a.PhoneNumber, &a.IsActive, &a.SessionVersion, &a.CreatedAt)
	a.PasswordHash = []byte(hash)
	return a, err
}

// CreateAccount inserts an account and returns its id.
func CreateAccount(q Querier, username string, passwordHash []byte, role string, phone *string) (int64, error) {
	if !models.IsValidRole(role) {
		return 0, fmt.Errorf("invalid role %q", role)
	}

	var id int64
	err := q.QueryRow(`
		INSERT INTO account (username, password_hash, role, phone_number, is_active, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		RETURNING id
	`, username, string(passwordHash), role, phone, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert account: %w", err)
	}
	return id, nil
}

// GetAccount loads an account by id.
func GetAccount(q Querier, id int64) (models.Account, error) {
	a, err := scanAccount(q.QueryRow(`SELECT `+accountColumns+` FROM account WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to query account: %w", err)
	}
	return a, nil
}

// GetAccountByUsername loads an account by its login handle.
func GetAccountByUsername(q Querier, username string) (models.Account, error) {
	a, err := scanAccount(q.QueryRow(`SELECT `+accountColumns+` FROM account WHERE username = $1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to query account: %w", err)
	}
	return a, nil
}

// SetAccountActive activates or deactivates an account. Accounts are never
// deleted.
func SetAccountActive(q Querier, id int64, active bool) error {
	res, err := q.Exec(`UPDATE account SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// BumpSessionVersion invalidates every session issued to the account so far.
func BumpSessionVersion(q Querier, id int64) error {
	res, err := q.Exec(`UPDATE account SET session_version = session_version + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAccountPassword replaces an account's password hash.
func SetAccountPassword(q Querier, id int64, passwordHash []byte) error {
	res, err := q.Exec(`UPDATE account SET password_hash = $1 WHERE id = $2`, string(passwordHash), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
