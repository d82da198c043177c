// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

// MinPasswordLength is enforced when passwords are set, not when they are
// checked.
const MinPasswordLength = 8

// HashPassword bcrypt-hashes a password with the default cost.
func HashPassword(password string) ([]byte, error) {
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// CheckPassword compares a password against a bcrypt hash.
func CheckPassword(hash []byte, password string) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Authenticate looks up an account by username and verifies its password.
// Unknown usernames and wrong passwords both return ErrInvalidCredentials.
func Authenticate(q db.Querier, username, password string) (models.Account, error) {
	account, err := db.GetAccountByUsername(q, strings.TrimSpace(username))
	if errors.Is(err, db.ErrNotFound) {
		return models.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Account{}, err
	}

	if err := CheckPassword(account.PasswordHash, password); err != nil {
		return models.Account{}, err
	}
	if !account.IsActive {
		return models.Account{}, ErrAccountInactive
	}

	return account, nil
}
