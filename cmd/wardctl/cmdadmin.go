// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hemangsrr/Ward14VotingTracker/auth"
	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/models"
	"github.com/hemangsrr/Ward14VotingTracker/settings"
)

// cmdCreateAccount creates a login account.
type cmdCreateAccount struct {
	Args struct {
		Username string `positional-arg-name:"username"`
	} `positional-args:"true" required:"true"`

	Role     string `long:"role" required:"true" choice:"admin" choice:"overview" choice:"level1" choice:"level2" description:"Account role"`
	Password string `long:"password" env:"WARD_PASSWORD" required:"true" description:"Initial password (prefer env)"`
	Phone    string `long:"phone" description:"Phone number"`
}

// Execute satisfies the go-flags Commander interface.
func (c *cmdCreateAccount) Execute(args []string) error {
	username := strings.TrimSpace(c.Args.Username)
	if username == "" {
		return errors.New("username is required")
	}
	hash, err := auth.HashPassword(c.Password)
	if err != nil {
		return err
	}
	var phone *string
	if c.Phone != "" {
		phone = &c.Phone
	}

	conn, err := openStore()
	if err != nil {
		return err
	}
	defer conn.Close()

	id, err := db.CreateAccount(conn, username, hash, c.Role, phone)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("username %q is already taken", username)
	}
	if err != nil {
		return err
	}

	account, err := db.GetAccount(conn, id)
	if err != nil {
		return err
	}
	slog.Info("account created", "account_id", id, "username", username, "role", c.Role)
	return printJSON(account)
}

// cmdSetPassword replaces an account password.
type cmdSetPassword struct {
	Args struct {
		Username string `positional-arg-name:"username"`
	} `positional-args:"true" required:"true"`

	Password string `long:"password" env:"WARD_PASSWORD" required:"true" description:"New password (prefer env)"`
}

// Execute satisfies the go-flags Commander interface.
func (c *cmdSetPassword) Execute(args []string) error {
	hash, err := auth.HashPassword(c.Password)
	if err != nil {
		return err
	}

	conn, err := openStore()
	if err != nil {
		return err
	}
	defer conn.Close()

	account, err := lookupAccount(conn, c.Args.Username)
	if err != nil {
		return err
	}
	if err := db.SetAccountPassword(conn, account.ID, hash); err != nil {
		return err
	}
	slog.Info("password changed", "account_id", account.ID)
	return nil
}

// cmdSetAccountActive activates or deactivates an account. A deactivated
// account loses its sessions on the next request.
type cmdSetAccountActive struct {
	Args struct {
		Username string `positional-arg-name:"username"`
	} `positional-args:"true" required:"true"`

	Disable bool `long:"disable" description:"Deactivate instead of activate"`
}

// Execute satisfies the go-flags Commander interface.
func (c *cmdSetAccountActive) Execute(args []string) error {
	conn, err := openStore()
	if err != nil {
		return err
	}
	defer conn.Close()

	account, err := lookupAccount(conn, c.Args.Username)
	if err != nil {
		return err
	}
	if err := db.SetAccountActive(conn, account.ID, !c.Disable); err != nil {
		return err
	}
	slog.Info("account updated", "account_id", account.ID, "is_active", !c.Disable)
	return nil
}

// cmdCreateVolunteer creates a volunteer. A level1 volunteer hangs under the
// level2 volunteer with the given number.
type cmdCreateVolunteer struct {
	Args struct {
		Number int    `positional-arg-name:"volunteer-number"`
		Name   string `positional-arg-name:"name"`
	} `positional-args:"true" required:"true"`

	Level   string `long:"level" required:"true" choice:"level1" choice:"level2" description:"Volunteer level"`
	Parent  int    `long:"parent" description:"Volunteer number of the level2 parent"`
	Account string `long:"account" description:"Username of the linked account"`
}

// Execute satisfies the go-flags Commander interface.
func (c *cmdCreateVolunteer) Execute(args []string) error {
	name := strings.TrimSpace(c.Args.Name)
	if name == "" || c.Args.Number <= 0 {
		return errors.New("a positive volunteer number and a name are required")
	}

	conn, err := openStore()
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var parentID, accountID *int64
	if c.Parent != 0 {
		parent, err := db.GetVolunteerByNumber(tx, c.Parent)
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("no volunteer with number %d", c.Parent)
		}
		if err != nil {
			return err
		}
		parentID = &parent.ID
	}
	if c.Account != "" {
		account, err := lookupAccount(tx, c.Account)
		if err != nil {
			return err
		}
		accountID = &account.ID
	}

	v := models.NewVolunteer(c.Args.Number, name, c.Level, parentID, accountID)
	err = db.SaveVolunteer(tx, &v)
	if db.IsUniqueViolation(err) {
		return errors.New("volunteer number or account is already in use")
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit volunteer: %w", err)
	}

	detail, err := db.GetVolunteerDetail(conn, v.ID)
	if err != nil {
		return err
	}
	slog.Info("volunteer created", "volunteer_id", v.VolunteerID, "level", v.Level)
	return printJSON(detail)
}

// cmdSetVoting opens or closes the voting gate.
type cmdSetVoting struct {
	Args struct {
		State string `positional-arg-name:"on|off"`
	} `positional-args:"true" required:"true"`

	By string `long:"by" description:"Username recorded as having made the change"`
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "enable", "enabled", "1":
		return true, nil
	case "off", "false", "disable", "disabled", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

// Execute satisfies the go-flags Commander interface.
func (c *cmdSetVoting) Execute(args []string) error {
	enabled, err := parseSwitch(c.Args.State)
	if err != nil {
		return err
	}

	conn, err := openStore()
	if err != nil {
		return err
	}
	defer conn.Close()

	var by *int64
	if c.By != "" {
		account, err := lookupAccount(conn, c.By)
		if err != nil {
			return err
		}
		by = &account.ID
	}

	s, err := settings.NewGate(conn).SetVotingEnabled(enabled, by)
	if err != nil {
		return err
	}
	return printJSON(s)
}

func lookupAccount(q db.Querier, username string) (models.Account, error) {
	account, err := db.GetAccountByUsername(q, username)
	if errors.Is(err, db.ErrNotFound) {
		return models.Account{}, fmt.Errorf("no account named %q", username)
	}
	return account, err
}
