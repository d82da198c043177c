// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// wardctl is the administration tool for the ward voting tracker. It loads
// the voter roll and volunteer assignments, tags party support, provisions
// accounts and volunteers, and opens or closes the voting gate.
package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/hemangsrr/Ward14VotingTracker/cliparse"
	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/logging"
)

// config holds the flags shared by every command.
type config struct {
	DatabaseURL  string `short:"d" long:"database" env:"DATABASE_URL" required:"true" description:"Database URL"`
	DatabaseType string `short:"t" long:"dbtype" env:"DATABASE_TYPE" default:"sqlite" choice:"sqlite" choice:"postgres" description:"Database type"`
	LogFile      string `long:"log-file" env:"LOG_FILE" description:"Also write logs to this rotating file"`
	LogLevel     string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level (debug, info, warn, error)"`
	LogFormat    string `long:"log-format" env:"LOG_FORMAT" default:"text" description:"Log format (text or json)"`
}

type wardctl struct {
	Config config `group:"Global Options"`

	// Imports
	ImportVoters     cmdImportVoters     `command:"import-voters" description:"Load or refresh the voter roll from CSV"`
	AssignVolunteers cmdAssignVolunteers `command:"assign-volunteers" description:"Assign voters to level2 volunteers from CSV"`
	UpdateParty      cmdUpdateParty      `command:"update-party" description:"Tag voters listed in an xlsx range with a party"`

	// Provisioning
	CreateAccount    cmdCreateAccount    `command:"create-account" description:"Create a login account"`
	SetPassword      cmdSetPassword      `command:"set-password" description:"Reset an account password"`
	SetAccountActive cmdSetAccountActive `command:"set-account-active" description:"Activate or deactivate an account"`
	CreateVolunteer  cmdCreateVolunteer  `command:"create-volunteer" description:"Create a volunteer"`

	// Voting gate
	SetVoting cmdSetVoting `command:"set-voting" description:"Open or close front-line voter marking"`
}

var cli wardctl

// openStore connects to the configured database and makes sure the schema
// exists.
func openStore() (*sql.DB, error) {
	conn, err := db.Open(cli.Config.DatabaseType, cli.Config.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(conn, cli.Config.DatabaseType); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// printJSON prints the provided value to stdout as indented JSON.
func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}

func main() {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	parser := flags.NewParser(&cli, flags.Default)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return nil
		}
		closer, err := logging.Init(cli.Config.LogFile, cli.Config.LogLevel, cli.Config.LogFormat)
		if err != nil {
			return err
		}
		defer closer.Close()
		return cmd.Execute(args)
	}

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		// go-flags has already printed the error
		os.Exit(1)
	}
}
