// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"github.com/hemangsrr/Ward14VotingTracker/importer"
	"github.com/hemangsrr/Ward14VotingTracker/models"
)

// cmdImportVoters upserts the voter roll by SEC ID.
type cmdImportVoters struct {
	Args struct {
		Roll string `positional-arg-name:"roll.csv"`
	} `positional-args:"true" required:"true"`

	Translated string `long:"translated" description:"CSV with translated names, joined by serial number"`
	DryRun     bool   `long:"dry-run" description:"Report what would change without writing"`
}

// Execute satisfies the go-flags Commander interface.
func (c *cmdImportVoters) Execute(args []string) error {
	primary, err := importer.ReadCSVFile(c.Args.Roll)
	if err != nil {
		return err
	}
	var translated *importer.Table
	if c.Translated != "" {
		if translated, err = importer.ReadCSVFile(c.Translated); err != nil {
			return err
		}
	}

	conn, err := openStore()
	if err != nil {
		return err
	}
	defer conn.Close()

	s, err := importer.ImportVoters(conn, primary, translated, importer.VoterOptions{DryRun: c.DryRun})
	if err != nil {
		return err
	}
	return printJSON(s)
}

// cmdAssignVolunteers sets the level2 volunteer of each listed voter.
type cmdAssignVolunteers struct {
	Args struct {
		Sheet string `positional-arg-name:"assignments.csv"`
	} `positional-args:"true" required:"true"`

	SerialColumn string `long:"serial-column" default:"VL No" description:"Column holding the voter serial number"`
	GroupColumn  string `long:"group-column" default:"Thara" description:"Column holding the group number"`
	HandleFormat string `long:"handle-format" default:"th%02d" description:"Account handle of a group's level2 volunteer"`
	DryRun       bool   `long:"dry-run" description:"Report what would change without writing"`
}

// Execute satisfies the go-flags Commander interface.
func (c *cmdAssignVolunteers) Execute(args []string) error {
	sheet, err := importer.ReadCSVFile(c.Args.Sheet)
	if err != nil {
		return err
	}

	conn, err := openStore()
	if err != nil {
		return err
	}
	defer conn.Close()

	s, err := importer.AssignVolunteers(conn, sheet, importer.AssignmentOptions{
		DryRun:       c.DryRun,
		SerialColumn: c.SerialColumn,
		GroupColumn:  c.GroupColumn,
		HandleFormat: c.HandleFormat,
	})
	if err != nil {
		return err
	}
	return printJSON(s)
}

// cmdUpdateParty tags every voter whose serial appears in a cell range.
type cmdUpdateParty struct {
	Args struct {
		Workbook string `positional-arg-name:"supporters.xlsx"`
	} `positional-args:"true" required:"true"`

	Sheet      string `long:"sheet" description:"Sheet name (default Sheet1)"`
	SheetIndex int    `long:"sheet-index" default:"0" description:"Sheet used when the name is not found"`
	Range      string `long:"range" description:"Cell range holding serial numbers (default A1:R26)"`
	Party      string `long:"party" default:"ldf" choice:"ldf" choice:"udf" choice:"bjp" choice:"other" choice:"unknown" description:"Party tag"`
	DryRun     bool   `long:"dry-run" description:"Report what would change without writing"`
}

// Execute satisfies the go-flags Commander interface.
func (c *cmdUpdateParty) Execute(args []string) error {
	serials, err := importer.ReadSerialRange(c.Args.Workbook, c.Sheet, c.SheetIndex, c.Range)
	if err != nil {
		return err
	}

	conn, err := openStore()
	if err != nil {
		return err
	}
	defer conn.Close()

	party := c.Party
	if party == "" {
		party = models.PartyLDF
	}
	s, err := importer.UpdateParty(conn, serials, importer.PartyOptions{DryRun: c.DryRun, Party: party})
	if err != nil {
		return err
	}
	return printJSON(s)
}
