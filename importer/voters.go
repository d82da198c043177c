// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package importer

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/models"
)

// VoterColumns names the roll columns. The translated sheet uses the same
// names for its name, guardian and house name columns.
type VoterColumns struct {
	Serial    string
	SecID     string
	Name      string
	Guardian  string
	HouseNo   string
	HouseName string
	Gender    string
	Age       string
	Category  string
}

var DefaultVoterColumns = VoterColumns{
	Serial:    "Serial No.",
	SecID:     "New SEC ID No.",
	Name:      "Name",
	Guardian:  "Guardian's Name",
	HouseNo:   "OldWard No/ House No.",
	HouseName: "House Name",
	Gender:    "Gender",
	Age:       "Age",
	Category:  "Category",
}

type VoterOptions struct {
	DryRun  bool
	Columns VoterColumns
}

// keyRows indexes rows by serial number. Rows without a positive numeric
// serial are dropped; a later row replaces an earlier one with the same serial.
func keyRows(t *Table, column string) (rows map[int][]string, dropped int, repeated []int) {
	rows = make(map[int][]string)
	for _, row := range t.Rows {
		serial, ok := positiveInt(t.Value(row, column))
		if !ok {
			dropped++
			continue
		}
		if _, dup := rows[serial]; dup {
			repeated = append(repeated, serial)
		}
		rows[serial] = row
	}
	return rows, dropped, repeated
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// ImportVoters upserts the voter roll by SEC ID. Roll fields are overwritten;
// status, party, voted flag, assignments and notes are left as they are.
// translated may be nil.
func ImportVoters(conn *sql.DB, primary, translated *Table, opts VoterOptions) (*Summary, error) {
	cols := opts.Columns
	if cols.Serial == "" {
		cols = DefaultVoterColumns
	}
	if err := primary.require(cols.Serial, cols.SecID, cols.Name); err != nil {
		return nil, err
	}

	s := newSummary(KindVoters, opts.DryRun)

	rows, dropped, repeated := keyRows(primary, cols.Serial)
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	s.Skipped += dropped
	for _, serial := range repeated {
		s.conflict("serial %d listed more than once, last row used", serial)
	}

	var extra map[int][]string
	if translated != nil {
		if !translated.HasColumn(cols.Serial) {
			return nil, fmt.Errorf("translated sheet: %w: %q", ErrMissingColumn, cols.Serial)
		}
		extra, _, _ = keyRows(translated, cols.Serial)
	}

	err := apply(conn, s, func(tx *sql.Tx) error {
		seen := make(map[string]int)
		for _, serial := range sortedKeys(rows) {
			row := rows[serial]

			v := models.Voter{
				SerialNo:       serial,
				SecID:          primary.Value(row, cols.SecID),
				NameEn:         primary.Value(row, cols.Name),
				GuardianNameEn: primary.Value(row, cols.Guardian),
				OldWardHouseNo: primary.Value(row, cols.HouseNo),
				HouseNameEn:    primary.Value(row, cols.HouseName),
				Gender:         parseGender(primary.Value(row, cols.Gender)),
				Age:            parseAge(primary.Value(row, cols.Age)),
				Category:       parseCategory(primary.Value(row, cols.Category)),
			}
			if v.SecID == "" {
				s.Errors++
				s.warn("serial %d: missing SEC ID", serial)
				continue
			}
			if v.NameEn == "" {
				s.Errors++
				s.warn("serial %d: missing name", serial)
				continue
			}
			if ml, ok := extra[serial]; ok {
				v.NameMl = translated.Value(ml, cols.Name)
				v.GuardianNameMl = translated.Value(ml, cols.Guardian)
				v.HouseNameMl = translated.Value(ml, cols.HouseName)
			}

			if prev, dup := seen[v.SecID]; dup {
				s.conflict("SEC ID %s at serials %d and %d, serial %d used", v.SecID, prev, serial, serial)
			}
			seen[v.SecID] = serial

			existing, err := db.GetVoterBySecID(tx, v.SecID)
			switch {
			case errors.Is(err, db.ErrNotFound):
				if _, err := db.InsertVoter(tx, &v); err != nil {
					return fmt.Errorf("serial %d: %w", serial, err)
				}
				s.Created++
			case err != nil:
				return fmt.Errorf("serial %d: %w", serial, err)
			case db.SameMaster(&existing, &v):
				s.Unchanged++
			default:
				if err := db.UpdateVoterMaster(tx, existing.ID, &v); err != nil {
					return fmt.Errorf("serial %d: %w", serial, err)
				}
				s.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log()
	return s, nil
}

func parseGender(s string) string {
	s = strings.ToUpper(s)
	switch {
	case strings.Contains(s, "F"):
		return models.GenderFemale
	case strings.Contains(s, "M"):
		return models.GenderMale
	}
	return models.GenderOther
}

func parseAge(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseCategory(s string) string {
	if strings.Contains(strings.ToLower(s), "deletion") {
		return models.CategoryDeletion
	}
	return models.CategoryExisting
}
