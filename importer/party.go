// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package importer

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/models"
)

// Defaults used by ReadSerialRange when the sheet or range is left empty
const (
	DefaultPartyRange = "A1:R26"
	DefaultPartySheet = "Sheet1"
)

type PartyOptions struct {
	DryRun bool
	Party  string // default ldf
}

// UpdateParty tags every voter carrying one of the serial numbers. Serials
// with no voter are reported and never stop the run.
func UpdateParty(conn *sql.DB, serials []int, opts PartyOptions) (*Summary, error) {
	if opts.Party == "" {
		opts.Party = models.PartyLDF
	}
	if !models.IsValidParty(opts.Party) {
		return nil, fmt.Errorf("invalid party %q", opts.Party)
	}

	unique := make(map[int]bool, len(serials))
	for _, n := range serials {
		if n > 0 {
			unique[n] = true
		}
	}
	if len(unique) == 0 {
		return nil, ErrNoRows
	}
	ordered := make([]int, 0, len(unique))
	for n := range unique {
		ordered = append(ordered, n)
	}
	sort.Ints(ordered)

	s := newSummary(KindParty, opts.DryRun)

	err := apply(conn, s, func(tx *sql.Tx) error {
		for _, serial := range ordered {
			voters, err := db.VotersBySerial(tx, serial)
			if err != nil {
				return fmt.Errorf("serial %d: %w", serial, err)
			}
			if len(voters) == 0 {
				s.Skipped++
				s.notFound("serial %d", serial)
				continue
			}

			for _, v := range voters {
				if v.Party == opts.Party {
					s.Unchanged++
					continue
				}
				set := &db.Set{}
				set.Add("party", opts.Party)
				if err := db.UpdateVoter(tx, v.ID, set); err != nil {
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
