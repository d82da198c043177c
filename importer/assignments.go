// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package importer

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/models"
)

type AssignmentOptions struct {
	DryRun       bool
	SerialColumn string // default "VL No"
	GroupColumn  string // default "Thara"
	HandleFormat string // default "th%02d"
}

func (o *AssignmentOptions) defaults() {
	if o.SerialColumn == "" {
		o.SerialColumn = "VL No"
	}
	if o.GroupColumn == "" {
		o.GroupColumn = "Thara"
	}
	if o.HandleFormat == "" {
		o.HandleFormat = "th%02d"
	}
}

// AssignVolunteers hands voters to level2 volunteers. Each row maps a voter
// serial to a group number, and each group number names the account of its
// level2 volunteer through HandleFormat. Only level2_volunteer_id is written.
func AssignVolunteers(conn *sql.DB, t *Table, opts AssignmentOptions) (*Summary, error) {
	opts.defaults()
	if err := t.require(opts.SerialColumn, opts.GroupColumn); err != nil {
		return nil, err
	}

	s := newSummary(KindAssignments, opts.DryRun)
	s.Distribution = make(map[string]int)

	groupOf := make(map[int]int)
	for _, row := range t.Rows {
		serial, ok := positiveInt(t.Value(row, opts.SerialColumn))
		if !ok {
			continue
		}
		group, ok := positiveInt(t.Value(row, opts.GroupColumn))
		if !ok {
			continue
		}
		if prev, dup := groupOf[serial]; dup && prev != group {
			s.conflict("serial %d listed for groups %d and %d, group %d used", serial, prev, group, group)
		}
		groupOf[serial] = group
	}
	if len(groupOf) == 0 {
		return nil, ErrNoRows
	}

	serialsOf := make(map[int][]int)
	for _, serial := range sortedKeys(groupOf) {
		g := groupOf[serial]
		serialsOf[g] = append(serialsOf[g], serial)
	}

	err := apply(conn, s, func(tx *sql.Tx) error {
		for _, group := range sortedKeys(serialsOf) {
			serials := serialsOf[group]
			handle := fmt.Sprintf(opts.HandleFormat, group)

			v, err := db.GetVolunteerByUsername(tx, handle)
			if err != nil && !errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("volunteer %s: %w", handle, err)
			}
			if err != nil || v.Level != models.LevelTwo {
				s.Skipped += len(serials)
				s.warn("no level2 volunteer for %s, skipped serials %s", handle, joinInts(serials))
				for _, serial := range serials {
					s.notFound("%s: serial %d", handle, serial)
				}
				continue
			}

			for _, serial := range serials {
				voters, err := db.VotersBySerial(tx, serial)
				if err != nil {
					return fmt.Errorf("serial %d: %w", serial, err)
				}
				switch len(voters) {
				case 0:
					s.Skipped++
					s.notFound("serial %d", serial)
					continue
				case 1:
				default:
					s.Errors++
					s.conflict("serial %d matches %d voters, not assigned", serial, len(voters))
					continue
				}

				voter := voters[0]
				s.Distribution[handle]++
				if voter.Level2VolunteerID != nil && *voter.Level2VolunteerID == v.ID {
					s.Unchanged++
					continue
				}

				set := &db.Set{}
				set.Add("level2_volunteer_id", v.ID)
				if err := db.UpdateVoter(tx, voter.ID, set); err != nil {
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

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
