// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hemangsrr/Ward14VotingTracker/models"
)

const voterSelect = `
	SELECT v.id, v.serial_no, v.sec_id, v.category, v.name_en, v.name_ml,
		v.guardian_name_en, v.guardian_name_ml, v.old_ward_house_no, v.house_name_en, v.house_name_ml,
		v.gender, v.age, v.level1_volunteer_id, l1.name, v.level2_volunteer_id, l2.name,
		v.status, v.party, v.has_voted, v.time_voted, v.phone_number, v.notes, v.created_at, v.updated_at
	FROM voter v
	LEFT JOIN volunteer l1 ON l1.id = v.level1_volunteer_id
	LEFT JOIN volunteer l2 ON l2.id = v.level2_volunteer_id`

// voterOrderings maps the accepted ordering keys to columns.
var voterOrderings = map[string]string{
	"serial_no": "v.serial_no",
	"name_en":   "v.name_en",
	"age":       "v.age",
	"has_voted": "v.has_voted",
}

// VoterOrderBy turns an ordering key such as "-age" into an ORDER BY clause.
// Unknown keys fall back to serial number.
func VoterOrderBy(ordering string) string {
	dir := "ASC"
	key := ordering
	if strings.HasPrefix(key, "-") {
		dir = "DESC"
		key = key[1:]
	}
	col, ok := voterOrderings[key]
	if !ok {
		return "v.serial_no ASC, v.id ASC"
	}
	return col + " " + dir + ", v.id ASC"
}

func scanVoter(row interface{ Scan(...any) error }) (models.Voter, error) {
	var v models.Voter
	err := row.Scan(
		&v.ID, &v.SerialNo, &v.SecID, &v.Category, &v.NameEn, &v.NameMl,
		&v.GuardianNameEn, &v.GuardianNameMl, &v.OldWardHouseNo, &v.HouseNameEn, &v.HouseNameMl,
		&v.Gender, &v.Age, &v.Level1VolunteerID, &v.Level1Name, &v.Level2VolunteerID, &v.Level2Name,
		&v.Status, &v.Party, &v.HasVoted, &v.TimeVoted, &v.PhoneNumber, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
	)
	v.ResolveAssigned()
	return v, err
}

func queryVoters(q Querier, query string, args ...any) ([]models.Voter, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query voters: %w", err)
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		v, err := scanVoter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		voters = append(voters, v)
	}
	return voters, rows.Err()
}

// ListVoters returns one page of voters matching w. A limit of 0 returns
// every match.
func ListVoters(q Querier, w *Where, ordering string, limit, offset int) ([]models.Voter, error) {
	query := voterSelect + w.SQL(1) + " ORDER BY " + VoterOrderBy(ordering)
	args := w.Args()
	if limit > 0 {
		n := len(args) + 1
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", n, n+1)
		args = append(append([]any{}, args...), limit, offset)
	}
	return queryVoters(q, query, args...)
}

// CountVoters counts voters matching w.
func CountVoters(q Querier, w *Where) (int, error) {
	var count int
	err := q.QueryRow(`SELECT COUNT(*) FROM voter v`+w.SQL(1), w.Args()...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count voters: %w", err)
	}
	return count, nil
}

// GetVoter loads a voter by id.
func GetVoter(q Querier, id int64) (models.Voter, error) {
	v, err := scanVoter(q.QueryRow(voterSelect+` WHERE v.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, ErrNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}
	return v, nil
}

// GetVoterBySecID loads a voter by its electoral roll id.
func GetVoterBySecID(q Querier, secID string) (models.Voter, error) {
	v, err := scanVoter(q.QueryRow(voterSelect+` WHERE v.sec_id = $1`, secID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, ErrNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}
	return v, nil
}

// VotersBySerial returns every voter carrying a serial number. Serial numbers
// are not unique, so callers decide what more than one match means.
func VotersBySerial(q Querier, serial int) ([]models.Voter, error) {
	return queryVoters(q, voterSelect+` WHERE v.serial_no = $1 ORDER BY v.id`, serial)
}

// UpdateVoter writes only the columns in set, plus updated_at.
func UpdateVoter(q Querier, id int64, set *Set) error {
	if set.Len() == 0 {
		return ErrNothingToUpdate
	}
	set.Add("updated_at", time.Now())
	cols, n := set.SQL()

	args := append(append([]any{}, set.args...), id)
	res, err := q.Exec(fmt.Sprintf(`UPDATE voter SET %s WHERE id = $%d`, cols, n), args...)
	if err != nil {
		return fmt.Errorf("failed to update voter: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkSetVoted sets the voted flag on every listed voter and returns the
// number of rows touched. Marking voted keeps an existing time_voted;
// unmarking clears it.
func BulkSetVoted(q Querier, ids []int64, voted bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now()
	args := []any{now}
	for _, id := range ids {
		args = append(args, id)
	}

	set := `has_voted = FALSE, time_voted = NULL, updated_at = $1`
	if voted {
		set = `has_voted = TRUE, time_voted = COALESCE(time_voted, $1), updated_at = $1`
	}

	res, err := q.Exec(`UPDATE voter SET `+set+` WHERE id IN (`+placeholders(2, len(ids))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update voters: %w", err)
	}
	return res.RowsAffected()
}

// InsertVoter creates a voter from its master fields. Tracking fields take
// their defaults.
func InsertVoter(q Querier, v *models.Voter) (int64, error) {
	now := time.Now()
	var id int64
	err := q.QueryRow(`
		INSERT INTO voter (serial_no, sec_id, category, name_en, name_ml, guardian_name_en, guardian_name_ml,
			old_ward_house_no, house_name_en, house_name_ml, gender, age,
			status, party, has_voted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, FALSE, $15, $15)
		RETURNING id
	`, v.SerialNo, v.SecID, v.Category, v.NameEn, v.NameMl, v.GuardianNameEn, v.GuardianNameMl,
		v.OldWardHouseNo, v.HouseNameEn, v.HouseNameMl, v.Gender, v.Age,
		models.StatusActive, models.PartyUnknown, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert voter: %w", err)
	}
	return id, nil
}

// UpdateVoterMaster overwrites the roll fields of a voter and leaves the
// tracking fields alone.
func UpdateVoterMaster(q Querier, id int64, v *models.Voter) error {
	res, err := q.Exec(`
		UPDATE voter
		SET serial_no = $1, category = $2, name_en = $3, name_ml = $4, guardian_name_en = $5, guardian_name_ml = $6,
			old_ward_house_no = $7, house_name_en = $8, house_name_ml = $9, gender = $10, age = $11, updated_at = $12
		WHERE id = $13
	`, v.SerialNo, v.Category, v.NameEn, v.NameMl, v.GuardianNameEn, v.GuardianNameMl,
		v.OldWardHouseNo, v.HouseNameEn, v.HouseNameMl, v.Gender, v.Age, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update voter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SameMaster reports whether two voters carry identical roll fields.
func SameMaster(a, b *models.Voter) bool {
	return a.SerialNo == b.SerialNo && a.Category == b.Category &&
		a.NameEn == b.NameEn && a.NameMl == b.NameMl &&
		a.GuardianNameEn == b.GuardianNameEn && a.GuardianNameMl == b.GuardianNameMl &&
		a.OldWardHouseNo == b.OldWardHouseNo &&
		a.HouseNameEn == b.HouseNameEn && a.HouseNameMl == b.HouseNameMl &&
		a.Gender == b.Gender && a.Age == b.Age
}
