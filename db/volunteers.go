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

var ErrHasChildren = errors.New("volunteer still has level1 volunteers under it")

const volunteerColumns = `vo.id, vo.volunteer_id, vo.name, vo.level, vo.parent_id, vo.account_id, vo.is_active, vo.created_at, vo.updated_at`

func scanVolunteer(row interface{ Scan(...any) error }, extra ...any) (models.Volunteer, error) {
	var v models.Volunteer
	dest := []any{&v.ID, &v.VolunteerID, &v.Name, &v.Level, &v.ParentID, &v.AccountID, &v.IsActive, &v.CreatedAt, &v.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return v, err
}

// SaveVolunteer inserts (ID == 0) or updates a volunteer. The hierarchy is
// normalized first: a level2 volunteer never keeps a parent, and a level1
// volunteer's parent must be a level2 volunteer.
func SaveVolunteer(q Querier, v *models.Volunteer) error {
	if !models.IsValidLevel(v.Level) {
		return ErrInvalidLevel
	}
	v.Normalize()

	if v.ParentID != nil {
		if v.ID != 0 && *v.ParentID == v.ID {
			return ErrInvalidParent
		}
		var level string
		err := q.QueryRow(`SELECT level FROM volunteer WHERE id = $1`, *v.ParentID).Scan(&level)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidParent
		}
		if err != nil {
			return fmt.Errorf("failed to query parent volunteer: %w", err)
		}
		if level != models.LevelTwo {
			return ErrInvalidParent
		}
	}

	now := time.Now()

	if v.ID == 0 {
		err := q.QueryRow(`
			INSERT INTO volunteer (volunteer_id, name, level, parent_id, account_id, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING id
		`, v.VolunteerID, v.Name, v.Level, v.ParentID, v.AccountID, v.IsActive, now).Scan(&v.ID)
		if err != nil {
			return fmt.Errorf("failed to insert volunteer: %w", err)
		}
		v.CreatedAt = now
		v.UpdatedAt = now
		return nil
	}

	if v.Level == models.LevelOne {
		var children int
		err := q.QueryRow(`SELECT COUNT(*) FROM volunteer WHERE parent_id = $1`, v.ID).Scan(&children)
		if err != nil {
			return fmt.Errorf("failed to count child volunteers: %w", err)
		}
		if children > 0 {
			return ErrHasChildren
		}
	}

	res, err := q.Exec(`
		UPDATE volunteer
		SET volunteer_id = $1, name = $2, level = $3, parent_id = $4, account_id = $5, is_active = $6, updated_at = $7
		WHERE id = $8
	`, v.VolunteerID, v.Name, v.Level, v.ParentID, v.AccountID, v.IsActive, now, v.ID)
	if err != nil {
		return fmt.Errorf("failed to update volunteer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	v.UpdatedAt = now
	return nil
}

func getVolunteerWhere(q Querier, cond string, arg any) (models.Volunteer, error) {
	v, err := scanVolunteer(q.QueryRow(`SELECT `+volunteerColumns+` FROM volunteer vo WHERE `+cond, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Volunteer{}, ErrNotFound
	}
	if err != nil {
		return models.Volunteer{}, fmt.Errorf("failed to query volunteer: %w", err)
	}
	return v, nil
}

// GetVolunteer loads a volunteer by row id.
func GetVolunteer(q Querier, id int64) (models.Volunteer, error) {
	return getVolunteerWhere(q, "vo.id = $1", id)
}

// GetVolunteerByNumber loads a volunteer by its human-assigned number.
func GetVolunteerByNumber(q Querier, volunteerID int) (models.Volunteer, error) {
	return getVolunteerWhere(q, "vo.volunteer_id = $1", volunteerID)
}

// GetVolunteerByAccount loads the volunteer linked to an account.
func GetVolunteerByAccount(q Querier, accountID int64) (models.Volunteer, error) {
	return getVolunteerWhere(q, "vo.account_id = $1", accountID)
}

// GetVolunteerByUsername loads the volunteer linked to the account with the
// given handle.
func GetVolunteerByUsername(q Querier, username string) (models.Volunteer, error) {
	return getVolunteerWhere(q, "vo.account_id = (SELECT id FROM account WHERE username = $1)", username)
}

const volunteerDetailQuery = `
	SELECT ` + volunteerColumns + `, p.name, a.username,
		(SELECT COUNT(*) FROM voter v
		 WHERE v.status <> 'deleted'
		   AND ((vo.level = 'level1' AND v.level1_volunteer_id = vo.id)
		     OR (vo.level = 'level2' AND v.level2_volunteer_id = vo.id)))
	FROM volunteer vo
	LEFT JOIN volunteer p ON p.id = vo.parent_id
	LEFT JOIN account a ON a.id = vo.account_id`

func scanVolunteerDetail(row interface{ Scan(...any) error }) (models.VolunteerDetail, error) {
	var d models.VolunteerDetail
	v, err := scanVolunteer(row, &d.ParentName, &d.UserUsername, &d.VoterCount)
	d.Volunteer = v
	return d, err
}

// GetVolunteerDetail loads a volunteer with its parent name, username and
// number of assigned voters.
func GetVolunteerDetail(q Querier, id int64) (models.VolunteerDetail, error) {
	d, err := scanVolunteerDetail(q.QueryRow(volunteerDetailQuery+` WHERE vo.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.VolunteerDetail{}, ErrNotFound
	}
	if err != nil {
		return models.VolunteerDetail{}, fmt.Errorf("failed to query volunteer: %w", err)
	}
	return d, nil
}

// ListVolunteers returns volunteers matching the filter ordered by level and
// volunteer number.
func ListVolunteers(q Querier, f models.VolunteerFilter) ([]models.VolunteerDetail, error) {
	var w Where
	if f.Level != "" {
		w.Add("vo.level = ?", f.Level)
	}
	if f.IsActive != nil {
		w.Add("vo.is_active = ?", *f.IsActive)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		w.Add("(LOWER(vo.name) LIKE ? OR CAST(vo.volunteer_id AS TEXT) LIKE ?)", like, like)
	}

	rows, err := q.Query(volunteerDetailQuery+w.SQL(1)+` ORDER BY vo.level, vo.volunteer_id`, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query volunteers: %w", err)
	}
	defer rows.Close()

	volunteers := []models.VolunteerDetail{}
	for rows.Next() {
		d, err := scanVolunteerDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan volunteer: %w", err)
		}
		volunteers = append(volunteers, d)
	}
	return volunteers, rows.Err()
}

// ListActiveVolunteers returns the active volunteers of one level ordered by
// volunteer number.
func ListActiveVolunteers(q Querier, level string) ([]models.Volunteer, error) {
	rows, err := q.Query(`
		SELECT `+volunteerColumns+`
		FROM volunteer vo
		WHERE vo.level = $1 AND vo.is_active = TRUE
		ORDER BY vo.volunteer_id
	`, level)
	if err != nil {
		return nil, fmt.Errorf("failed to query volunteers: %w", err)
	}
	defer rows.Close()

	var volunteers []models.Volunteer
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan volunteer: %w", err)
		}
		volunteers = append(volunteers, v)
	}
	return volunteers, rows.Err()
}
