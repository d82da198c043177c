// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"math"

	"github.com/hemangsrr/Ward14VotingTracker/db"
	"github.com/hemangsrr/Ward14VotingTracker/models"
	"github.com/hemangsrr/Ward14VotingTracker/scope"
)

// notDeleted is applied before every count except the party breakdown.
const notDeleted = "v.status <> 'deleted'"

// volunteerAggregates are the per-volunteer sums; the two ? placeholders
// both bind the focus party.
const volunteerAggregates = `
	COUNT(v.id),
	COALESCE(SUM(CASE WHEN v.has_voted THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN v.party = ? THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN v.party = ? AND v.has_voted THEN 1 ELSE 0 END), 0)`

// levelColumn is the voter column that assigns voters to a volunteer of the
// given level.
func levelColumn(level string) string {
	if level == models.LevelOne {
		return "v.level1_volunteer_id"
	}
	return "v.level2_volunteer_id"
}

// percentage returns part/total*100 rounded to two decimals, 0 when total is 0.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}

// finish fills the derived fields of a volunteer row.
func finish(s *models.VolunteerStats, focusParty string) {
	s.NotVotedCount = s.TotalVoters - s.VotedCount
	s.VotingPercentage = percentage(s.VotedCount, s.TotalVoters)
	s.FocusParty = focusParty
	s.FocusPercentage = percentage(s.FocusVoted, s.FocusTotal)
}

// ComputeStats aggregates turnout over the voters inside sc. Deleted voters
// are excluded from every figure except party_stats, which counts voted
// voters per party over the whole subset.
func ComputeStats(q db.Querier, sc scope.Scope, focusParty string) (models.DashboardStats, error) {
	stats := models.DashboardStats{
		PartyStats:  make(map[string]models.PartyStat, len(models.Parties)),
		StatusStats: make(map[string]models.StatusStat, len(models.Statuses)),
	}

	cond, args := sc.Condition()

	// Totals
	var active db.Where
	active.Add(cond, args...)
	active.Add(notDeleted)
	err := q.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN v.has_voted THEN 1 ELSE 0 END), 0)
		FROM voter v`+active.SQL(1), active.Args()...).Scan(&stats.TotalVoters, &stats.VotedCount)
	if err != nil {
		return stats, fmt.Errorf("failed to count voters: %w", err)
	}
	stats.NotVotedCount = stats.TotalVoters - stats.VotedCount
	stats.VotingPercentage = percentage(stats.VotedCount, stats.TotalVoters)

	// Voted per party
	var voted db.Where
	voted.Add(cond, args...)
	voted.Add("v.has_voted = TRUE")
	partyCounts, err := groupCount(q, "v.party", &voted)
	if err != nil {
		return stats, err
	}
	for _, p := range models.Parties {
		stats.PartyStats[p.Code] = models.PartyStat{Name: p.Name, VotedCount: partyCounts[p.Code]}
	}

	// Status breakdown
	statusCounts, err := groupCount(q, "v.status", &active)
	if err != nil {
		return stats, err
	}
	for _, s := range models.Statuses {
		stats.StatusStats[s.Code] = models.StatusStat{Name: s.Name, Count: statusCounts[s.Code]}
	}

	// Drill-down
	stats.Level1VolunteerStats, err = drillDown(q, models.LevelOne, sc, focusParty)
	if err != nil {
		return stats, err
	}
	stats.Level2VolunteerStats, err = drillDown(q, models.LevelTwo, sc, focusParty)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

func groupCount(q db.Querier, column string, w *db.Where) (map[string]int, error) {
	rows, err := q.Query(`SELECT `+column+`, COUNT(*) FROM voter v`+w.SQL(1)+` GROUP BY `+column, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to group voters by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("failed to scan group count: %w", err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// drillDown returns one row per active volunteer of a level, counting the
// non-deleted voters in sc assigned to that volunteer at that level.
func drillDown(q db.Querier, level string, sc scope.Scope, focusParty string) ([]models.VolunteerStats, error) {
	join := levelColumn(level) + " = vo.id AND " + notDeleted
	args := []any{focusParty, focusParty}
	if cond, condArgs := sc.Condition(); cond != "" {
		join += " AND " + cond
		args = append(args, condArgs...)
	}
	args = append(args, level)

	query := db.Renumber(`
		SELECT vo.id, vo.volunteer_id, vo.name,`+volunteerAggregates+`
		FROM volunteer vo
		LEFT JOIN voter v ON `+join+`
		WHERE vo.level = ? AND vo.is_active = TRUE
		GROUP BY vo.id, vo.volunteer_id, vo.name
		ORDER BY vo.volunteer_id`, 1)

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s volunteers: %w", level, err)
	}
	defer rows.Close()

	result := []models.VolunteerStats{}
	for rows.Next() {
		var s models.VolunteerStats
		err := rows.Scan(&s.ID, &s.VolunteerID, &s.Name, &s.TotalVoters, &s.VotedCount, &s.FocusTotal, &s.FocusVoted)
		if err != nil {
			return nil, fmt.Errorf("failed to scan volunteer stats: %w", err)
		}
		finish(&s, focusParty)
		result = append(result, s)
	}
	return result, rows.Err()
}

// ComputeVolunteerStats is the drill-down row for a single volunteer,
// whether or not it is active.
func ComputeVolunteerStats(q db.Querier, v models.Volunteer, focusParty string) (models.VolunteerStats, error) {
	s := models.VolunteerStats{ID: v.ID, VolunteerID: v.VolunteerID, Name: v.Name}

	query := db.Renumber(`
		SELECT`+volunteerAggregates+`
		FROM voter v
		WHERE `+levelColumn(v.Level)+` = ? AND `+notDeleted, 1)

	err := q.QueryRow(query, focusParty, focusParty, v.ID).
		Scan(&s.TotalVoters, &s.VotedCount, &s.FocusTotal, &s.FocusVoted)
	if err != nil {
		return s, fmt.Errorf("failed to aggregate volunteer %d: %w", v.ID, err)
	}
	finish(&s, focusParty)
	return s, nil
}
