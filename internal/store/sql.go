package store

import (
	"database/sql"
	"time"
)

func buildCreateResultsTable() string {
	return `CREATE TABLE IF NOT EXISTS results (
		sim_key TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		strategy TEXT NOT NULL,
		season INTEGER NOT NULL,
		team TEXT NOT NULL,
		start_race INTEGER NOT NULL,
		races INTEGER NOT NULL,
		total_points INTEGER NOT NULL,
		starting_value REAL NOT NULL,
		total_value REAL NOT NULL,
		unused_budget REAL NOT NULL,
		created_at INTEGER NOT NULL);`
}

const resultFields = "sim_key, run_id, strategy, season, team, start_race, races, total_points, starting_value, total_value, unused_budget, created_at"

func buildInsertResultCommand() string {
	return `INSERT OR REPLACE INTO results (` + resultFields + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
}

func insertArgs(r Record) []any {
	return []any{
		r.SimKey,
		r.RunID,
		r.Strategy,
		r.Season,
		r.Team,
		r.StartRace,
		r.Races,
		r.TotalPoints,
		r.StartingValue,
		r.TotalValue,
		r.UnusedBudget,
		r.CreatedAt.UnixMilli(),
	}
}

// buildSelectResultsCommand filters by season and strategy when they are
// non-zero, best first. limit <= 0 returns every row.
func buildSelectResultsCommand(q Query) (string, []any) {
	cmd := `SELECT ` + resultFields + ` FROM results WHERE 1 = 1`
	var args []any
	if q.Season != 0 {
		cmd += ` AND season = ?`
		args = append(args, q.Season)
	}
	if q.Strategy != "" {
		cmd += ` AND strategy = ?`
		args = append(args, q.Strategy)
	}
	cmd += ` ORDER BY total_points DESC, sim_key ASC`
	if q.Limit > 0 {
		cmd += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	return cmd, args
}

func processResultRows(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var r Record
		var created int64
		err := rows.Scan(
			&r.SimKey,
			&r.RunID,
			&r.Strategy,
			&r.Season,
			&r.Team,
			&r.StartRace,
			&r.Races,
			&r.TotalPoints,
			&r.StartingValue,
			&r.TotalValue,
			&r.UnusedBudget,
			&created,
		)
		if err != nil {
			return records, err
		}
		r.CreatedAt = time.UnixMilli(created).UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}
