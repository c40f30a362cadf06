// Package store persists the final row of each simulation keyed by its
// sim key, so interrupted batches can resume.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Memory opens a private in-memory database.
const Memory = ":memory:"

// Record is the stored summary of one simulation.
type Record struct {
	SimKey        string    `json:"sim_key"`
	RunID         string    `json:"run_id"`
	Strategy      string    `json:"strategy"`
	Season        int       `json:"season"`
	Team          string    `json:"team"`
	StartRace     int       `json:"start_race"`
	Races         int       `json:"races"`
	TotalPoints   int       `json:"total_points"`
	StartingValue float64   `json:"starting_value"`
	TotalValue    float64   `json:"total_value"`
	UnusedBudget  float64   `json:"unused_budget"`
	CreatedAt     time.Time `json:"created_at"`
}

// Query selects stored records. Zero fields do not filter.
type Query struct {
	Season   int
	Strategy string
	Limit    int
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open results db %s", path)
	}
	// one connection so ":memory:" is a single database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(buildCreateResultsTable()); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create results table")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Has reports whether a result is stored under key.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results WHERE sim_key = ?`, key).Scan(&n)
	if err != nil {
		return false, errors.Wrapf(err, "lookup %s", key)
	}
	return n > 0, nil
}

// Keys returns every stored sim key.
func (s *Store) Keys(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sim_key FROM results`)
	if err != nil {
		return nil, errors.Wrap(err, "list keys")
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = true
	}
	return keys, rows.Err()
}

// Put stores records in one transaction, replacing any with the same key.
func (s *Store) Put(ctx context.Context, records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	stmt, err := tx.PrepareContext(ctx, buildInsertResultCommand())
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, r := range records {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, insertArgs(r)...); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert %s", r.SimKey)
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// List returns the records matching q, highest total points first.
func (s *Store) List(ctx context.Context, q Query) ([]Record, error) {
	cmd, args := buildSelectResultsCommand(q)
	rows, err := s.db.QueryContext(ctx, cmd, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list results")
	}
	return processResultRows(rows)
}

// Count returns the number of stored results.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count results")
	}
	return n, nil
}
