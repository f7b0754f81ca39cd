package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run statuses.
const (
	RunRunning     = "running"
	RunCompleted   = "completed"
	RunInterrupted = "interrupted"
	RunFailed      = "failed"
)

// Run is one invocation of the crawl command.
type Run struct {
	RunID        string
	Seed         string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Status       string
	PagesFetched int
	FetchErrors  int
	PagesStored  int
}

// RunStats are the counters written when a run finishes.
type RunStats struct {
	PagesFetched int
	FetchErrors  int
	PagesStored  int
}

// StartRun records the beginning of a crawl.
func (db *DB) StartRun(ctx context.Context, runID, seed string, startedAt time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO crawl_runs (run_id, seed, started_at, status)
		VALUES (?, ?, ?, ?)
	`, runID, seed, formatTime(startedAt), RunRunning)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

// FinishRun stores the final status and counters of a crawl.
func (db *DB) FinishRun(ctx context.Context, runID, status string, stats RunStats, finishedAt time.Time) error {
	result, err := db.ExecContext(ctx, `
		UPDATE crawl_runs
		SET finished_at = ?, status = ?, pages_fetched = ?, fetch_errors = ?, pages_stored = ?
		WHERE run_id = ?
	`, formatTime(finishedAt), status, stats.PagesFetched, stats.FetchErrors, stats.PagesStored, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT run_id, seed, started_at, finished_at, status, pages_fetched, fetch_errors, pages_stored
		FROM crawl_runs
		ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&r.RunID, &r.Seed, &started, &finished, &r.Status, &r.PagesFetched, &r.FetchErrors, &r.PagesStored); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("invalid started_at %q: %w", started, err)
		}
		if finished.Valid {
			t, err := time.Parse(time.RFC3339Nano, finished.String)
			if err != nil {
				return nil, fmt.Errorf("invalid finished_at %q: %w", finished.String, err)
			}
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
