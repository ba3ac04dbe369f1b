package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/canonica-labs/capprobe/internal/errors"
)

// SQLRepository implements HistoryRepository over database/sql.
// It is shared by the SQLite and PostgreSQL stores; only the dialect differs.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLRepository wraps an open database. Migrations must already be applied.
func NewSQLRepository(db *sql.DB, dialect Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Dialect returns the SQL dialect of the repository.
func (r *SQLRepository) Dialect() Dialect {
	return r.dialect
}

// Record persists one probe result.
func (r *SQLRepository) Record(ctx context.Context, rec RunRecord) error {
	if rec.RunID == "" || rec.Probe == "" {
		return fmt.Errorf("storage: run_id and probe are required")
	}

	query := fmt.Sprintf(`
		INSERT INTO probe_runs (
			run_id, probe, outcome, mode, output, expected,
			error_message, attempts, duration_ms, started_at
		) VALUES (%s)`, r.dialect.placeholders(10))

	_, err := r.db.ExecContext(ctx, query,
		rec.RunID,
		rec.Probe,
		rec.Outcome,
		rec.Mode,
		rec.Output,
		rec.Expected,
		rec.Error,
		rec.Attempts,
		rec.Duration.Milliseconds(),
		rec.StartedAt.UTC().Format(TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record probe %s for run %s: %w", rec.Probe, rec.RunID, err)
	}
	return nil
}

// ListRuns returns run summaries, newest first.
func (r *SQLRepository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
		SELECT run_id, MIN(mode), MIN(started_at), COUNT(*),
		       SUM(CASE WHEN outcome IN ('failed', 'error') THEN 1 ELSE 0 END)
		FROM probe_runs
		GROUP BY run_id
		ORDER BY MIN(started_at) DESC, run_id`
	var args []any
	if limit > 0 {
		query += " LIMIT " + r.dialect.Placeholder(1)
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var (
			s         RunSummary
			startedAt string
		)
		if err := rows.Scan(&s.RunID, &s.Mode, &startedAt, &s.Probes, &s.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		if s.StartedAt, err = time.Parse(TimeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("failed to parse started_at %q: %w", startedAt, err)
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// GetRun returns all records of a run ordered by probe name.
func (r *SQLRepository) GetRun(ctx context.Context, runID string) ([]RunRecord, error) {
	query := fmt.Sprintf(`
		SELECT run_id, probe, outcome, mode, output, expected,
		       error_message, attempts, duration_ms, started_at
		FROM probe_runs
		WHERE run_id = %s
		ORDER BY probe`, r.dialect.Placeholder(1))

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			rec        RunRecord
			durationMs int64
			startedAt  string
		)
		if err := rows.Scan(
			&rec.RunID, &rec.Probe, &rec.Outcome, &rec.Mode, &rec.Output, &rec.Expected,
			&rec.Error, &rec.Attempts, &durationMs, &startedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		if rec.StartedAt, err = time.Parse(TimeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("failed to parse started_at %q: %w", startedAt, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, errors.NewRunNotFound(runID)
	}
	return records, nil
}

// CheckConnectivity verifies database connectivity.
func (r *SQLRepository) CheckConnectivity(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return errors.NewStorageUnavailable(r.dialect.Name, err)
	}
	return nil
}

// Close closes the database.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}
