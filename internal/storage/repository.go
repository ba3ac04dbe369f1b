// Package storage provides persistence for probe run history.
//
// Every probe result is recorded as one row keyed by (run_id, probe).
// SQLite is the default store; PostgreSQL serves shared CI runners; the
// in-memory store serves tests and the HTTP server's dev mode.
package storage

import (
	"context"
	"time"
)

// TimeLayout is the fixed-width UTC layout used for started_at, so that
// lexical order matches chronological order in every dialect.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunRecord is one persisted probe result.
type RunRecord struct {
	RunID     string        `json:"run_id"`
	Probe     string        `json:"probe"`
	Outcome   string        `json:"outcome"`
	Mode      string        `json:"mode"`
	Output    string        `json:"output"`
	Expected  string        `json:"expected"`
	Error     string        `json:"error,omitempty"`
	Attempts  int           `json:"attempts"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}

// RunSummary aggregates the records of one run.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Mode      string    `json:"mode"`
	StartedAt time.Time `json:"started_at"`
	Probes    int       `json:"probes"`
	Failed    int       `json:"failed"`
}

// HistoryRepository defines the interface for run history persistence.
// All implementations must be:
// - Thread-safe
// - Context-aware (respecting cancellation/timeout)
// - Explicit about errors (never swallow)
type HistoryRepository interface {
	// Record persists one probe result.
	// Returns an error if the (run_id, probe) pair was already recorded.
	Record(ctx context.Context, rec RunRecord) error

	// ListRuns returns run summaries, newest first, at most limit entries.
	// A limit <= 0 means no limit. Returns empty slice (not nil) if no runs exist.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	// GetRun returns all records of a run ordered by probe name.
	// Returns ErrRunNotFound if the run does not exist.
	GetRun(ctx context.Context, runID string) ([]RunRecord, error)

	// CheckConnectivity verifies the store is reachable.
	CheckConnectivity(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}

// isFailure reports whether an outcome counts against a run.
func isFailure(outcome string) bool {
	return outcome == "failed" || outcome == "error"
}
