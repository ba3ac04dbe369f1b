package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/canonica-labs/capprobe/internal/errors"
)

// MemoryRepository is an in-memory implementation of HistoryRepository.
// WARNING: history is lost when the process exits.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[string][]RunRecord
}

// NewMemoryRepository creates a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		runs: make(map[string][]RunRecord),
	}
}

// Record persists one probe result.
func (r *MemoryRepository) Record(ctx context.Context, rec RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.RunID == "" || rec.Probe == "" {
		return fmt.Errorf("storage: run_id and probe are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.runs[rec.RunID] {
		if existing.Probe == rec.Probe {
			return fmt.Errorf("storage: probe %s already recorded for run %s", rec.Probe, rec.RunID)
		}
	}
	rec.StartedAt = rec.StartedAt.UTC()
	r.runs[rec.RunID] = append(r.runs[rec.RunID], rec)
	return nil
}

// ListRuns returns run summaries, newest first.
func (r *MemoryRepository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]RunSummary, 0, len(r.runs))
	for runID, records := range r.runs {
		s := RunSummary{RunID: runID, Probes: len(records)}
		for i, rec := range records {
			if i == 0 || rec.StartedAt.Before(s.StartedAt) {
				s.StartedAt = rec.StartedAt
			}
			if i == 0 || rec.Mode < s.Mode {
				s.Mode = rec.Mode
			}
			if isFailure(rec.Outcome) {
				s.Failed++
			}
		}
		runs = append(runs, s)
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].RunID < runs[j].RunID
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// GetRun returns all records of a run ordered by probe name.
func (r *MemoryRepository) GetRun(ctx context.Context, runID string) ([]RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records, ok := r.runs[runID]
	if !ok {
		return nil, errors.NewRunNotFound(runID)
	}
	out := make([]RunRecord, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].Probe < out[j].Probe })
	return out, nil
}

// CheckConnectivity always succeeds for in-memory storage.
func (r *MemoryRepository) CheckConnectivity(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (r *MemoryRepository) Close() error {
	return nil
}

// Clear removes all runs.
// Useful for test cleanup.
func (r *MemoryRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = make(map[string][]RunRecord)
}
