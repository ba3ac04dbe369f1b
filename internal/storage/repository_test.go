package storage

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/errors"
)

func openSQLite(t *testing.T) HistoryRepository {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "history.db")
	repo, err := Open(context.Background(), config.HistoryConfig{Driver: config.HistorySQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("open sqlite history: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// repositoryContract exercises the behavior every HistoryRepository must share.
func repositoryContract(t *testing.T, repo HistoryRepository) {
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	records := []RunRecord{
		{RunID: "run-a", Probe: "hello", Outcome: "passed", Mode: "deps", Output: "Hello, int!\n", Expected: "Hello, int!\n", Attempts: 1, Duration: 2 * time.Millisecond, StartedAt: base},
		{RunID: "run-a", Probe: "sqlite", Outcome: "passed", Mode: "deps", Output: "2", Expected: "2", Attempts: 1, StartedAt: base},
		{RunID: "run-b", Probe: "hello", Outcome: "failed", Mode: "deps", Output: "Hello, bool!\n", Expected: "Hello, int!\n", Error: "assertion failed", Attempts: 1, StartedAt: base.Add(time.Minute)},
		{RunID: "run-b", Probe: "postgres", Outcome: "error", Mode: "deps", Error: "dial tcp: refused", Attempts: 3, StartedAt: base.Add(time.Minute)},
		{RunID: "run-b", Probe: "duckdb", Outcome: "skipped", Mode: "deps", StartedAt: base.Add(time.Minute)},
	}
	for _, rec := range records {
		if err := repo.Record(ctx, rec); err != nil {
			t.Fatalf("Record(%s/%s): %v", rec.RunID, rec.Probe, err)
		}
	}

	t.Run("duplicate record rejected", func(t *testing.T) {
		if err := repo.Record(ctx, records[0]); err == nil {
			t.Fatal("expected duplicate (run_id, probe) to be rejected")
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		runs, err := repo.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("ListRuns: %v", err)
		}
		want := []RunSummary{
			{RunID: "run-b", Mode: "deps", StartedAt: base.Add(time.Minute), Probes: 3, Failed: 2},
			{RunID: "run-a", Mode: "deps", StartedAt: base, Probes: 2, Failed: 0},
		}
		if diff := cmp.Diff(want, runs); diff != "" {
			t.Fatalf("ListRuns mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("list honors limit", func(t *testing.T) {
		runs, err := repo.ListRuns(ctx, 1)
		if err != nil {
			t.Fatalf("ListRuns: %v", err)
		}
		if len(runs) != 1 || runs[0].RunID != "run-b" {
			t.Fatalf("expected only run-b, got %+v", runs)
		}
	})

	t.Run("get run ordered by probe", func(t *testing.T) {
		got, err := repo.GetRun(ctx, "run-b")
		if err != nil {
			t.Fatalf("GetRun: %v", err)
		}
		var names []string
		for _, rec := range got {
			names = append(names, rec.Probe)
		}
		if diff := cmp.Diff([]string{"duckdb", "hello", "postgres"}, names); diff != "" {
			t.Fatalf("probe order mismatch (-want +got):\n%s", diff)
		}
		if got[1].Output != "Hello, bool!\n" || got[1].Expected != "Hello, int!\n" {
			t.Fatalf("output not preserved: %+v", got[1])
		}
		if got[2].Attempts != 3 {
			t.Fatalf("expected 3 attempts, got %d", got[2].Attempts)
		}
	})

	t.Run("get unknown run", func(t *testing.T) {
		_, err := repo.GetRun(ctx, "missing")
		var nf *errors.ErrRunNotFound
		if !stderrors.As(err, &nf) {
			t.Fatalf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("connectivity", func(t *testing.T) {
		if err := repo.CheckConnectivity(ctx); err != nil {
			t.Fatalf("CheckConnectivity: %v", err)
		}
	})
}

func TestMemoryRepository_Contract(t *testing.T) {
	repositoryContract(t, NewMemoryRepository())
}

func TestSQLiteRepository_Contract(t *testing.T) {
	repositoryContract(t, openSQLite(t))
}

func TestMemoryRepository_EmptyListIsNotNil(t *testing.T) {
	runs, err := NewMemoryRepository().ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if runs == nil || len(runs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", runs)
	}
}

func TestOpen_Disabled(t *testing.T) {
	repo, err := Open(context.Background(), config.HistoryConfig{Driver: config.HistoryNone})
	if err != nil || repo != nil {
		t.Fatalf("expected (nil, nil) for disabled history, got (%v, %v)", repo, err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.HistoryConfig{Driver: "mongo"})
	if errors.Code(err) != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMigrationRunner_Idempotent(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "migrate.db")
	repo, err := openSQL(context.Background(), "sqlite", dsn, SQLiteDialect, 1)
	if err != nil {
		t.Fatalf("openSQL: %v", err)
	}
	defer repo.Close()

	runner := NewMigrationRunner(repo.db, SQLiteDialect)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	applied, err := runner.Applied(context.Background())
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if diff := cmp.Diff([]string{"000001"}, applied); diff != "" {
		t.Fatalf("applied versions mismatch (-want +got):\n%s", diff)
	}
}

func TestDialect_Placeholders(t *testing.T) {
	if got := PostgresDialect.placeholders(3); got != "$1, $2, $3" {
		t.Fatalf("unexpected postgres placeholders: %q", got)
	}
	if got := SQLiteDialect.placeholders(2); got != "?, ?" {
		t.Fatalf("unexpected sqlite placeholders: %q", got)
	}
}
