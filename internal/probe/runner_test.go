package probe

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
	"github.com/canonica-labs/capprobe/internal/observability"
	"github.com/canonica-labs/capprobe/internal/storage"
)

func newTestRunner(t *testing.T, probes []Probe, opts ...RunnerOption) *Runner {
	t.Helper()
	reg := NewRegistry()
	for _, p := range probes {
		if err := reg.Register(p); err != nil {
			t.Fatalf("Register(%s): %v", p.Name(), err)
		}
	}
	base := []RunnerOption{
		WithRunID("run-1"),
		WithRetry(fastRetry()),
		WithLinked(capabilities.NewCapabilitySet(nil)),
	}
	return NewRunner(reg, append(base, opts...)...)
}

func outcomes(report *Report) map[string]Outcome {
	m := make(map[string]Outcome, len(report.Results))
	for _, r := range report.Results {
		m[r.Probe] = r.Outcome
	}
	return m
}

func TestRunner_AllOutcomes(t *testing.T) {
	// Arrange
	mismatch := literal("mismatch", "Hello, int!\n")
	mismatch.Fn = func(context.Context) (string, error) { return "Hello, bool!\n", nil }

	broken := literal("broken", "")
	broken.Fn = func(context.Context) (string, error) { return "", stderrors.New("driver exploded") }

	gated := literal("gated", "x")
	gated.Caps = []capabilities.Capability{capabilities.CapabilityDuckDB}

	history := storage.NewMemoryRepository()
	core, logs := observer.New(zap.DebugLevel)
	logger := observability.NewProbeLogger(zap.New(core))

	runner := newTestRunner(t,
		[]Probe{literal("ok", "fine"), mismatch, broken, gated},
		WithHistory(history),
		WithLogger(logger),
	)

	// Act
	report, err := runner.Run(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := map[string]Outcome{
		"ok":       OutcomePassed,
		"mismatch": OutcomeFailed,
		"broken":   OutcomeError,
		"gated":    OutcomeSkipped,
	}
	if diff := cmp.Diff(want, outcomes(report)); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}
	if report.Passed {
		t.Error("report should not pass")
	}
	if !errors.IsAssertion(report.Err()) {
		t.Errorf("Report.Err() = %v, want assertion", report.Err())
	}
	if errors.ExitCode(report.Err()) != 1 {
		t.Errorf("exit code = %d", errors.ExitCode(report.Err()))
	}

	records, err := history.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(records) != 4 {
		t.Errorf("recorded %d results, want 4", len(records))
	}
	if logs.Len() != 4 {
		t.Errorf("logged %d entries, want 4", logs.Len())
	}

	summary := logger.Summary()
	if summary.Passed != 1 || summary.Failed != 1 || summary.Skipped != 1 || summary.Errored != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRunner_NamedProbesSortedAndDeduplicated(t *testing.T) {
	runner := newTestRunner(t, []Probe{literal("b", "1"), literal("a", "2"), literal("c", "3")})

	report, err := runner.Run(context.Background(), "c", "a", "c")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var names []string
	for _, r := range report.Results {
		names = append(names, r.Probe)
	}
	if diff := cmp.Diff([]string{"a", "c"}, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if !report.Passed || report.Err() != nil {
		t.Errorf("expected passing report, got %v", report.Err())
	}
}

func TestRunner_UnknownProbe(t *testing.T) {
	runner := newTestRunner(t, []Probe{literal("a", "1")})

	report, err := runner.Run(context.Background(), "a", "nope")
	if report != nil {
		t.Error("expected nil report")
	}
	var nf *errors.ErrProbeNotFound
	if !stderrors.As(err, &nf) {
		t.Fatalf("expected ErrProbeNotFound, got %v", err)
	}
}

func TestRunner_RetriesTransientErrors(t *testing.T) {
	calls := 0
	flaky := literal("flaky", "up")
	flaky.Fn = func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.Transient(stderrors.New("connection refused"))
		}
		return "up", nil
	}

	runner := newTestRunner(t, []Probe{flaky})
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := report.Results[0]
	if res.Outcome != OutcomePassed {
		t.Fatalf("outcome = %s (%s)", res.Outcome, res.Error)
	}
	if res.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", res.Attempts)
	}
}

func TestRunner_HistoryFailureIsSideError(t *testing.T) {
	history := storage.NewMemoryRepository()
	runner := newTestRunner(t, []Probe{literal("a", "1")}, WithHistory(history))

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// Same run id again collides in the store.
	report, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected history error")
	}
	if report == nil || !report.Passed {
		t.Error("probe results should still be reported")
	}
}

func TestRunner_StampsRunMetadata(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	runner := newTestRunner(t, []Probe{literal("a", "1")}, WithClock(func() time.Time { return at }))

	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.RunID != "run-1" || !report.StartedAt.Equal(at) || report.Mode != BuildMode {
		t.Errorf("report = %+v", report)
	}
}

func TestRunner_HelloProbeInCurrentBuild(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Hello()); err != nil {
		t.Fatal(err)
	}

	report, err := NewRunner(reg).Run(context.Background(), HelloName)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := report.Results[0]; got.Outcome != OutcomePassed || got.Output != HelloExpected {
		t.Errorf("hello result = %+v", got)
	}
}
