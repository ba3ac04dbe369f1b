package probe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
	"github.com/canonica-labs/capprobe/internal/observability"
	"github.com/canonica-labs/capprobe/internal/storage"
)

// Report is the outcome of one runner invocation.
type Report struct {
	RunID     string    `json:"run_id"`
	Mode      string    `json:"mode"`
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
	Passed    bool      `json:"passed"`
}

// Err returns the error that decides the run's exit status: the first
// assertion violation if any, else the first probe error, else nil.
func (r *Report) Err() error {
	var first error
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeFailed:
			return res.Err
		case OutcomeError:
			if first == nil {
				first = res.Err
			}
		}
	}
	return first
}

// Runner executes probes from a registry.
type Runner struct {
	registry *Registry
	logger   observability.ProbeLogger
	history  storage.HistoryRepository
	retry    RetryConfig
	linked   func() capabilities.CapabilitySet
	now      func() time.Time
	newRunID func() string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the probe logger. Default: no-op.
func WithLogger(l observability.ProbeLogger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithHistory persists every result to repo. nil disables history.
func WithHistory(repo storage.HistoryRepository) RunnerOption {
	return func(r *Runner) { r.history = repo }
}

// WithRetry sets the retry policy for transient probe errors.
func WithRetry(cfg RetryConfig) RunnerOption {
	return func(r *Runner) { r.retry = cfg }
}

// WithLinked overrides the linked capability set. Used by tests to
// simulate builds.
func WithLinked(set capabilities.CapabilitySet) RunnerOption {
	return func(r *Runner) { r.linked = func() capabilities.CapabilitySet { return set } }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithRunID makes every run use id. Used by tests.
func WithRunID(id string) RunnerOption {
	return func(r *Runner) { r.newRunID = func() string { return id } }
}

// NewRunner creates a runner over registry.
func NewRunner(registry *Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: registry,
		logger:   observability.NewNoopLogger(),
		retry:    DefaultRetryConfig(),
		linked:   capabilities.Linked,
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the runner's registry.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Run executes the named probes in name order, or every registered probe
// when names is empty. Unknown names fail before any probe runs.
//
// The returned report is always non-nil when the probe set resolved. A
// non-nil error alongside a report means history or logging failed; the
// probe results themselves are still valid.
func (r *Runner) Run(ctx context.Context, names ...string) (*Report, error) {
	probes, err := r.resolve(names)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     r.newRunID(),
		Mode:      BuildMode,
		StartedAt: r.now().UTC(),
		Results:   make([]Result, 0, len(probes)),
		Passed:    true,
	}

	linked := r.linked()
	var sideErr error

	for _, p := range probes {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := r.runOne(ctx, p, linked)
		if res.Outcome == OutcomeFailed || res.Outcome == OutcomeError {
			report.Passed = false
		}
		report.Results = append(report.Results, res)

		if err := r.record(ctx, report, res); err != nil && sideErr == nil {
			sideErr = err
		}
	}

	return report, sideErr
}

func (r *Runner) resolve(names []string) ([]Probe, error) {
	if len(names) == 0 {
		return r.registry.Probes(), nil
	}

	seen := make(map[string]bool, len(names))
	probes := make([]Probe, 0, len(names))
	for _, name := range names {
		p, ok := r.registry.Get(name)
		if !ok {
			return nil, errors.NewProbeNotFound(name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		probes = append(probes, p)
	}

	// Name order keeps runs deterministic regardless of argument order.
	sort.Slice(probes, func(i, j int) bool { return probes[i].Name() < probes[j].Name() })
	return probes, nil
}

func (r *Runner) runOne(ctx context.Context, p Probe, linked capabilities.CapabilitySet) Result {
	res := Result{
		Probe:    p.Name(),
		Expected: p.Expected(),
		Mode:     BuildMode,
	}

	if missing := linked.Missing(p.Requires()); len(missing) > 0 {
		res.Outcome = OutcomeSkipped
		res.Error = "requires unlinked capability: " + joinCaps(missing)
		return res
	}

	start := r.now()
	var out string
	retry := ExecuteWithRetry(ctx, r.retry, func() error {
		var err error
		out, err = p.Run(ctx)
		return err
	})
	res.Attempts = retry.Attempts
	res.Output = out

	if !retry.Success {
		res.Duration = r.now().Sub(start)
		res.Err = retry.LastError
		res.Error = retry.LastError.Error()
		res.Outcome = OutcomeError
		if errors.IsAssertion(retry.LastError) {
			res.Outcome = OutcomeFailed
		}
		return res
	}

	checkErr := p.Check(out)
	res.Duration = r.now().Sub(start)
	switch {
	case checkErr == nil:
		res.Outcome = OutcomePassed
	case errors.IsAssertion(checkErr):
		res.Outcome = OutcomeFailed
		res.Err = checkErr
		res.Error = checkErr.Error()
	default:
		res.Outcome = OutcomeError
		res.Err = checkErr
		res.Error = checkErr.Error()
	}
	return res
}

func (r *Runner) record(ctx context.Context, report *Report, res Result) error {
	if err := r.logger.LogProbe(ctx, observability.ProbeLogEntry{
		RunID:    report.RunID,
		Probe:    res.Probe,
		Outcome:  string(res.Outcome),
		Mode:     res.Mode,
		Output:   res.Output,
		Expected: res.Expected,
		Attempts: res.Attempts,
		Duration: res.Duration,
		Error:    res.Error,
	}); err != nil {
		return err
	}

	if r.history == nil {
		return nil
	}
	if err := r.history.Record(ctx, storage.RunRecord{
		RunID:     report.RunID,
		Probe:     res.Probe,
		Outcome:   string(res.Outcome),
		Mode:      res.Mode,
		Output:    res.Output,
		Expected:  res.Expected,
		Error:     res.Error,
		Attempts:  res.Attempts,
		Duration:  res.Duration,
		StartedAt: report.StartedAt,
	}); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}

func joinCaps(caps []capabilities.Capability) string {
	parts := make([]string, len(caps))
	for i, c := range caps {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
