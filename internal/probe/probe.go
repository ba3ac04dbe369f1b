// Package probe runs capability probes.
//
// A probe exercises one or more linked collaborators, produces an output
// string, and checks that output against a known-good expectation. A mismatch
// is an AssertionViolation: it is never retried and it fails the run. Probes
// that need a capability the current build does not link are skipped.
package probe

import (
	"context"
	"time"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
)

// Build modes.
const (
	ModeDeps   = "deps"
	ModeNoDeps = "nodeps"
)

// Probe is a single capability check.
type Probe interface {
	// Name returns the unique name of this probe.
	Name() string

	// Requires returns the capabilities the probe needs linked.
	Requires() []capabilities.Capability

	// Run produces the probe output. Errors marked transient are retried.
	Run(ctx context.Context) (string, error)

	// Check validates output. It returns an *errors.AssertionViolation on
	// mismatch.
	Check(output string) error

	// Expected describes the expectation for logs and reports.
	Expected() string
}

// Outcome is the result status of one probe.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// Result is the outcome of one probe execution.
type Result struct {
	Probe    string        `json:"probe"`
	Outcome  Outcome       `json:"outcome"`
	Output   string        `json:"output"`
	Expected string        `json:"expected"`
	Error    string        `json:"error,omitempty"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
	Mode     string        `json:"mode"`

	// Err is the underlying error for failed and errored results.
	Err error `json:"-"`
}

// Assert compares got against want with exact equality.
func Assert(probe, got, want string) error {
	if got != want {
		return errors.NewAssertionViolation(probe, got, want)
	}
	return nil
}

// Func adapts a function into a Probe with a literal expectation.
type Func struct {
	ProbeName string
	Caps      []capabilities.Capability
	Want      string
	Fn        func(ctx context.Context) (string, error)
}

// Name returns the probe name.
func (f *Func) Name() string { return f.ProbeName }

// Requires returns the required capabilities.
func (f *Func) Requires() []capabilities.Capability { return f.Caps }

// Run calls Fn.
func (f *Func) Run(ctx context.Context) (string, error) { return f.Fn(ctx) }

// Check asserts output equals Want.
func (f *Func) Check(output string) error { return Assert(f.ProbeName, output, f.Want) }

// Expected returns Want.
func (f *Func) Expected() string { return f.Want }
