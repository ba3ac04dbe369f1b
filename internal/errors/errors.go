// Package errors provides explicit, human-readable error types for capprobe.
// All errors carry a Reason and a Suggestion so a failing build log says what
// broke and what to do about it.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ProbeError is the base error type for all capprobe errors.
type ProbeError struct {
	Code       ErrorCode
	Message    string
	Reason     string
	Suggestion string
	Cause      error
}

// ErrorCode represents the category of error for exit code mapping.
type ErrorCode int

const (
	CodeAssertion  ErrorCode = 1
	CodeValidation ErrorCode = 2
	CodeDependency ErrorCode = 3
	CodeStorage    ErrorCode = 4
	CodeInternal   ErrorCode = 5
)

func (e *ProbeError) Error() string {
	msg := e.Message
	if e.Reason != "" {
		msg = fmt.Sprintf("%s\nReason: %s", msg, e.Reason)
	}
	if e.Suggestion != "" {
		msg = fmt.Sprintf("%s\nSuggestion: %s", msg, e.Suggestion)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s\nCaused by: %v", msg, e.Cause)
	}
	return msg
}

func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the category code. It lets wrapped concrete types be
// classified through a single interface.
func (e *ProbeError) ErrorCode() ErrorCode {
	return e.Code
}

// AssertionViolation is returned when a probe's output does not match the
// expected literal. It is fatal: callers must not retry or swallow it.
type AssertionViolation struct {
	ProbeError
	Probe string
	Got   string
	Want  string
}

// NewAssertionViolation creates a new AssertionViolation.
func NewAssertionViolation(probe, got, want string) *AssertionViolation {
	return &AssertionViolation{
		ProbeError: ProbeError{
			Code:       CodeAssertion,
			Message:    fmt.Sprintf("assertion failed in probe %s", probe),
			Reason:     fmt.Sprintf("got %q, want %q", got, want),
			Suggestion: "the linked dependency does not behave as documented; check its version",
		},
		Probe: probe,
		Got:   got,
		Want:  want,
	}
}

// ErrProbeNotFound is returned when a requested probe is not registered.
type ErrProbeNotFound struct {
	ProbeError
	Probe string
}

// NewProbeNotFound creates a new ErrProbeNotFound.
func NewProbeNotFound(probe string) *ErrProbeNotFound {
	return &ErrProbeNotFound{
		ProbeError: ProbeError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("probe not found: %s", probe),
			Reason:     "no probe registered with this name",
			Suggestion: "list available probes with 'capprobe list'",
		},
		Probe: probe,
	}
}

// ErrDuplicateProbe is returned when two probes register under one name.
type ErrDuplicateProbe struct {
	ProbeError
	Probe string
}

// NewDuplicateProbe creates a new ErrDuplicateProbe.
func NewDuplicateProbe(probe string) *ErrDuplicateProbe {
	return &ErrDuplicateProbe{
		ProbeError: ProbeError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("duplicate probe: %s", probe),
			Reason:     "a probe with this name is already registered",
			Suggestion: "rename the manifest probe",
		},
		Probe: probe,
	}
}

// ErrInvalidManifest is returned when a probe manifest cannot be used.
type ErrInvalidManifest struct {
	ProbeError
	Field string
}

// NewInvalidManifest creates a new ErrInvalidManifest.
func NewInvalidManifest(field, reason string) *ErrInvalidManifest {
	return &ErrInvalidManifest{
		ProbeError: ProbeError{
			Code:       CodeValidation,
			Message:    "invalid probe manifest",
			Reason:     fmt.Sprintf("field '%s': %s", field, reason),
			Suggestion: "see the manifest example in the README",
		},
		Field: field,
	}
}

// ErrInvalidConfig is returned when configuration values are out of range.
type ErrInvalidConfig struct {
	ProbeError
	Key string
}

// NewInvalidConfig creates a new ErrInvalidConfig.
func NewInvalidConfig(key, reason string) *ErrInvalidConfig {
	return &ErrInvalidConfig{
		ProbeError: ProbeError{
			Code:       CodeValidation,
			Message:    "invalid configuration",
			Reason:     fmt.Sprintf("key '%s': %s", key, reason),
			Suggestion: "fix capprobe.yaml or the matching CAPPROBE_ environment variable",
		},
		Key: key,
	}
}

// ErrDependencyUnavailable is returned when an operation needs a capability
// that this build does not link, or a linked dependency cannot be reached.
type ErrDependencyUnavailable struct {
	ProbeError
	Capability string
}

// NewDependencyUnavailable creates a new ErrDependencyUnavailable.
func NewDependencyUnavailable(capability string, cause error) *ErrDependencyUnavailable {
	reason := "not linked in this build"
	if cause != nil {
		reason = "dependency failed its check"
	}
	return &ErrDependencyUnavailable{
		ProbeError: ProbeError{
			Code:       CodeDependency,
			Message:    fmt.Sprintf("dependency unavailable: %s", capability),
			Reason:     reason,
			Suggestion: "rebuild without -tags nodeps, or check the driver configuration",
			Cause:      cause,
		},
		Capability: capability,
	}
}

// ErrStorageUnavailable is returned when the run history store cannot be used.
type ErrStorageUnavailable struct {
	ProbeError
	Driver string
}

// NewStorageUnavailable creates a new ErrStorageUnavailable.
func NewStorageUnavailable(driver string, cause error) *ErrStorageUnavailable {
	return &ErrStorageUnavailable{
		ProbeError: ProbeError{
			Code:       CodeStorage,
			Message:    fmt.Sprintf("history store unavailable (%s)", driver),
			Reason:     "the history database could not be opened or reached",
			Suggestion: "check history.driver and history.dsn, or set history.driver to none",
			Cause:      cause,
		},
		Driver: driver,
	}
}

// ErrRunNotFound is returned when a history lookup misses.
type ErrRunNotFound struct {
	ProbeError
	RunID string
}

// NewRunNotFound creates a new ErrRunNotFound.
func NewRunNotFound(runID string) *ErrRunNotFound {
	return &ErrRunNotFound{
		ProbeError: ProbeError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("run not found: %s", runID),
			Reason:     "no history recorded for this run id",
			Suggestion: "list recent runs with 'capprobe history'",
		},
		RunID: runID,
	}
}

// ErrMigrationFailed is returned when a schema migration cannot be applied.
type ErrMigrationFailed struct {
	ProbeError
	Migration string
}

// NewMigrationFailed creates a new ErrMigrationFailed.
func NewMigrationFailed(migration string, cause error) *ErrMigrationFailed {
	return &ErrMigrationFailed{
		ProbeError: ProbeError{
			Code:       CodeStorage,
			Message:    fmt.Sprintf("migration failed: %s", migration),
			Reason:     "the history schema could not be brought up to date",
			Suggestion: "inspect schema_migrations in the history database",
			Cause:      cause,
		},
		Migration: migration,
	}
}

// Describe returns the ProbeError at the base of err, or nil for foreign
// errors.
func Describe(err error) *ProbeError {
	var d interface{ base() *ProbeError }
	if stderrors.As(err, &d) {
		return d.base()
	}
	return nil
}

func (e *ProbeError) base() *ProbeError { return e }

type coded interface {
	ErrorCode() ErrorCode
}

// Code returns the category of err, or CodeInternal for foreign errors.
func Code(err error) ErrorCode {
	var c coded
	if stderrors.As(err, &c) {
		return c.ErrorCode()
	}
	return CodeInternal
}

// ExitCode maps an error to the process exit status. nil maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return int(Code(err))
}

// IsAssertion reports whether err is, or wraps, an AssertionViolation.
func IsAssertion(err error) bool {
	var av *AssertionViolation
	return stderrors.As(err, &av)
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable. Only connectivity failures should be
// marked; semantic failures never are.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var t *transientError
	return stderrors.As(err, &t)
}
