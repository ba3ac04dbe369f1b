// Package models provides shared data models for the capprobe public API.
package models

import (
	"time"
)

// HealthResponse is the body of the liveness endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// ProbeInfo describes a registered probe.
type ProbeInfo struct {
	Name     string   `json:"name"`
	Requires []string `json:"requires"`
	Missing  []string `json:"missing,omitempty"`
	Linked   bool     `json:"linked"`
	Expected string   `json:"expected"`
}

// ProbeList is the API response for the probe listing.
type ProbeList struct {
	Mode   string      `json:"mode"`
	Linked []string    `json:"linked"`
	Probes []ProbeInfo `json:"probes"`
}

// RunSummary is the API representation of one recorded run.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Mode      string    `json:"mode"`
	StartedAt time.Time `json:"started_at"`
	Probes    int       `json:"probes"`
	Failed    int       `json:"failed"`
}

// RunList is the API response for the run history listing.
type RunList struct {
	Runs []RunSummary `json:"runs"`
}

// RunResult is the API representation of one recorded probe result.
type RunResult struct {
	Probe      string `json:"probe"`
	Outcome    string `json:"outcome"`
	Output     string `json:"output"`
	Expected   string `json:"expected"`
	Error      string `json:"error,omitempty"`
	Attempts   int    `json:"attempts"`
	DurationMS int64  `json:"duration_ms"`
}

// RunDetail is the API response for a single run.
type RunDetail struct {
	RunID     string      `json:"run_id"`
	Mode      string      `json:"mode"`
	StartedAt time.Time   `json:"started_at"`
	Results   []RunResult `json:"results"`
}

// ErrorResponse is the API response for errors.
type ErrorResponse struct {
	Error      string `json:"error"`
	Reason     string `json:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Code       int    `json:"code"`
}
