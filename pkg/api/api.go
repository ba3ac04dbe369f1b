// Package api defines the public HTTP endpoints of the capprobe server.
package api

// API version
const Version = "0.1.0"

// API endpoints
const (
	EndpointHealth   = "/healthz"
	EndpointReady    = "/readyz"
	EndpointProbes   = "/api/v1/probes"
	EndpointProbeRun = "/api/v1/probes/{name}/run"
	EndpointRuns     = "/api/v1/runs"
	EndpointRun      = "/api/v1/runs/{runID}"
)

// HTTP headers
const (
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"
	HeaderRunID       = "X-Run-ID"
)

// Content types
const (
	ContentTypeJSON = "application/json"
)

// DefaultRunsLimit is the page size for run listings without ?limit.
const DefaultRunsLimit = 20

// MaxRunsLimit caps ?limit.
const MaxRunsLimit = 500
