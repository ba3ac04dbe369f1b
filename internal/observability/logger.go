// Package observability provides structured logging for capprobe.
//
// Every probe execution emits: run_id, probe, outcome, attempts, duration,
// build mode, and the error (if any). Failed assertions are logged at error
// level with the observed and expected output.
package observability

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/canonica-labs/capprobe/internal/config"
)

// ProbeLogEntry contains all required fields for probe logging.
type ProbeLogEntry struct {
	// RunID groups all probes executed by one invocation.
	RunID string

	// Probe is the probe name.
	Probe string

	// Outcome is one of "passed", "failed", "skipped", "error".
	Outcome string

	// Mode is the build mode, "deps" or "nodeps".
	Mode string

	// Output is what the probe produced. Empty for skipped probes.
	Output string

	// Expected is the literal the output was checked against.
	Expected string

	// Attempts is how many times the probe ran. Zero for skipped probes.
	Attempts int

	// Duration is the wall time across all attempts.
	// Must be non-negative.
	Duration time.Duration

	// Error contains the error message if the probe did not pass.
	Error string
}

// Validate checks that all required fields are present.
func (e *ProbeLogEntry) Validate() error {
	if e.RunID == "" {
		return fmt.Errorf("observability: run_id is required")
	}
	if e.Probe == "" {
		return fmt.Errorf("observability: probe is required")
	}
	switch e.Outcome {
	case "passed", "failed", "skipped", "error":
	default:
		return fmt.Errorf("observability: unknown outcome %q", e.Outcome)
	}
	if e.Duration < 0 {
		return fmt.Errorf("observability: duration cannot be negative")
	}
	return nil
}

// ProbeLogger is the interface for probe logging.
type ProbeLogger interface {
	// LogProbe logs a probe execution event.
	// Returns an error if the entry is invalid or the context is done.
	LogProbe(ctx context.Context, entry ProbeLogEntry) error

	// Summary returns aggregated outcome counts.
	Summary() *Summary
}

// Summary represents aggregated probe outcomes.
type Summary struct {
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	Errored     int           `json:"errored"`
	TopFailures []FailureStat `json:"top_failures"`
}

// FailureStat counts failures per probe.
type FailureStat struct {
	Probe string `json:"probe"`
	Count int    `json:"count"`
}

// NewZapLogger builds a zap logger from the logging configuration.
// debug forces debug level regardless of cfg.Level.
func NewZapLogger(cfg config.LoggingConfig, debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = cfg.Format
	if zcfg.Encoding == "" {
		zcfg.Encoding = "console"
	}
	if zcfg.Encoding == "console" {
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.DisableStacktrace = true

	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}
	if debug {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// ZapLogger implements ProbeLogger on top of a zap.Logger.
// It keeps outcome counters, not entries, so a long-lived logger stays small.
type ZapLogger struct {
	log *zap.Logger

	mu       sync.RWMutex
	counts   map[string]int
	failures map[string]int
}

// NewProbeLogger creates a ProbeLogger writing to log.
func NewProbeLogger(log *zap.Logger) *ZapLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapLogger{
		log:      log.Named("probe"),
		counts:   make(map[string]int),
		failures: make(map[string]int),
	}
}

// LogProbe logs a probe execution event.
func (l *ZapLogger) LogProbe(ctx context.Context, entry ProbeLogEntry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("observability: context error: %w", err)
	}

	if err := entry.Validate(); err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("run_id", entry.RunID),
		zap.String("probe", entry.Probe),
		zap.String("outcome", entry.Outcome),
		zap.String("mode", entry.Mode),
		zap.Int("attempts", entry.Attempts),
		zap.Int64("duration_ms", entry.Duration.Milliseconds()),
	}

	switch entry.Outcome {
	case "failed":
		fields = append(fields,
			zap.String("output", entry.Output),
			zap.String("expected", entry.Expected),
			zap.String("error", entry.Error),
		)
		l.log.Error("probe assertion failed", fields...)
	case "error":
		fields = append(fields, zap.String("error", entry.Error))
		l.log.Error("probe error", fields...)
	case "skipped":
		fields = append(fields, zap.String("reason", entry.Error))
		l.log.Info("probe skipped", fields...)
	default:
		l.log.Debug("probe passed", append(fields, zap.String("output", entry.Output))...)
	}

	l.mu.Lock()
	l.counts[entry.Outcome]++
	if entry.Outcome == "failed" || entry.Outcome == "error" {
		l.failures[entry.Probe]++
	}
	l.mu.Unlock()

	return nil
}

// Summary returns aggregated probe outcomes.
func (l *ZapLogger) Summary() *Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := &Summary{
		Passed:      l.counts["passed"],
		Failed:      l.counts["failed"],
		Skipped:     l.counts["skipped"],
		Errored:     l.counts["error"],
		TopFailures: []FailureStat{},
	}

	for probe, count := range l.failures {
		summary.TopFailures = append(summary.TopFailures, FailureStat{Probe: probe, Count: count})
	}
	sort.Slice(summary.TopFailures, func(i, j int) bool {
		if summary.TopFailures[i].Count != summary.TopFailures[j].Count {
			return summary.TopFailures[i].Count > summary.TopFailures[j].Count
		}
		return summary.TopFailures[i].Probe < summary.TopFailures[j].Probe
	})
	if len(summary.TopFailures) > 5 {
		summary.TopFailures = summary.TopFailures[:5]
	}

	return summary
}

// Sync flushes the underlying zap logger.
func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}

// NoopLogger is a logger that discards all logs.
// Useful for testing or when logging is disabled.
type NoopLogger struct{}

// NewNoopLogger creates a new no-op logger.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

// LogProbe does nothing and always succeeds.
func (l *NoopLogger) LogProbe(ctx context.Context, entry ProbeLogEntry) error {
	return nil
}

// Summary returns an empty summary for the no-op logger.
func (l *NoopLogger) Summary() *Summary {
	return &Summary{TopFailures: []FailureStat{}}
}
