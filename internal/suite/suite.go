// Package suite assembles the probe registry and runner from configuration.
package suite

import (
	"fmt"

	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/deps"
	"github.com/canonica-labs/capprobe/internal/errors"
	"github.com/canonica-labs/capprobe/internal/manifest"
	"github.com/canonica-labs/capprobe/internal/observability"
	"github.com/canonica-labs/capprobe/internal/probe"
	"github.com/canonica-labs/capprobe/internal/storage"
)

// Build registers the hello probe, every linked dependency probe and the
// manifest probes named by cfg, then narrows the set to probes.enabled.
func Build(cfg *config.Config) (*probe.Registry, error) {
	all := []probe.Probe{probe.Hello()}
	all = append(all, deps.Probes(cfg.Drivers)...)

	if cfg.Manifest != "" {
		m, err := manifest.Load(cfg.Manifest)
		if err != nil {
			return nil, err
		}
		fromManifest, err := m.BuildProbes()
		if err != nil {
			return nil, err
		}
		all = append(all, fromManifest...)
	}

	reg := probe.NewRegistry()
	for _, p := range all {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}

	if len(cfg.Probes.Enabled) == 0 {
		return reg, nil
	}

	enabled := probe.NewRegistry()
	for _, name := range cfg.Probes.Enabled {
		p, ok := reg.Get(name)
		if !ok {
			return nil, errors.NewInvalidConfig("probes.enabled", fmt.Sprintf("unknown probe %q", name))
		}
		if err := enabled.Register(p); err != nil {
			return nil, errors.NewInvalidConfig("probes.enabled", fmt.Sprintf("probe %q listed twice", name))
		}
	}
	return enabled, nil
}

// Retry converts the configured retry policy.
func Retry(cfg config.RetryConfig) probe.RetryConfig {
	rc := probe.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		rc.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialDelay > 0 {
		rc.InitialDelay = cfg.InitialDelay
	}
	if cfg.MaxDelay > 0 {
		rc.MaxDelay = cfg.MaxDelay
	}
	return rc
}

// NewRunner builds the registry and wraps it in a runner. history may be nil.
func NewRunner(cfg *config.Config, logger observability.ProbeLogger, history storage.HistoryRepository) (*probe.Runner, error) {
	reg, err := Build(cfg)
	if err != nil {
		return nil, err
	}
	return probe.NewRunner(reg,
		probe.WithLogger(logger),
		probe.WithHistory(history),
		probe.WithRetry(Retry(cfg.Probes.Retry)),
	), nil
}
