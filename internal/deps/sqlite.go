//go:build !nodeps

package deps

import (
	"context"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/probe"

	_ "modernc.org/sqlite" // registers "sqlite"
)

func init() {
	register(capabilities.CapabilitySQLite, func(config.DriversConfig) probe.Probe {
		return &probe.Func{
			ProbeName: "sqlite",
			Caps:      []capabilities.Capability{capabilities.CapabilitySQLite},
			Want:      "2",
			Fn: func(ctx context.Context) (string, error) {
				return selectTwo(ctx, "sqlite", ":memory:")
			},
		}
	})
}
