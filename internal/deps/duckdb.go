//go:build !nodeps && cgo

package deps

import (
	"context"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/probe"

	_ "github.com/marcboeker/go-duckdb" // registers "duckdb"
)

func init() {
	register(capabilities.CapabilityDuckDB, func(config.DriversConfig) probe.Probe {
		return &probe.Func{
			ProbeName: "duckdb",
			Caps:      []capabilities.Capability{capabilities.CapabilityDuckDB},
			Want:      "2",
			Fn: func(ctx context.Context) (string, error) {
				// Empty DSN opens an in-memory database.
				return selectTwo(ctx, "duckdb", "")
			},
		}
	})
}
