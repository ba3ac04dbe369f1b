//go:build !nodeps

package deps

import (
	"context"
	"fmt"

	"github.com/snowflakedb/gosnowflake"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/probe"
)

const snowflakeDSN = "capprobe:secret@capprobe/capprobe/public?warehouse=probe"

func init() {
	register(capabilities.CapabilitySnowflake, func(cfg config.DriversConfig) probe.Probe {
		dsn := cfg.Snowflake.DSN
		return &probe.Func{
			ProbeName: "snowflake",
			Caps:      []capabilities.Capability{capabilities.CapabilitySnowflake},
			Want:      "capprobe",
			Fn: func(ctx context.Context) (string, error) {
				c, err := gosnowflake.ParseDSN(snowflakeDSN)
				if err != nil {
					return "", fmt.Errorf("snowflake: parse dsn: %w", err)
				}
				if err := ping(ctx, capabilities.CapabilitySnowflake, "snowflake", dsn); err != nil {
					return "", err
				}
				return c.Account, nil
			},
		}
	})
}
