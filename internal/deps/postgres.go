//go:build !nodeps

package deps

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/probe"
)

const postgresURL = "postgres://capprobe@localhost:5432/capprobe?sslmode=disable"

func init() {
	register(capabilities.CapabilityPostgres, func(cfg config.DriversConfig) probe.Probe {
		dsn := cfg.Postgres.DSN
		return &probe.Func{
			ProbeName: "postgres",
			Caps:      []capabilities.Capability{capabilities.CapabilityPostgres},
			Want:      "dbname=capprobe",
			Fn: func(ctx context.Context) (string, error) {
				out, err := postgresConnString()
				if err != nil {
					return "", err
				}
				if err := ping(ctx, capabilities.CapabilityPostgres, "postgres", dsn); err != nil {
					return "", err
				}
				return out, nil
			},
		}
	})
}

// postgresConnString converts a fixed URL to key/value form and reports the
// database keyword it found. pq quotes every value; the quotes are stripped.
func postgresConnString() (string, error) {
	conn, err := pq.ParseURL(postgresURL)
	if err != nil {
		return "", fmt.Errorf("postgres: parse url: %w", err)
	}
	for _, kv := range strings.Fields(conn) {
		if v, ok := strings.CutPrefix(kv, "dbname="); ok {
			return "dbname=" + strings.Trim(v, "'"), nil
		}
	}
	return conn, nil
}
