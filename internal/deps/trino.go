//go:build !nodeps

package deps

import (
	"context"
	"fmt"
	"net/url"

	"github.com/trinodb/trino-go-client/trino"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/probe"
)

func init() {
	register(capabilities.CapabilityTrino, func(cfg config.DriversConfig) probe.Probe {
		dsn := cfg.Trino.DSN
		return &probe.Func{
			ProbeName: "trino",
			Caps:      []capabilities.Capability{capabilities.CapabilityTrino},
			Want:      "catalog=memory",
			Fn: func(ctx context.Context) (string, error) {
				out, err := trinoCatalog()
				if err != nil {
					return "", err
				}
				if err := ping(ctx, capabilities.CapabilityTrino, "trino", dsn); err != nil {
					return "", err
				}
				return out, nil
			},
		}
	})
}

func trinoCatalog() (string, error) {
	c := &trino.Config{
		ServerURI: "http://capprobe@localhost:8080",
		Catalog:   "memory",
		Schema:    "default",
	}
	dsn, err := c.FormatDSN()
	if err != nil {
		return "", fmt.Errorf("trino: format dsn: %w", err)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("trino: parse dsn: %w", err)
	}
	return "catalog=" + u.Query().Get("catalog"), nil
}
