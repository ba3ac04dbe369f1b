//go:build !nodeps

package deps

import (
	"context"
	"fmt"

	"github.com/xwb1989/sqlparser"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/probe"
)

func init() {
	register(capabilities.CapabilitySQLParser, func(config.DriversConfig) probe.Probe {
		return &probe.Func{
			ProbeName: "sqlparser",
			Caps:      []capabilities.Capability{capabilities.CapabilitySQLParser},
			Want:      "select",
			Fn:        parseStatementKind,
		}
	})
}

func parseStatementKind(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stmt, err := sqlparser.Parse("SELECT 2 FROM dual")
	if err != nil {
		return "", fmt.Errorf("sqlparser: %w", err)
	}
	switch stmt.(type) {
	case *sqlparser.Select:
		return "select", nil
	case *sqlparser.Union:
		return "union", nil
	default:
		return fmt.Sprintf("%T", stmt), nil
	}
}
