//go:build !nodeps

package deps

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/probe"
)

const bigqueryProject = "capprobe-offline"

func init() {
	register(capabilities.CapabilityBigQuery, func(config.DriversConfig) probe.Probe {
		return &probe.Func{
			ProbeName: "bigquery",
			Caps:      []capabilities.Capability{capabilities.CapabilityBigQuery},
			Want:      bigqueryProject,
			Fn:        bigqueryProjectID,
		}
	})
}

// bigqueryProjectID builds an unauthenticated client. No request is sent.
func bigqueryProjectID(ctx context.Context) (string, error) {
	client, err := bigquery.NewClient(ctx, bigqueryProject, option.WithoutAuthentication())
	if err != nil {
		return "", fmt.Errorf("bigquery: new client: %w", err)
	}
	defer client.Close()
	return client.Project(), nil
}
