package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/canonica-labs/capprobe/internal/observability"
	"github.com/canonica-labs/capprobe/internal/server"
	"github.com/canonica-labs/capprobe/internal/suite"
)

func (c *CLI) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve probes and run history over HTTP",
		Long: `Start the HTTP server.

Endpoints:
  GET  /healthz                    liveness
  GET  /readyz                     run every probe; 503 on failure
  GET  /api/v1/probes              list probes
  POST /api/v1/probes/{name}/run   run one probe; 422 on failure
  GET  /api/v1/runs                list recorded runs
  GET  /api/v1/runs/{runID}        show one run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides server.addr)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	history, err := c.openHistory(ctx)
	if err != nil {
		return err
	}
	if history != nil {
		defer history.Close()
	}

	runner, err := suite.NewRunner(c.cfg, observability.NewProbeLogger(c.log), history)
	if err != nil {
		return err
	}

	srv := server.New(runner, history, c.log, server.WithVersion(Version))
	c.log.Info("starting capprobe server",
		zap.String("addr", c.cfg.Server.Addr),
		zap.String("version", Version),
		zap.Int("probes", runner.Registry().Len()),
	)
	return srv.ListenAndServe(ctx, c.cfg.Server)
}
