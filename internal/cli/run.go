package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/canonica-labs/capprobe/internal/observability"
	"github.com/canonica-labs/capprobe/internal/probe"
	"github.com/canonica-labs/capprobe/internal/suite"
)

func (c *CLI) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [probe...]",
		Short: "Run probes",
		Long: `Run the named probes, or every probe when none are named.

Exit codes:
  0  every probe passed or was skipped
  1  a probe's output did not match its expectation
  2  unknown probe, invalid config or manifest
  3  a dependency could not be reached
  4  the history store is unavailable
  5  internal error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProbes(cmd.Context(), args)
		},
	}
}

func (c *CLI) runProbes(ctx context.Context, names []string) error {
	history, err := c.openHistory(ctx)
	if err != nil {
		// Probes still run; only the record of them is lost.
		c.log.Warn("history store unavailable, run will not be recorded", zap.Error(err))
		history = nil
	}
	if history != nil {
		defer history.Close()
	}

	logger := observability.NewProbeLogger(c.log)
	runner, err := suite.NewRunner(c.cfg, logger, history)
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx, names...)
	if report == nil {
		return err
	}
	if err != nil {
		c.log.Warn("run recorded incompletely", zap.String("run_id", report.RunID), zap.Error(err))
	}

	if c.jsonOutput {
		if err := c.outputJSON(report); err != nil {
			return err
		}
		return report.Err()
	}

	for _, res := range report.Results {
		c.printResult(res)
	}
	s := logger.Summary()
	c.printf("\n%d passed, %d failed, %d skipped, %d errored (run %s, %s build)\n",
		s.Passed, s.Failed, s.Skipped, s.Errored, report.RunID, report.Mode)

	return report.Err()
}

func (c *CLI) printResult(res probe.Result) {
	switch res.Outcome {
	case probe.OutcomePassed:
		c.printf("✓ %s: %s\n", res.Probe, strings.TrimRight(res.Output, "\n"))
	case probe.OutcomeSkipped:
		c.printf("- %s: skipped (%s)\n", res.Probe, res.Error)
	case probe.OutcomeFailed:
		// Failures are printed even with --quiet.
		c.errorf("✗ %s: got %q, want %q\n", res.Probe, res.Output, res.Expected)
	default:
		c.errorf("! %s: %s\n", res.Probe, firstLine(res.Error))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
