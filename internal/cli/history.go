package cli

import (
	"github.com/spf13/cobra"

	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/errors"
	"github.com/canonica-labs/capprobe/internal/storage"
	"github.com/canonica-labs/capprobe/internal/suite"
	"github.com/canonica-labs/capprobe/pkg/api"
)

func (c *CLI) newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded probe runs",
		Long: `Without arguments, list recent runs newest first.
With a run id, show every probe result of that run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := c.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			if history == nil {
				return errors.NewStorageUnavailable(config.HistoryNone, nil)
			}
			defer history.Close()

			if len(args) == 1 {
				return c.showRun(cmd, history, args[0])
			}
			return c.listRuns(cmd, history, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", api.DefaultRunsLimit, "maximum number of runs to list")

	return cmd
}

func (c *CLI) listRuns(cmd *cobra.Command, history storage.HistoryRepository, limit int) error {
	if limit <= 0 {
		return errors.NewInvalidConfig("limit", "must be a positive integer")
	}
	runs, err := history.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if c.jsonOutput {
		return c.outputJSON(runs)
	}
	if len(runs) == 0 {
		c.println("No runs recorded.")
		return nil
	}
	for _, r := range runs {
		c.printf("%s  %s  %-6s  %d probes, %d failed\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.RunID, r.Mode, r.Probes, r.Failed)
	}
	return nil
}

func (c *CLI) showRun(cmd *cobra.Command, history storage.HistoryRepository, runID string) error {
	records, err := history.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	detail := suite.RunDetail(records)

	if c.jsonOutput {
		return c.outputJSON(detail)
	}
	c.printf("Run %s (%s build) at %s\n", detail.RunID, detail.Mode, detail.StartedAt.Format("2006-01-02 15:04:05"))
	for _, r := range detail.Results {
		c.printf("  %-8s %-16s %q (%d attempt(s), %dms)\n", r.Outcome, r.Probe, r.Output, r.Attempts, r.DurationMS)
		if r.Error != "" {
			c.printf("           → %s\n", firstLine(r.Error))
		}
	}
	return nil
}
