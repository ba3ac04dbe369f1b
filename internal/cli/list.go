package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/canonica-labs/capprobe/internal/suite"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List probes and the capabilities they need",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList()
		},
	}
}

func (c *CLI) runList() error {
	reg, err := suite.Build(c.cfg)
	if err != nil {
		return err
	}
	list := suite.Describe(reg)

	if c.jsonOutput {
		return c.outputJSON(list)
	}

	c.printf("Build mode: %s\n", list.Mode)
	c.printf("Linked:     %s\n\n", orNone(list.Linked))
	for _, p := range list.Probes {
		status := "✓"
		if !p.Linked {
			status = "-"
		}
		c.printf("%s %-16s requires %s\n", status, p.Name, orNone(p.Requires))
		if len(p.Missing) > 0 {
			c.printf("  → not linked: %s\n", strings.Join(p.Missing, ", "))
		}
	}
	return nil
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
