package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/manifest"
	"github.com/canonica-labs/capprobe/internal/probe"
	"github.com/canonica-labs/capprobe/internal/suite"
)

func (c *CLI) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run system diagnostics",
		Long: `Run system diagnostics.

Checks:
  - configuration
  - probe manifest
  - history store connectivity
  - linked capabilities`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDoctor(cmd.Context())
		},
	}
}

func (c *CLI) runDoctor(ctx context.Context) error {
	checks := []DiagnosticCheck{
		c.checkConfig(),
		c.checkManifest(),
		c.checkHistory(ctx),
		c.checkCapabilities(),
	}

	allPassed := true
	for _, check := range checks {
		if !check.Passed {
			allPassed = false
		}
	}

	if c.jsonOutput {
		return c.outputJSON(map[string]interface{}{
			"checks":     checks,
			"all_passed": allPassed,
		})
	}

	c.println("capprobe diagnostics")
	c.println("====================")
	c.println("")
	for _, check := range checks {
		c.printCheck(check)
	}
	c.println("")

	if allPassed {
		c.println("✓ All checks passed")
	} else {
		c.println("✗ Some checks failed - see above for details")
	}

	return nil
}

// DiagnosticCheck represents a single diagnostic check result.
type DiagnosticCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (c *CLI) printCheck(check DiagnosticCheck) {
	status := "✗"
	if check.Passed {
		status = "✓"
	}
	c.printf("%s %s: %s\n", status, check.Name, check.Message)
	if check.Details != "" && !check.Passed {
		c.printf("  → %s\n", check.Details)
	}
}

func (c *CLI) checkConfig() DiagnosticCheck {
	check := DiagnosticCheck{Name: "Configuration"}

	if c.cfg == nil {
		check.Message = "No configuration loaded"
		check.Details = "Create capprobe.yaml or use --config flag"
		return check
	}

	if err := c.cfg.Validate(); err != nil {
		check.Message = "Invalid configuration"
		check.Details = firstLine(err.Error())
		return check
	}

	source := c.configPath
	if source == "" {
		source = "defaults and environment"
	}
	check.Passed = true
	check.Message = fmt.Sprintf("Loaded from %s", source)
	return check
}

func (c *CLI) checkManifest() DiagnosticCheck {
	check := DiagnosticCheck{Name: "Probe Manifest"}

	if c.cfg == nil || c.cfg.Manifest == "" {
		check.Passed = true
		check.Message = "None configured"
		return check
	}

	m, err := manifest.Load(c.cfg.Manifest)
	if err != nil {
		check.Message = fmt.Sprintf("Cannot load %s", c.cfg.Manifest)
		check.Details = firstLine(err.Error())
		return check
	}
	if _, err := suite.Build(c.cfg); err != nil {
		check.Message = "Manifest probes cannot be registered"
		check.Details = firstLine(err.Error())
		return check
	}

	check.Passed = true
	check.Message = fmt.Sprintf("%d probe(s) from %s", len(m.Probes), c.cfg.Manifest)
	return check
}

func (c *CLI) checkHistory(ctx context.Context) DiagnosticCheck {
	check := DiagnosticCheck{Name: "History Store"}

	if c.cfg == nil {
		check.Message = "No configuration loaded"
		return check
	}
	driver := c.cfg.History.Driver
	if driver == config.HistoryNone || driver == "" {
		check.Passed = true
		check.Message = "Disabled"
		return check
	}

	repo, err := c.openHistory(ctx)
	if err != nil {
		check.Message = fmt.Sprintf("Cannot open %s store", driver)
		check.Details = firstLine(err.Error())
		return check
	}
	defer repo.Close()

	if err := repo.CheckConnectivity(ctx); err != nil {
		check.Message = fmt.Sprintf("%s store unreachable", driver)
		check.Details = firstLine(err.Error())
		return check
	}

	check.Passed = true
	check.Message = fmt.Sprintf("Connected (%s)", driver)
	return check
}

func (c *CLI) checkCapabilities() DiagnosticCheck {
	check := DiagnosticCheck{Name: "Linked Capabilities"}

	linked := capabilities.Linked().Slice()
	names := make([]string, len(linked))
	for i, lc := range linked {
		names[i] = lc.String()
	}

	// A nodeps build links nothing and that is expected.
	check.Passed = true
	if len(names) == 0 {
		check.Message = fmt.Sprintf("None (%s build)", probe.BuildMode)
		return check
	}
	check.Message = fmt.Sprintf("%s (%s build)", strings.Join(names, ", "), probe.BuildMode)
	return check
}
