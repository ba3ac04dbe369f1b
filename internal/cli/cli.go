// Package cli provides the command-line interface for capprobe.
// With no subcommand it runs every probe and exits non-zero when a linked
// dependency misbehaves, so it can gate a build.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/errors"
	"github.com/canonica-labs/capprobe/internal/observability"
	"github.com/canonica-labs/capprobe/internal/storage"
)

// Exit codes. They mirror errors.ErrorCode.
const (
	ExitSuccess    = 0
	ExitAssertion  = int(errors.CodeAssertion)
	ExitValidation = int(errors.CodeValidation)
	ExitDependency = int(errors.CodeDependency)
	ExitStorage    = int(errors.CodeStorage)
	ExitInternal   = int(errors.CodeInternal)
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	cfg     *config.Config
	log     *zap.Logger

	stdout io.Writer
	stderr io.Writer

	// Global flags
	configPath   string
	manifestPath string
	jsonOutput   bool
	quiet        bool
	debug        bool
}

// New creates a new CLI instance.
func New() *CLI {
	cli := &CLI{
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    zap.NewNop(),
	}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

// SetOutput redirects command output. Used by tests.
func (c *CLI) SetOutput(stdout, stderr io.Writer) {
	c.stdout = stdout
	c.stderr = stderr
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
}

// SetArgs overrides os.Args[1:]. Used by tests.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// Execute runs the CLI and returns the process exit code.
func (c *CLI) Execute() int {
	return c.ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI with ctx and returns the process exit code.
func (c *CLI) ExecuteContext(ctx context.Context) int {
	err := c.rootCmd.ExecuteContext(ctx)
	_ = c.log.Sync()
	if err == nil {
		return ExitSuccess
	}

	// Assertion failures are already reported per probe.
	if !errors.IsAssertion(err) {
		c.errorf("capprobe: %v\n", err)
	}
	return errors.ExitCode(err)
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capprobe [probe...]",
		Short: "capprobe - build-time dependency capability probe",
		Long: `capprobe checks that the libraries this binary links behave as documented.

It provides:
  • The hello probe: a variant holding the int 2 must greet "Hello, int!"
  • One offline probe per linked driver and parser
  • Greeting probes declared in a YAML manifest
  • Run history in memory, SQLite or PostgreSQL

With no subcommand every probe runs. The exit code is non-zero on failure.
Build with -tags nodeps to bypass every dependency.`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProbes(cmd.Context(), args)
		},
	}

	cmd.SetVersionTemplate(GetVersionString() + "\n")

	// Global flags
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./capprobe.yaml or ~/.capprobe/capprobe.yaml)")
	cmd.PersistentFlags().StringVar(&c.manifestPath, "manifest", "", "probe manifest (overrides config)")
	cmd.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "machine-readable JSON output")
	cmd.PersistentFlags().BoolVar(&c.quiet, "quiet", false, "suppress non-essential output")
	cmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "verbose debug logs")

	cmd.AddCommand(c.newRunCmd())
	cmd.AddCommand(c.newListCmd())
	cmd.AddCommand(c.newHistoryCmd())
	cmd.AddCommand(c.newDoctorCmd())
	cmd.AddCommand(c.newServeCmd())
	cmd.AddCommand(c.newVersionCmd())

	return cmd
}

func (c *CLI) initConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	// Override with flags
	if c.manifestPath != "" {
		c.cfg.Manifest = c.manifestPath
	}

	log, err := observability.NewZapLogger(c.cfg.Logging, c.debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	c.log = log
	return nil
}

// openHistory opens the configured history store. It returns nil when
// history is disabled.
func (c *CLI) openHistory(ctx context.Context) (storage.HistoryRepository, error) {
	repo, err := storage.Open(ctx, c.cfg.History)
	if err != nil {
		return nil, err
	}
	if repo != nil {
		c.log.Debug("history store opened", zap.String("driver", c.cfg.History.Driver))
	}
	return repo, nil
}

// Helper functions for output

func (c *CLI) printf(format string, args ...interface{}) {
	if !c.quiet {
		fmt.Fprintf(c.stdout, format, args...)
	}
}

func (c *CLI) println(args ...interface{}) {
	if !c.quiet {
		fmt.Fprintln(c.stdout, args...)
	}
}

func (c *CLI) errorf(format string, args ...interface{}) {
	fmt.Fprintf(c.stderr, format, args...)
}

func (c *CLI) outputJSON(v interface{}) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
