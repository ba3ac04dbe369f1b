// Package main is the entrypoint for the capprobe HTTP server.
// It is equivalent to `capprobe serve` with flags instead of subcommands,
// for container images that want a single-purpose binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/errors"
	"github.com/canonica-labs/capprobe/internal/observability"
	"github.com/canonica-labs/capprobe/internal/probe"
	"github.com/canonica-labs/capprobe/internal/server"
	"github.com/canonica-labs/capprobe/internal/storage"
	"github.com/canonica-labs/capprobe/internal/suite"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "capprobe-server: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "config file")
		addr       = flag.String("addr", "", "HTTP listen address (overrides server.addr)")
		manifest   = flag.String("manifest", "", "probe manifest (overrides config)")
		debug      = flag.Bool("debug", false, "verbose debug logs")
		showVer    = flag.Bool("version", false, "Show version")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("capprobe-server %s (commit: %s, built: %s, mode: %s)\n", version, commit, date, probe.BuildMode)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *manifest != "" {
		cfg.Manifest = *manifest
	}

	log, err := observability.NewZapLogger(cfg.Logging, *debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	history, err := storage.Open(ctx, cfg.History)
	if err != nil {
		return err
	}
	if history != nil {
		defer history.Close()
		log.Info("history store ready", zap.String("driver", cfg.History.Driver))
	} else {
		log.Warn("history disabled; run endpoints will answer 404")
	}

	runner, err := suite.NewRunner(cfg, observability.NewProbeLogger(log), history)
	if err != nil {
		return err
	}

	log.Info("capprobe server starting",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("mode", probe.BuildMode),
		zap.Int("probes", runner.Registry().Len()),
	)

	srv := server.New(runner, history, log, server.WithVersion(version))
	if err := srv.ListenAndServe(ctx, cfg.Server); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("capprobe server stopped")
	return nil
}
