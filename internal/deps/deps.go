// Package deps probes the third-party libraries capprobe links.
//
// Every probe exercises its library offline so a plain build check needs no
// network. Probes for client drivers also ping a real server when a DSN is
// configured under drivers.<name>.dsn. Files here are compiled only without
// the nodeps tag; in a nodeps build Probes returns nothing.
package deps

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/errors"
	"github.com/canonica-labs/capprobe/internal/probe"
)

// PingTimeout bounds a single live connectivity check.
const PingTimeout = 5 * time.Second

type factory func(cfg config.DriversConfig) probe.Probe

var factories []factory

// register adds a probe factory. Called from init in build-tagged files.
func register(c capabilities.Capability, f factory) {
	capabilities.MarkLinked(c)
	factories = append(factories, f)
}

// Probes returns one probe per linked dependency.
func Probes(cfg config.DriversConfig) []probe.Probe {
	out := make([]probe.Probe, 0, len(factories))
	for _, f := range factories {
		out = append(out, f(cfg))
	}
	return out
}

// selectTwo opens driver on dsn, runs SELECT 2 and returns the scanned value.
func selectTwo(ctx context.Context, driver, dsn string) (string, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return "", fmt.Errorf("%s: open: %w", driver, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	var n int
	if err := db.QueryRowContext(ctx, "SELECT 2").Scan(&n); err != nil {
		return "", fmt.Errorf("%s: select: %w", driver, err)
	}
	return strconv.Itoa(n), nil
}

// ping checks a live server when dsn is set. Connection failures are
// transient so the runner retries them.
func ping(ctx context.Context, c capabilities.Capability, driver, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return errors.NewDependencyUnavailable(c.String(), err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return errors.Transient(errors.NewDependencyUnavailable(c.String(), err))
	}
	return nil
}
