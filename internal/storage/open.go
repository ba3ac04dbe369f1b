package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers "postgres".
	_ "github.com/lib/pq"
	// Registers "sqlite" (pure Go, no cgo).
	_ "modernc.org/sqlite"

	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/errors"
)

// Open opens the history store selected by cfg.Driver and applies pending
// migrations. It returns (nil, nil) when history is disabled.
func Open(ctx context.Context, cfg config.HistoryConfig) (HistoryRepository, error) {
	switch cfg.Driver {
	case config.HistoryNone, "":
		return nil, nil
	case config.HistoryMemory:
		return NewMemoryRepository(), nil
	case config.HistorySQLite:
		return openSQL(ctx, "sqlite", cfg.DSN, SQLiteDialect, 1)
	case config.HistoryPostgres:
		return openSQL(ctx, "postgres", cfg.DSN, PostgresDialect, 0)
	default:
		return nil, errors.NewInvalidConfig("history.driver", fmt.Sprintf("unknown driver %q", cfg.Driver))
	}
}

// openSQL opens, pings and migrates a database/sql store.
// maxOpen > 0 caps the pool; SQLite needs a single writer.
func openSQL(ctx context.Context, driver, dsn string, dialect Dialect, maxOpen int) (*SQLRepository, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.NewStorageUnavailable(driver, err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	db.SetConnMaxIdleTime(time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.NewStorageUnavailable(driver, err)
	}

	if err := NewMigrationRunner(db, dialect).Run(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return NewSQLRepository(db, dialect), nil
}
