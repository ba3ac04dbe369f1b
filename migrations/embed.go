// Package migrations provides embedded migration SQL files for the run
// history store. The same files are applied to SQLite and PostgreSQL, so they
// stick to the common subset of both dialects.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
