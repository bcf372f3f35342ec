// Package sqlite implements history.Store on an embedded SQLite database
// file, so the scan history needs no external services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doug-martin/goqu/v9"

	// goqu needs the dialect registered before Dialect("sqlite3") is usable.
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/pressly/goose/v3"

	// database/sql driver, registered under the name "sqlite".
	_ "modernc.org/sqlite"

	root "scanio"
	"scanio/pkg/history"
)

// Options configure the SQLite history store.
type Options struct {
	// Path is the database file location. The parent directory is created
	// when missing.
	Path string
}

// SQLite implements history.Store backed by a single database file.
type SQLite struct {
	db      *sql.DB
	builder *goqu.Database
}

// New opens (or creates) the database at options.Path, applies the
// connection pragmas and runs any pending migrations.
func New(ctx context.Context, options Options) (*SQLite, error) {
	if dir := filepath.Dir(options.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", options.Path)
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite database: %w", err)
	}

	// a single connection avoids writer lock contention in the driver
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("could not apply %q: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &SQLite{
		db:      db,
		builder: goqu.Dialect("sqlite3").DB(db),
	}, nil
}

// migrate brings the schema up to the latest version using the migrations
// embedded at the module root.
func migrate(db *sql.DB) error {
	goose.SetBaseFS(root.Migrations)
	// goose prints applied versions to stdout by default, which would mix
	// into the interactive prompt.
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("could not set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("could not migrate sqlite database: %w", err)
	}

	return nil
}

// Close closes the underlying database handle.
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("could not close sqlite database: %w", err)
	}

	return nil
}

// Ensure SQLite conforms to the history.Store interface at compile time.
var _ history.Store = (*SQLite)(nil)
