// Package store caches discovery results and records generated agent
// concepts, either in SQLite or in process memory.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/soyeahso/meshbuilder/internal/logging"
)

const memoryPath = ":memory:"

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
}

// DB is the SQLite database behind SQLiteCache.
type DB struct {
	sql  *sql.DB
	path string
	log  *logging.Logger
}

// Open opens or creates the database at path and brings its schema up to
// date. ":memory:" gives a private in-memory database.
func Open(path string, log *logging.Logger) (*DB, error) {
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if path == memoryPath {
		// every pooled connection would otherwise get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{sql: sqlDB, path: path, log: log.Sub("store")}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	ctx := context.Background()
	from, err := db.schemaVersion(ctx)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(ctx, from); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrating cache schema: %w", err)
	}

	db.log.Debug().Str("path", path).Int("schema", latestVersion()).Msg("cache database ready")
	return db, nil
}

func (db *DB) Close() error {
	db.log.Debug().Str("path", db.path).Msg("closing cache database")
	return db.sql.Close()
}

// SQL exposes the connection pool for tests and maintenance queries.
func (db *DB) SQL() *sql.DB {
	return db.sql
}

// schemaVersion returns the highest applied migration, creating the
// bookkeeping table on first use.
func (db *DB) schemaVersion(ctx context.Context) (int, error) {
	if _, err := db.sql.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return 0, fmt.Errorf("creating migrations table: %w", err)
	}

	var v sql.NullInt64
	if err := db.sql.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(v.Int64), nil
}
