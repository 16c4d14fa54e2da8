// Package persistence provides SQLite-based storage for completed runs and
// the style reference corpus the retrieval stage queries.
package persistence

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"scriptforge/pkg/logx"
)

// Store owns the database connection. All durable state goes through it.
type Store struct {
	db     *sql.DB
	logger *logx.Logger
}

// Open creates (or opens) the database at dbPath and brings the schema up to
// the current version. Safe to call on an existing database.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		dbPath,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db, logger: logx.NewLogger("persistence")}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
