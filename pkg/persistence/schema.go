package persistence

import (
	"database/sql"
	"fmt"
)

// currentSchemaVersion tracks the schema for migration support.
const currentSchemaVersion = 1

func migrate(db *sql.DB) error {
	version, err := schemaVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if version == 0 {
		return createSchema(db)
	}
	if version == currentSchemaVersion {
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	for v := version + 1; v <= currentSchemaVersion; v++ {
		if err := runMigration(db, v); err != nil {
			return fmt.Errorf("migration to version %d failed: %w", v, err)
		}
		if err := setSchemaVersion(db, v); err != nil {
			return fmt.Errorf("failed to record schema version %d: %w", v, err)
		}
	}
	return nil
}

func runMigration(db *sql.DB, version int) error {
	switch version {
	default:
		return fmt.Errorf("unknown migration version: %d", version)
	}
}

func createSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)`,

		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			mode TEXT NOT NULL,
			outcome TEXT NOT NULL,
			research_status TEXT NOT NULL DEFAULT '',
			topic_type TEXT NOT NULL DEFAULT '',
			research_quality INTEGER NOT NULL DEFAULT 0,
			variant_count INTEGER NOT NULL DEFAULT 0,
			gate_verdict TEXT NOT NULL DEFAULT '',
			gate_score INTEGER NOT NULL DEFAULT 0,
			revision_count INTEGER NOT NULL DEFAULT 0,
			best_variant INTEGER NOT NULL DEFAULT 0,
			final_text TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_topic ON runs(topic)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,

		`CREATE TABLE IF NOT EXISTS style_refs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			mode TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			keywords TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_style_refs_kind ON style_refs(kind)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return setSchemaVersion(db, currentSchemaVersion)
}

func schemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`,
	).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(db *sql.DB, version int) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, version)
	return err
}
