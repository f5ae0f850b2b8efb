package store

import (
	"database/sql"
	"fmt"
	"time"

	"lexive/internal/logging"
)

// Schema versions:
// v1: documents table (kind, name, field, body, guild)
// v2: folded column for case-insensitive search, index_runs table
const CurrentSchemaVersion = 2

const baseSchema = `
CREATE TABLE IF NOT EXISTS schema_versions (
	version INTEGER NOT NULL,
	applied_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	field TEXT NOT NULL,
	body TEXT NOT NULL,
	guild INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_documents_guild ON documents(guild);
CREATE TABLE IF NOT EXISTS index_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	documents INTEGER NOT NULL,
	indexed_at INTEGER NOT NULL
);
`

// Migration adds a column that older databases lack.
type Migration struct {
	Version int
	Table   string
	Column  string
	Def     string
}

var pendingMigrations = []Migration{
	{2, "documents", "folded", "TEXT NOT NULL DEFAULT ''"},
}

func (s *IndexStore) migrate() error {
	if _, err := s.db.Exec(baseSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	from := schemaVersion(s.db)
	applied := 0
	for _, m := range pendingMigrations {
		if m.Version <= from || columnExists(s.db, m.Table, m.Column) {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		logging.StoreDebug("Executing migration: %s", query)
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("migration %s.%s: %w", m.Table, m.Column, err)
		}
		applied++
	}
	// Rows indexed before v2 have no folded text; the next Index fills it.
	if from < CurrentSchemaVersion {
		if _, err := s.db.Exec(
			"INSERT INTO schema_versions (version, applied_at) VALUES (?, ?)",
			CurrentSchemaVersion, time.Now().UnixNano()); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	}
	logging.Store("Schema ready: version=%d, migrations applied=%d", CurrentSchemaVersion, applied)
	return nil
}

// schemaVersion returns the last recorded version, or 0 for a new database.
func schemaVersion(db *sql.DB) int {
	var version sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_versions").Scan(&version); err != nil {
		logging.StoreDebug("Schema version lookup failed: %v", err)
		return 0
	}
	return int(version.Int64)
}

// columnExists checks if a column exists in a table using PRAGMA table_info.
func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		logging.StoreDebug("PRAGMA table_info(%s) failed: %v", table, err)
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}
