// Package store keeps a SQLite index of the catalog's rules and flavour text
// for substring search.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"lexive/internal/content"
	"lexive/internal/logging"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Hit is a search result: one catalog entry with a matching field.
type Hit struct {
	Kind  string
	Name  string
	Guild int
}

// IndexStore is the search index. It is safe for concurrent use; a reindex
// replaces the whole content in one transaction.
type IndexStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	logger *zap.Logger
}

// Open opens or creates the index at path.
func Open(path string) (*IndexStore, error) {
	logger := logging.Get(logging.CategoryStore)
	logging.Store("Opening search index at path: %s", path)

	if path != MemoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if path != MemoryPath {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
		}
	}

	s := &IndexStore{db: db, dbPath: path, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *IndexStore) Close() error {
	return s.db.Close()
}

// Index replaces the indexed documents and returns how many were stored.
func (s *IndexStore) Index(ctx context.Context, docs []content.Document) (int, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin index: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return 0, fmt.Errorf("clear index: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO documents (kind, name, field, body, folded, guild) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, d.Kind, d.Name, d.Field, d.Text, strings.ToLower(d.Text), d.Guild); err != nil {
			return 0, fmt.Errorf("index %s %q: %w", d.Kind, d.Name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO index_runs (documents, indexed_at) VALUES (?, ?)", len(docs), start.UnixNano()); err != nil {
		return 0, fmt.Errorf("record index run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit index: %w", err)
	}

	s.logger.Info("search index rebuilt",
		zap.Int("documents", len(docs)),
		zap.Duration("took", time.Since(start)))
	return len(docs), nil
}

// escapeLike escapes the LIKE wildcards of a user pattern.
var escapeLike = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns the entries visible to guild with a field containing
// pattern, case-insensitively, in catalog order. Each entry appears once.
func (s *IndexStore) Search(ctx context.Context, pattern string, guild int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	like := "%" + escapeLike.Replace(strings.ToLower(pattern)) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, name, guild FROM documents
		WHERE folded LIKE ? ESCAPE '\' AND (guild = 0 OR guild = ?)
		GROUP BY kind, name, guild
		ORDER BY MIN(id)`, like, guild)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", pattern, err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Kind, &h.Name, &h.Guild); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	logging.StoreDebug("Search %q for guild %d: %d hits", pattern, guild, len(hits))
	return hits, rows.Err()
}

// Stats reports the document count per kind and the time of the last
// index run.
func (s *IndexStore) Stats(ctx context.Context) (map[string]int, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM documents GROUP BY kind")
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()
	stats := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, time.Time{}, err
		}
		stats[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}
	rows.Close()

	var last sql.NullInt64
	err = s.db.QueryRowContext(ctx, "SELECT MAX(indexed_at) FROM index_runs").Scan(&last)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !last.Valid {
		return stats, time.Time{}, nil
	}
	return stats, time.Unix(0, last.Int64), nil
}
