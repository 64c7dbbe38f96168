// Package memory handles persistent assistant storage using SQLite.
//
// The core treats this as a key/value + text-search service: store a piece
// of content under a category, search it back by terms.
package memory

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	// SQLite driver (required for database/sql registration).
	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/argus-ai/argus/internal/errors"
)

// Store manages the assistant database.
type Store struct {
	db *sql.DB
}

// Entry is one stored memory.
type Entry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// Open opens the SQLite database at the given path, creating the file and
// schema if they don't exist.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMemoryUnavailable, "create data directory", apperrors.CategorySystem)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMemoryUnavailable, "open database", apperrors.CategorySystem)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, apperrors.Wrap(err, apperrors.CodeMemoryUnavailable, "set pragma", apperrors.CategorySystem)
		}
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying connection for collaborators that persist
// into the same database (e.g. the protocol archive).
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id         TEXT PRIMARY KEY,
		content    TEXT NOT NULL,
		category   TEXT NOT NULL DEFAULT 'general',
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_memories_category ON memories(category);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);

	CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
		content,
		content='memories',
		content_rowid='rowid'
	);

	CREATE TRIGGER IF NOT EXISTS memories_fts_insert AFTER INSERT ON memories BEGIN
		INSERT INTO memories_fts(rowid, content) VALUES (new.rowid, new.content);
	END;

	CREATE TRIGGER IF NOT EXISTS memories_fts_delete AFTER DELETE ON memories BEGIN
		INSERT INTO memories_fts(memories_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
	END;
	`
	if _, err := s.db.Exec(schema); err != nil {
		return apperrors.Wrap(err, apperrors.CodeMemoryUnavailable, "initialize schema", apperrors.CategorySystem)
	}
	return nil
}

// StoreMemory persists content under a category and returns the generated ID.
func (s *Store) StoreMemory(ctx context.Context, content, category string) (string, error) {
	if s == nil || s.db == nil {
		return "", apperrors.System(apperrors.CodeMemoryUnavailable, "memory store not initialized")
	}
	if strings.TrimSpace(content) == "" {
		return "", apperrors.User(apperrors.CodeMemoryStoreFailed, "content required")
	}
	if category == "" {
		category = "general"
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (id, content, category, created_at)
		VALUES (?, ?, ?, ?)
	`, id, content, category, time.Now().Unix())
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeMemoryStoreFailed, "insert memory", apperrors.CategorySystem)
	}
	return id, nil
}

// Search returns memories matching the terms, best match first.
// Falls back to a LIKE scan when the terms contain no searchable tokens.
func (s *Store) Search(ctx context.Context, terms string) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, apperrors.System(apperrors.CodeMemoryUnavailable, "memory store not initialized")
	}

	query := ftsQuery(terms)
	if query == "" {
		return s.Recent(ctx, 10)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.content, m.category, m.created_at
		FROM memories_fts f
		JOIN memories m ON m.rowid = f.rowid
		WHERE memories_fts MATCH ?
		ORDER BY rank
		LIMIT 20
	`, query)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMemoryRetrieveFailed, "search memories", apperrors.CategorySystem)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Recent returns the most recently stored memories, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, category, created_at
		FROM memories
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMemoryRetrieveFailed, "list memories", apperrors.CategorySystem)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Content, &e.Category, &createdAt); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeMemoryRetrieveFailed, "scan memory row", apperrors.CategorySystem)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ftsQuery builds an OR query of quoted tokens so user punctuation
// cannot break FTS5 syntax.
func ftsQuery(terms string) string {
	fields := strings.Fields(terms)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, `"'?!.,:;`)
		if f == "" {
			continue
		}
		tokens = append(tokens, `"`+strings.ReplaceAll(f, `"`, ``)+`"`)
	}
	return strings.Join(tokens, " OR ")
}
