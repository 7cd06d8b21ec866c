// Package library is the local document store: autosave, the saved-paper
// library, and full-text search over it. One SQLite database holds the
// documents as JSON verbatim plus a capped revision history per document.
package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/perfector/idgen"
)

// ErrNotFound is returned when a document ID does not exist.
var ErrNotFound = errors.New("library: document not found")

// Store wraps the library database.
type Store struct {
	DB    *sql.DB
	newID idgen.Generator
}

// Option customises Open behaviour.
type Option func(*Store)

// WithIDGenerator sets the document ID strategy. Default: prefixed UUIDv7.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Store) { s.newID = gen }
}

// Open opens (or creates) the library database at path with WAL journaling,
// foreign keys and a busy timeout applied, and the schema installed.
func Open(path string, opts ...Option) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("library: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("library: open: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("library: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("library: schema: %w", err)
	}

	s := &Store{
		DB:    db,
		newID: idgen.Prefixed("doc_", idgen.Default),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// OpenMemory opens an in-memory library for testing; the store closes
// automatically via t.Cleanup.
func OpenMemory(t testing.TB, opts ...Option) *Store {
	t.Helper()
	s, err := Open(":memory:", opts...)
	if err != nil {
		t.Fatalf("library.OpenMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}
