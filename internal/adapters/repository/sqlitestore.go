package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	memoryPath          = ":memory:"
	defaultBusyTimeout  = 5 * time.Second
	defaultMaxOpenConns = 8
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    collection TEXT NOT NULL,
    id         TEXT NOT NULL,
    body       TEXT NOT NULL,
    UNIQUE (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_by_name
    ON documents (collection, json_extract(body, '$.name'));
`

// SQLiteStore persists documents as JSON rows in SQLite.
type SQLiteStore struct {
	db           *sql.DB
	busyTimeout  time.Duration
	maxOpenConns int
}

// OpenSQLite opens (creating if needed) a SQLite document store at path.
// ":memory:" opens a private in-memory database on a single connection.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	s := &SQLiteStore{
		busyTimeout:  defaultBusyTimeout,
		maxOpenConns: defaultMaxOpenConns,
	}
	for _, opt := range opts {
		opt(s)
	}

	dsn := memoryPath
	if path != memoryPath {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
			filepath.Clean(path), s.busyTimeout.Milliseconds())
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == memoryPath {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(s.maxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s.db = db
	return s, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put inserts or replaces a document.
func (s *SQLiteStore) Put(ctx context.Context, collection string, doc Document) error {
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDoc)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES (?, ?, json(?))
		 ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body`,
		collection, doc.ID, string(doc.Data))
	if err != nil {
		if strings.Contains(err.Error(), "malformed JSON") {
			return fmt.Errorf("%w: %s/%s is not valid json", ErrInvalidDoc, collection, doc.ID)
		}
		return fmt.Errorf("put %s/%s: %w", collection, doc.ID, s.mapErr(err))
	}
	return nil
}

// Get returns one document by identifier.
func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, s.mapErr(err))
	}
	return Document{ID: id, Data: []byte(body)}, nil
}

// Where returns documents whose string field equals value. The path is
// inlined so the name index can serve equality lookups.
func (s *SQLiteStore) Where(ctx context.Context, collection, field, value string) ([]Document, error) {
	if err := validField(field); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		`SELECT id, body FROM documents
		 WHERE collection = ? AND json_extract(body, '$.%s') = ? AND json_type(body, '$.%s') = 'text'
		 ORDER BY seq`, field, field)
	return s.query(ctx, "where", query, collection, value)
}

// Scan returns every document of a collection.
func (s *SQLiteStore) Scan(ctx context.Context, collection string) ([]Document, error) {
	return s.query(ctx, "scan",
		`SELECT id, body FROM documents WHERE collection = ? ORDER BY seq`, collection)
}

func (s *SQLiteStore) query(ctx context.Context, op, query string, args ...any) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapErr(err))
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, Document{ID: id, Data: []byte(body)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Count returns the number of documents per collection.
func (s *SQLiteStore) Count(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT collection, COUNT(*) FROM documents GROUP BY collection`)
	if err != nil {
		return nil, fmt.Errorf("count: %w", s.mapErr(err))
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
		out[name] = n
	}
	return out, rows.Err()
}

func (s *SQLiteStore) mapErr(err error) error {
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return err
}
