// Package journal keeps a local log of API call metadata.
//
// Only the method, path, status, attempt count, duration and error kind of
// each call are stored. Bodies, headers and query strings never are.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/hyperengineering/moltbook"
	"github.com/hyperengineering/moltbook/internal/journal/migrations"
)

const schemaVersion = "1"

// timeLayout has fixed-width fractional seconds so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrClosed is returned when the journal is used after Close.
var ErrClosed = errors.New("journal: closed")

// Entry is one recorded call.
type Entry struct {
	ID         string
	At         time.Time
	Method     string
	Path       string
	StatusCode int
	Attempts   int
	Duration   time.Duration
	ErrorKind  string
}

// Failed reports whether the call ended in an error.
func (e Entry) Failed() bool {
	return e.ErrorKind != ""
}

// Journal manages the local SQLite call journal.
type Journal struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
	path   string
}

var _ moltbook.CallRecorder = (*Journal)(nil)

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("journal: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}
	// One writer at a time; the CLI never issues concurrent calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: enable WAL mode: %w", err)
	}

	j := &Journal{db: db, path: path}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrate() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("journal: set goose dialect: %w", err)
	}
	if err := goose.Up(j.db, "."); err != nil {
		return fmt.Errorf("journal: run migrations: %w", err)
	}

	_, err := j.db.Exec(`INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', ?)`, schemaVersion)
	if err != nil {
		return fmt.Errorf("journal: set schema version: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (j *Journal) Path() string {
	return j.path
}

// RecordCall stores one call record.
func (j *Journal) RecordCall(ctx context.Context, rec moltbook.CallRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}

	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO calls (id, at, method, path, status, attempts, duration_ms, error_kind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ulid.Make().String(),
		at.UTC().Format(timeLayout),
		rec.Method,
		rec.Path,
		rec.StatusCode,
		rec.Attempts,
		rec.Duration.Milliseconds(),
		nullString(rec.ErrorKind),
	)
	if err != nil {
		return fmt.Errorf("journal: insert call: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, at, method, path, status, attempts, duration_ms, error_kind
		FROM calls
		ORDER BY at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query calls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			at         string
			durationMs int64
			errorKind  sql.NullString
		)
		if err := rows.Scan(&e.ID, &at, &e.Method, &e.Path, &e.StatusCode, &e.Attempts, &durationMs, &errorKind); err != nil {
			return nil, fmt.Errorf("journal: scan call: %w", err)
		}
		e.At, _ = time.Parse(timeLayout, at)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.ErrorKind = errorKind.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate calls: %w", err)
	}
	return entries, nil
}

// Stats summarizes the journal.
type Stats struct {
	Calls  int
	Failed int
	// ByKind counts failed calls per error kind.
	ByKind map[string]int
}

// Stats returns totals across all recorded calls.
func (j *Journal) Stats(ctx context.Context) (Stats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return Stats{}, ErrClosed
	}

	st := Stats{ByKind: map[string]int{}}
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calls`).Scan(&st.Calls); err != nil {
		return Stats{}, fmt.Errorf("journal: count calls: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT error_kind, COUNT(*) FROM calls
		WHERE error_kind IS NOT NULL
		GROUP BY error_kind
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("journal: count failures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return Stats{}, fmt.Errorf("journal: scan failures: %w", err)
		}
		st.ByKind[kind] = n
		st.Failed += n
	}
	return st, rows.Err()
}

// Close closes the database. Calling Close twice is safe.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
