// Package history stores the guard's event ledger in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quicksave-guard/internal/guard"
	"quicksave-guard/internal/history/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store is a ledger that can also be read back.
type Store interface {
	guard.Ledger
	// List returns up to limit events, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]guard.Event, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens the database at path, migrating it to the latest
// schema. path can be a file path or ":memory:".
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// Record appends ev to the ledger.
func (s *SQLiteStore) Record(ev guard.Event) error {
	_, err := s.db.Exec(
		"INSERT INTO events (run_id, kind, target, detail, created_at) VALUES (?, ?, ?, ?, ?)",
		ev.RunID, string(ev.Kind), ev.Target, ev.Detail, ev.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording %s event: %w", ev.Kind, err)
	}
	return nil
}

// List returns up to limit events, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]guard.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, kind, target, detail, created_at FROM events ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []guard.Event
	for rows.Next() {
		var (
			ev        guard.Event
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&ev.RunID, &kind, &ev.Target, &ev.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.Kind = guard.EventKind(kind)
		ev.At = time.UnixMilli(createdAt).UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NopStore records nothing and lists nothing.
type NopStore struct {
	guard.NopLedger
}

func (NopStore) List(context.Context, int) ([]guard.Event, error) { return nil, nil }
func (NopStore) Close() error                                     { return nil }

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = NopStore{}
)
