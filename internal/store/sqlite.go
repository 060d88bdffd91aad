package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite

	"github.com/jpalmerr/hookwatch/internal/event"
)

// SQLiteStore is a [Store] backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema. Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// a single connection keeps ":memory:" databases coherent and avoids
	// "database is locked" under concurrent webhook deliveries
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS events (
	  id          INTEGER PRIMARY KEY,
	  request_id  TEXT    NOT NULL,
	  author      TEXT    NOT NULL,
	  action      TEXT    NOT NULL,
	  from_branch TEXT,
	  to_branch   TEXT    NOT NULL,
	  timestamp   TEXT    NOT NULL,
	  created_at  INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_events_request_id ON events(request_id);
	CREATE INDEX IF NOT EXISTS idx_events_action ON events(action);
	`)
	if err != nil {
		return fmt.Errorf("create events table: %w", err)
	}
	return nil
}

// Save implements [Store].
func (s *SQLiteStore) Save(ctx context.Context, e event.Event) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}

	var from sql.NullString
	if e.FromBranch != nil {
		from = sql.NullString{String: *e.FromBranch, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (request_id, author, action, from_branch, to_branch, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(request_id) DO NOTHING`,
		e.RequestID, e.Author, string(e.Action.Normalize()), from, e.ToBranch, e.Timestamp,
		time.Now().UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("insert event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert event: %w", err)
	}
	return n == 1, nil
}

// Recent implements [Store].
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, author, action, from_branch, to_branch, timestamp
		FROM events
		ORDER BY id DESC
		LIMIT ?`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		var (
			e      event.Event
			action string
			from   sql.NullString
		)
		if err := rows.Scan(&e.RequestID, &e.Author, &action, &from, &e.ToBranch, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Action = event.Action(action)
		if from.Valid {
			e.FromBranch = event.StringPtr(from.String)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Stats implements [Store].
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT action, COUNT(*) FROM events GROUP BY action`)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{ByAction: make(map[string]int)}
	for rows.Next() {
		var (
			action string
			count  int
		)
		if err := rows.Scan(&action, &count); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByAction[action] = count
		stats.Total += count
	}
	return stats, rows.Err()
}

// Close implements [Store].
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
