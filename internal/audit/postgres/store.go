// Package postgres persists audit events in PostgreSQL for deployments that
// need the trail to survive restarts and be queryable.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"curia/internal/audit"
)

type Store struct {
	db *sql.DB
}

// Open connects with the lib/pq driver and makes sure the events table
// exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping audit db: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection pool. Used by tests.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id         TEXT PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			subject    TEXT NOT NULL,
			action     TEXT NOT NULL,
			decision   TEXT NOT NULL,
			reason     TEXT NOT NULL DEFAULT '',
			actor      TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// EnsureSchema creates the events table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.ensureSchema(ctx)
}

func (s *Store) Append(ctx context.Context, e audit.Event) error {
	query := `
		INSERT INTO audit_events (id, ts, subject, action, decision, reason, actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query, e.ID, e.Timestamp, e.Subject, e.Action, e.Decision, e.Reason, e.Actor)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByAction(ctx context.Context, action string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, subject, action, decision, reason, actor
		FROM audit_events
		WHERE action = $1
		ORDER BY ts ASC
	`, action)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var e audit.Event
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Subject, &e.Action, &e.Decision, &e.Reason, &e.Actor); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
