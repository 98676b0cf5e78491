// Package postgres persists the audit history next to the registry tables so
// it survives restarts.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ledgerpass/internal/audit"
	"ledgerpass/pkg/domain"
	txctx "ledgerpass/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append is idempotent on event ID. Inside a registry transaction the row
// commits or rolls back with it.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var exec execer = s.db
	if tx, ok := txctx.From(ctx); ok {
		exec = tx
	}
	_, err := exec.ExecContext(ctx, `
		INSERT INTO audit_events (id, timestamp, height, actor, subject, action, detail, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		event.ID,
		event.Timestamp,
		int64(event.Height),
		string(event.Actor),
		event.Subject,
		string(event.Action),
		event.Detail,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns events oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, height, actor, subject, action, detail, request_id
		FROM audit_events
		WHERE subject = $1
		ORDER BY height, timestamp`, subject)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event  audit.Event
			height int64
			actor  string
			action string
		)
		if err := rows.Scan(&event.ID, &event.Timestamp, &height, &actor, &event.Subject, &action, &event.Detail, &event.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Height = domain.Height(height)
		event.Actor = domain.Principal(actor)
		event.Action = audit.Action(action)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
