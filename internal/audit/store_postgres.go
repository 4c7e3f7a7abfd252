package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/tx"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PostgresStore appends audit events to the audit_outbox table. The write
// joins the caller's transaction when one is in context, so an event and
// the row change it describes commit or roll back together. A Relay ships
// outbox rows to Kafka afterwards.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) runner(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	eventID := uuid.New().String()

	payload, err := json.Marshal(newWireEvent(eventID, event))
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	_, err = s.runner(ctx).ExecContext(ctx,
		`INSERT INTO audit_outbox (id, category, payload, created_at) VALUES ($1, $2, $3, $4)`,
		eventID, string(event.Category), payload, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}
