package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/platform/kafka/consumer"
)

// Materializer consumes relayed audit events and writes them to the
// queryable audit_log table. Inserts are keyed by event id with ON
// CONFLICT DO NOTHING, so redelivered records land exactly once.
type Materializer struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewMaterializer(db *sql.DB, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{db: db, logger: logger}
}

// Handle implements consumer.Handler.
func (m *Materializer) Handle(ctx context.Context, msg *consumer.Message) error {
	var event wireEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// Redelivery cannot fix a malformed payload. Log and move on so
		// one bad record does not wedge the consumer group.
		m.logger.WarnContext(ctx, "skipping malformed audit record",
			"topic", msg.Topic,
			"error", err,
		)
		return nil
	}

	_, err := m.db.ExecContext(ctx,
		`INSERT INTO audit_log (event_id, category, action, role, record_id, external_ref, national_id, outcome, reason, request_id, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (event_id) DO NOTHING`,
		event.EventID,
		event.Category,
		event.Action,
		event.Role,
		event.RecordID,
		event.ExternalRef,
		event.NationalID,
		event.Outcome,
		event.Reason,
		event.RequestID,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("materialize audit event %s: %w", event.EventID, err)
	}
	return nil
}
