package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Topic is the Kafka topic audit events are relayed to. The event category
// rides along as the record key so per-category ordering survives
// partitioning.
const Topic = "sports.audit.events"

const (
	defaultRelayInterval = 5 * time.Second
	defaultRelayBatch    = 100
)

// Publisher is the slice of the Kafka producer the relay needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Relay ships audit_outbox rows to Kafka and stamps them published. Rows
// are marked only after the broker acknowledges, so delivery is
// at-least-once; the materializer deduplicates on event id.
type Relay struct {
	db        *sql.DB
	publisher Publisher
	topic     string
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithRelayInterval overrides how often the relay polls the outbox.
func WithRelayInterval(interval time.Duration) RelayOption {
	return func(r *Relay) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

// WithRelayBatchSize caps how many rows a single poll publishes.
func WithRelayBatchSize(size int) RelayOption {
	return func(r *Relay) {
		if size > 0 {
			r.batchSize = size
		}
	}
}

func NewRelay(db *sql.DB, publisher Publisher, logger *slog.Logger, opts ...RelayOption) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Relay{
		db:        db,
		publisher: publisher,
		topic:     Topic,
		interval:  defaultRelayInterval,
		batchSize: defaultRelayBatch,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls the outbox until ctx is cancelled. A failed poll is logged and
// retried on the next tick; the unpublished rows stay in the outbox.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil {
				r.logger.ErrorContext(ctx, "audit relay flush failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type outboxRow struct {
	id       string
	category string
	payload  []byte
}

// Flush publishes one batch of unpublished outbox rows in insertion order
// and returns how many it shipped. Exported for testability; Run calls it
// on every tick.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, payload FROM audit_outbox WHERE published_at IS NULL ORDER BY created_at, id LIMIT $1`,
		r.batchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("query audit outbox: %w", err)
	}
	defer rows.Close()

	var pending []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.category, &row.payload); err != nil {
			return 0, fmt.Errorf("scan audit outbox row: %w", err)
		}
		pending = append(pending, row)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate audit outbox: %w", err)
	}

	shipped := 0
	for _, row := range pending {
		if err := r.publisher.Publish(ctx, r.topic, []byte(row.category), row.payload); err != nil {
			return shipped, fmt.Errorf("publish audit event %s: %w", row.id, err)
		}
		if _, err := r.db.ExecContext(ctx,
			`UPDATE audit_outbox SET published_at = now() WHERE id = $1`, row.id,
		); err != nil {
			return shipped, fmt.Errorf("mark audit event %s published: %w", row.id, err)
		}
		shipped++
	}
	return shipped, nil
}
