package audit

import "context"

// Store is an append-only sink for audit events. Implementations decide
// durability: the memory store keeps events for tests, the postgres store
// writes to an outbox that a relay ships to Kafka.
type Store interface {
	Append(ctx context.Context, event Event) error
}
