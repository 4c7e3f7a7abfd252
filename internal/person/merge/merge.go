// Package merge assembles caller-facing views from local state plus a
// best-effort snapshot of the external person record. Local data is never
// discarded in favor of upstream data.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/metrics"
)

// SnapshotFetcher is the slice of the user module client the merger needs.
type SnapshotFetcher interface {
	SearchByRef(ctx context.Context, token string, ref domain.ExternalRef) (*person.Envelope, error)
}

type Merger struct {
	fetcher SnapshotFetcher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Merger)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Merger) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Merger) {
		m.metrics = mx
	}
}

func New(fetcher SnapshotFetcher, opts ...Option) (*Merger, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("snapshot fetcher is required")
	}

	m := &Merger{
		fetcher: fetcher,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Snapshot fetches the current external view of a person. It never fails: a
// degraded user module yields a nil snapshot and the response carries local
// data only. Synthetic references are not sent upstream at all since the user
// module has never heard of them.
func (m *Merger) Snapshot(ctx context.Context, token string, ref domain.ExternalRef) person.Payload {
	if ref.IsZero() || ref.IsSynthetic() {
		return nil
	}

	env, err := m.fetcher.SearchByRef(ctx, token, ref)
	if err != nil {
		if m.metrics != nil {
			m.metrics.IncrementSnapshotMiss()
		}
		m.logger.DebugContext(ctx, "person snapshot unavailable",
			"reference", string(ref),
			"error", err.Error(),
		)
		return nil
	}
	return env.Data()
}

// SnapshotRequired fetches the external view and fails when it cannot be
// obtained. Used where the operation depends on the upstream record.
func (m *Merger) SnapshotRequired(ctx context.Context, token string, ref domain.ExternalRef) (person.Payload, error) {
	if ref.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "could not fetch person data: record has no external reference")
	}
	if ref.IsSynthetic() {
		return nil, dErrors.New(dErrors.CodeValidation, "could not fetch person data: reference is a local placeholder")
	}

	env, err := m.fetcher.SearchByRef(ctx, token, ref)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "could not fetch person data")
	}
	return env.Data(), nil
}

// String is the merge policy for fields held redundantly on both sides: the
// local value wins whenever it is non-empty and the external value only fills
// gaps.
func String(local, external string) string {
	if strings.TrimSpace(local) != "" {
		return local
	}
	return external
}
