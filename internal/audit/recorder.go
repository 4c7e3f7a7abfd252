package audit

import (
	"context"
	"log/slog"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

// DefaultBufferSize bounds the recorder inbox. Registration traffic is low;
// a small buffer absorbs bursts without hiding a stuck worker for long.
const DefaultBufferSize = 256

// Recorder accepts events from domain logic and hands them to a background
// worker. Recording never blocks and never fails the calling operation: when
// the buffer is full the event is dropped and the drop is logged. The trail
// serves accountability, it does not gate registrations.
type Recorder struct {
	inbox  chan Event
	logger *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithLogger sets the logger used to report dropped events.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithBufferSize overrides the inbox capacity.
func WithBufferSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.inbox = make(chan Event, n)
		}
	}
}

func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		inbox:  make(chan Event, DefaultBufferSize),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Inbox exposes the event channel for the worker that drains it.
func (r *Recorder) Inbox() <-chan Event {
	return r.inbox
}

// Record fills in category, timestamp and request correlation from the
// context and enqueues the event. Safe to call on a nil receiver so wiring
// audit stays optional.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if r == nil {
		return
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case r.inbox <- event:
	default:
		r.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"role", event.Role,
		)
	}
}
