package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/httputil"
)

const healthCheckTimeout = 3 * time.Second

// Pinger confirms a soft dependency is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

// TokenSource mints service tokens against the user module.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Health reports dependency state. Only the database fails the endpoint:
// the cache is an optimization and the user module being down is exactly
// the situation the enrollment path is built to survive, so both are
// reported without turning the instance unready.
type Health struct {
	db       *sql.DB
	cache    Pinger
	upstream TokenSource
}

func NewHealth(db *sql.DB, cache Pinger, upstream TokenSource) *Health {
	return &Health{db: db, cache: cache, upstream: upstream}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{}

	switch {
	case h.db == nil:
		checks["database"] = "memory"
	case h.db.PingContext(ctx) != nil:
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	default:
		checks["database"] = "ok"
	}

	switch {
	case h.cache == nil:
		checks["cache"] = "disabled"
	case h.cache.Health(ctx) != nil:
		checks["cache"] = "down"
	default:
		checks["cache"] = "ok"
	}

	switch h.upstream {
	case nil:
		// No service credentials configured; caller tokens are forwarded
		// as-is and there is nothing to probe.
		checks["user_module"] = "passthrough"
	default:
		if _, err := h.upstream.Token(ctx); err != nil {
			checks["user_module"] = "degraded"
		} else {
			checks["user_module"] = "ok"
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	}
	httputil.WriteJSON(w, status, map[string]any{
		"status": overall,
		"checks": checks,
	})
}
