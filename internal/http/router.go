// Package httpapi assembles the HTTP surface: the middleware stack, the
// role and enrollment routes, and the health and metrics endpoints.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/cache"
	platformmetrics "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/platform/metrics"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/middleware/auth"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/middleware/metadata"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/middleware/requestid"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/middleware/requesttime"
)

// Registrar mounts a handler's routes on the router. Every role handler
// satisfies it.
type Registrar interface {
	Register(r chi.Router)
}

// Deps collects everything the router mounts.
type Deps struct {
	Logger      *slog.Logger
	Validator   *auth.Validator
	HTTPMetrics *platformmetrics.HTTP
	Health      *Health

	Administrators Registrar
	Coaches        Registrar
	Volunteers     Registrar
	Athletes       Registrar
	Enrollments    Registrar
}

// New builds the full router. Middleware order matters: request id and time
// must exist before anything logs, client metadata before auth so audit
// events see both, and the snapshot scope wraps everything that might talk
// to the user module.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}
	r.Use(auth.Authenticate(deps.Validator, deps.Logger))
	r.Use(snapshotScope)

	if deps.Health != nil {
		r.Get("/healthz", deps.Health.ServeHTTP)
	}
	r.Handle("/metrics", promhttp.Handler())

	deps.Administrators.Register(r)
	deps.Coaches.Register(r)
	deps.Volunteers.Register(r)
	deps.Athletes.Register(r)
	deps.Enrollments.Register(r)

	return r
}

// snapshotScope gives each request its own snapshot cache scope so repeated
// lookups of the same person within one request hit the network once.
func snapshotScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(cache.WithScope(r.Context())))
	})
}
