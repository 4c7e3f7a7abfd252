// Package handler exposes athlete read views over HTTP. Enrollment owns the
// write surface.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/athlete"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/httputil"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

// Service is the slice of athlete operations the transport needs.
type Service interface {
	Get(ctx context.Context, id domain.AthleteID) (athlete.View, error)
	List(ctx context.Context) ([]athlete.View, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the athlete routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/athletes", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseAthleteID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "get athlete failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.service.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "list athletes failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
