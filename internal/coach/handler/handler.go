// Package handler exposes coach management over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/coach"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/httputil"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

// Service is the slice of coach operations the transport needs.
type Service interface {
	Create(ctx context.Context, persona person.Payload, specialty, assignedClub string) (coach.View, error)
	Update(ctx context.Context, id domain.CoachID, persona person.Payload, specialty, assignedClub *string) (coach.View, error)
	SoftDelete(ctx context.Context, id domain.CoachID) error
	Reactivate(ctx context.Context, id domain.CoachID) (coach.View, error)
	Get(ctx context.Context, id domain.CoachID) (coach.View, error)
	List(ctx context.Context) ([]coach.View, error)
	Search(ctx context.Context, term string) ([]coach.View, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the coach routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/coaches", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/search", h.search)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/reactivate", h.reactivate)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	view, err := h.service.Create(ctx, req.Persona, req.Specialty, req.AssignedClub)
	if err != nil {
		h.writeServiceError(ctx, w, err, "create coach failed")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseCoachID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[updateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	view, err := h.service.Update(ctx, id, req.Persona, req.Specialty, req.AssignedClub)
	if err != nil {
		h.writeServiceError(ctx, w, err, "update coach failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseCoachID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.SoftDelete(ctx, id); err != nil {
		h.writeServiceError(ctx, w, err, "delete coach failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseCoachID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Reactivate(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "reactivate coach failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseCoachID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "get coach failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.service.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "list coaches failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.service.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.writeServiceError(ctx, w, err, "search coaches failed")
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
