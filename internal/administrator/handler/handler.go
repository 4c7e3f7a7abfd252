// Package handler exposes administrator management over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/administrator"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/httputil"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

// Service is the slice of administrator operations the transport needs.
type Service interface {
	Create(ctx context.Context, persona person.Payload, position string) (administrator.View, error)
	Update(ctx context.Context, id domain.AdministratorID, persona person.Payload, position *string) (administrator.View, error)
	SoftDelete(ctx context.Context, id domain.AdministratorID) error
	Get(ctx context.Context, id domain.AdministratorID) (administrator.View, error)
	List(ctx context.Context) ([]administrator.View, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the administrator routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/administrators", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	view, err := h.service.Create(ctx, req.Persona, req.Position)
	if err != nil {
		h.writeServiceError(ctx, w, err, "create administrator failed")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseAdministratorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[updateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	view, err := h.service.Update(ctx, id, req.Persona, req.Position)
	if err != nil {
		h.writeServiceError(ctx, w, err, "update administrator failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseAdministratorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.SoftDelete(ctx, id); err != nil {
		h.writeServiceError(ctx, w, err, "delete administrator failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseAdministratorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "get administrator failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.service.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "list administrators failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

// writeServiceError logs server-side faults and writes the mapped response.
// Caller errors pass through without noise.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
