// Package handler exposes enrollment over HTTP, including the real-time
// duplicate pre-check used by registration forms.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/athlete"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/enrollment"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/httputil"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

// Service is the slice of enrollment operations the transport needs.
type Service interface {
	Enroll(ctx context.Context, persona person.Payload, fields athlete.Fields, enrollFields enrollment.Fields) (enrollment.View, error)
	Update(ctx context.Context, id domain.EnrollmentID, persona person.Payload, fields athlete.Fields, enrollFields enrollment.Fields) (enrollment.View, error)
	ToggleEnabled(ctx context.Context, id domain.EnrollmentID) (enrollment.Record, error)
	Get(ctx context.Context, id domain.EnrollmentID) (enrollment.View, error)
	List(ctx context.Context) ([]enrollment.View, error)
	ExistsActiveByNationalID(ctx context.Context, nationalID string) (bool, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the enrollment routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/enrollments", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.enroll)
		r.Get("/check/{nationalID}", h.check)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Post("/{id}/toggle", h.toggle)
	})
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[enrollRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	view, err := h.service.Enroll(ctx, req.Persona, req.Athlete, req.Enrollment)
	if err != nil {
		h.writeServiceError(ctx, w, err, "enroll athlete failed")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseEnrollmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[updateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	view, err := h.service.Update(ctx, id, req.Persona, req.Athlete, req.Enrollment)
	if err != nil {
		h.writeServiceError(ctx, w, err, "update enrollment failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseEnrollmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.service.ToggleEnabled(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "toggle enrollment failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseEnrollmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "get enrollment failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.service.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "list enrollments failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	exists, err := h.service.ExistsActiveByNationalID(ctx, chi.URLParam(r, "nationalID"))
	if err != nil {
		h.writeServiceError(ctx, w, err, "enrollment pre-check failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"exists": exists})
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
