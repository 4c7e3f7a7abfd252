// Package handler exposes volunteer student management over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/studentvol"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/httputil"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

// Service is the slice of volunteer operations the transport needs.
type Service interface {
	Create(ctx context.Context, persona person.Payload, career, semester string) (studentvol.View, error)
	Update(ctx context.Context, id domain.StudentVolunteerID, persona person.Payload, career, semester *string) (studentvol.View, error)
	SoftDelete(ctx context.Context, id domain.StudentVolunteerID) error
	Reactivate(ctx context.Context, id domain.StudentVolunteerID) (studentvol.View, error)
	Get(ctx context.Context, id domain.StudentVolunteerID) (studentvol.View, error)
	List(ctx context.Context) ([]studentvol.View, error)
	ListPage(ctx context.Context, page, pageSize int) (studentvol.Page, error)
	Search(ctx context.Context, term string) ([]studentvol.View, error)
	FilterByCareer(ctx context.Context, career string) ([]studentvol.View, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the volunteer student routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/student-volunteers", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/search", h.search)
		r.Get("/by-career", h.byCareer)
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

	view, err := h.service.Create(ctx, req.Persona, req.Career, req.Semester)
	if err != nil {
		h.writeServiceError(ctx, w, err, "create volunteer failed")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseStudentVolunteerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[updateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	view, err := h.service.Update(ctx, id, req.Persona, req.Career, req.Semester)
	if err != nil {
		h.writeServiceError(ctx, w, err, "update volunteer failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseStudentVolunteerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.SoftDelete(ctx, id); err != nil {
		h.writeServiceError(ctx, w, err, "delete volunteer failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseStudentVolunteerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Reactivate(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "reactivate volunteer failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseStudentVolunteerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "get volunteer failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// list returns the bare active listing, or one page of it when the request
// carries page or page_size query parameters.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if query.Has("page") || query.Has("page_size") {
		page := parseIntParam(query.Get("page"), 1)
		pageSize := parseIntParam(query.Get("page_size"), 0)
		result, err := h.service.ListPage(ctx, page, pageSize)
		if err != nil {
			h.writeServiceError(ctx, w, err, "list volunteer page failed")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
		return
	}

	views, err := h.service.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "list volunteers failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.service.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.writeServiceError(ctx, w, err, "search volunteers failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) byCareer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.service.FilterByCareer(ctx, r.URL.Query().Get("carrera"))
	if err != nil {
		h.writeServiceError(ctx, w, err, "filter volunteers failed")
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

// parseIntParam tolerates junk: anything non-numeric falls back.
func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
