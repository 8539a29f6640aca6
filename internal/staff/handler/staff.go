package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinika/clinika-backend/internal/lookup"
	"github.com/clinika/clinika-backend/internal/staff/service"
	"github.com/clinika/clinika-backend/pkg/errors"
	"github.com/clinika/clinika-backend/pkg/httputil"
	"github.com/clinika/clinika-backend/pkg/logger"
)

// StaffHandler handles employee endpoints
type StaffHandler struct {
	service *service.StaffService
	logger  *logger.Logger
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(svc *service.StaffService, log *logger.Logger) *StaffHandler {
	return &StaffHandler{service: svc, logger: log}
}

// Routes mounts the staff routes. Deleting an employee is admin-only.
func (h *StaffHandler) Routes(admin func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.With(admin).Delete("/{id}", h.Delete)
	}
}

// List returns the merged employee directory, optionally filtered by ?q=.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	_, perPage := httputil.Pagination(r)

	var (
		list interface{}
		err  error
	)
	if term != "" {
		list, err = h.service.Search(r.Context(), term, perPage)
	} else {
		list, err = h.service.Directory(r.Context())
	}
	if err != nil {
		if lookup.IsCancellation(err) {
			// The client went away or a newer request superseded this one.
			return
		}
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, list)
}

// Get returns one employee
func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	emp, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, emp)
}

// Create adds an employee
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&in); err != nil {
		httputil.Error(w, err)
		return
	}

	emp, err := h.service.Create(r.Context(), &in)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, emp)
}

// Update rewrites an employee
func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.Error(w, errors.BadRequest("missing id"))
		return
	}

	var in service.CreateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&in); err != nil {
		httputil.Error(w, err)
		return
	}

	emp, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, emp)
}

// Delete removes an employee
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}
