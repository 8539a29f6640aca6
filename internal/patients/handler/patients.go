package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinika/clinika-backend/internal/lookup"
	"github.com/clinika/clinika-backend/internal/patients/service"
	"github.com/clinika/clinika-backend/pkg/httputil"
	"github.com/clinika/clinika-backend/pkg/logger"
)

// PatientHandler handles patient endpoints
type PatientHandler struct {
	service *service.PatientService
	logger  *logger.Logger
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(svc *service.PatientService, log *logger.Logger) *PatientHandler {
	return &PatientHandler{service: svc, logger: log}
}

// Routes mounts the patient routes. Deleting a patient is admin-only.
func (h *PatientHandler) Routes(admin func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.With(admin).Delete("/{id}", h.Delete)
		r.Get("/{id}/history", h.History)
	}
}

// List returns patients, searched by ?q= or paged.
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	page, perPage := httputil.Pagination(r)

	if term != "" {
		list, err := h.service.Search(r.Context(), term, perPage)
		if err != nil {
			if lookup.IsCancellation(err) {
				// Superseded by a newer search; the client no longer cares.
				return
			}
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, list)
		return
	}

	list, total, err := h.service.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSONWithMeta(w, http.StatusOK, list, httputil.PageMeta(page, perPage, total))
}

// Get returns one patient
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, p)
}

// History returns a patient's visit history
func (h *PatientHandler) History(w http.ResponseWriter, r *http.Request) {
	visits, err := h.service.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, visits)
}

// Create adds a patient
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&in); err != nil {
		httputil.Error(w, err)
		return
	}

	p, err := h.service.Create(r.Context(), &in)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, p)
}

// Update rewrites a patient
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.CreateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&in); err != nil {
		httputil.Error(w, err)
		return
	}

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, p)
}

// Delete removes a patient
func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}
