package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinika/clinika-backend/internal/catalog/service"
	"github.com/clinika/clinika-backend/pkg/errors"
	"github.com/clinika/clinika-backend/pkg/httputil"
	"github.com/clinika/clinika-backend/pkg/logger"
)

const maxPhotoSize = 10 << 20

// CatalogHandler handles service catalog endpoints
type CatalogHandler struct {
	service *service.CatalogService
	logger  *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: log}
}

// Routes mounts the catalog routes. Deleting a service is admin-only.
func (h *CatalogHandler) Routes(admin func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.With(admin).Delete("/{id}", h.Delete)
		r.Post("/{id}/photo", h.UploadPhoto)
	}
}

// List returns the full price list
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, list)
}

// Get returns one service
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, svc)
}

// Create adds a service
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&in); err != nil {
		httputil.Error(w, err)
		return
	}

	svc, err := h.service.Create(r.Context(), &in)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, svc)
}

// Update rewrites a service
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&in); err != nil {
		httputil.Error(w, err)
		return
	}

	svc, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, svc)
}

// UploadPhoto replaces a service's photo
func (h *CatalogHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	file, header, err := r.FormFile("photo")
	if err != nil {
		httputil.Error(w, errors.BadRequest("photo file is required"))
		return
	}
	defer file.Close()

	url, err := h.service.ReplacePhoto(r.Context(), chi.URLParam(r, "id"), file, header.Filename)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"photo_url": url})
}

// Delete removes a service
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}
