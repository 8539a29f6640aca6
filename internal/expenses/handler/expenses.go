package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinika/clinika-backend/internal/expenses/export"
	"github.com/clinika/clinika-backend/internal/expenses/repository"
	"github.com/clinika/clinika-backend/internal/expenses/service"
	"github.com/clinika/clinika-backend/pkg/errors"
	"github.com/clinika/clinika-backend/pkg/httputil"
	"github.com/clinika/clinika-backend/pkg/logger"
)

// Photo uploads above this size are rejected.
const maxPhotoSize = 10 << 20

// ExpenseHandler handles expense endpoints
type ExpenseHandler struct {
	service *service.ExpenseService
	logger  *logger.Logger
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(svc *service.ExpenseService, log *logger.Logger) *ExpenseHandler {
	return &ExpenseHandler{service: svc, logger: log}
}

// Routes mounts the expense routes. Deleting an expense is admin-only.
func (h *ExpenseHandler) Routes(admin func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/export", h.Export)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.With(admin).Delete("/{id}", h.Delete)
		r.Post("/{id}/photo", h.UploadPhoto)
	}
}

func (h *ExpenseHandler) filter(r *http.Request) repository.Filter {
	page, perPage := httputil.Pagination(r)
	q := r.URL.Query()
	return repository.Filter{
		Category:   q.Get("category"),
		EmployeeID: q.Get("employee_id"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}
}

// List returns expenses matching the query filters
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := httputil.Pagination(r)

	list, total, err := h.service.List(r.Context(), h.filter(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, list, httputil.PageMeta(page, perPage, total))
}

// Export streams the filtered expenses as an xlsx workbook.
func (h *ExpenseHandler) Export(w http.ResponseWriter, r *http.Request) {
	f := h.filter(r)
	f.Limit = 0
	f.Offset = 0

	list, _, err := h.service.List(r.Context(), f)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	filename := fmt.Sprintf("expenses-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.Excel(w, list); err != nil {
		h.logger.Error().Err(err).Msg("failed to write expense export")
	}
}

// Get returns one expense
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, e)
}

// Create adds an expense
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&in); err != nil {
		httputil.Error(w, err)
		return
	}

	e, err := h.service.Create(r.Context(), &in)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, e)
}

// Update rewrites an expense
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var in service.Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&in); err != nil {
		httputil.Error(w, err)
		return
	}

	e, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, e)
}

// UploadPhoto replaces the receipt photo attached to an expense
func (h *ExpenseHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	file, header, err := r.FormFile("photo")
	if err != nil {
		httputil.Error(w, errors.BadRequest("photo file is required"))
		return
	}
	defer file.Close()

	url, err := h.service.ReplacePhoto(r.Context(), id, file, header.Filename)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"photo": url})
}

// Delete removes an expense
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("id must be numeric")
	}
	return id, nil
}
