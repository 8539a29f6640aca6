package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appts "github.com/clinika/clinika-backend/internal/appointments"
	"github.com/clinika/clinika-backend/internal/appointments/service"
	"github.com/clinika/clinika-backend/pkg/errors"
	"github.com/clinika/clinika-backend/pkg/httputil"
	"github.com/clinika/clinika-backend/pkg/logger"
)

// AppointmentHandler handles appointment endpoints
type AppointmentHandler struct {
	service *service.AppointmentService
	logger  *logger.Logger
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(svc *service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{service: svc, logger: log}
}

// Routes mounts the appointment routes
func (h *AppointmentHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/today", h.Today)
	r.Get("/day/{date}", h.ForDay)
}

// List returns one page of appointments
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := httputil.Pagination(r)

	list, total, err := h.service.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, list, httputil.PageMeta(page, perPage, total))
}

// Today returns the dashboard snapshot for the current day
func (h *AppointmentHandler) Today(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.Today(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, dash)
}

// ForDay returns the appointments booked for one day
func (h *AppointmentHandler) ForDay(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "date")
	if _, err := time.Parse(appts.DateLayout, day); err != nil {
		httputil.Error(w, errors.BadRequest("date must be in dd.MM.yyyy format"))
		return
	}

	list, err := h.service.ForDay(r.Context(), day)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, list)
}
