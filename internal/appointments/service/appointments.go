package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/clinika/clinika-backend/internal/appointments"
	"github.com/clinika/clinika-backend/internal/appointments/repository"
	"github.com/clinika/clinika-backend/internal/lookup"
	"github.com/clinika/clinika-backend/pkg/cache"
	"github.com/clinika/clinika-backend/pkg/logger"
)

const dashboardCacheKey = "dashboard"

// AppointmentService serves the appointment view and the visit histories
// derived from it.
type AppointmentService struct {
	repo       *repository.AppointmentRepository
	history    *repository.HistoryCacheRepository
	cache      *cache.Cache[*Dashboard]
	slot       lookup.Slot
	historyAge time.Duration
	logger     *logger.Logger
}

// NewAppointmentService creates a new appointment service. ttl bounds the
// dashboard snapshot's staleness, historyAge the cached visit histories'.
func NewAppointmentService(repo *repository.AppointmentRepository, history *repository.HistoryCacheRepository, ttl, historyAge time.Duration, log *logger.Logger) *AppointmentService {
	return &AppointmentService{
		repo:       repo,
		history:    history,
		cache:      cache.New[*Dashboard](ttl),
		historyAge: historyAge,
		logger:     log,
	}
}

// Close releases the cache janitor.
func (s *AppointmentService) Close() {
	s.cache.Stop()
}

// List returns one page of appointments.
func (s *AppointmentService) List(ctx context.Context, limit, offset int) ([]*appointments.Appointment, int64, error) {
	page, err := s.repo.Page(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return appointments.MapRows(page.Rows), page.Total, nil
}

// ForDay returns the appointments booked for day (dd.MM.yyyy), ordered by
// time of day.
func (s *AppointmentService) ForDay(ctx context.Context, day string) ([]*appointments.Appointment, error) {
	rows, err := s.repo.ForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	appts := appointments.MapRows(rows)
	sort.SliceStable(appts, func(i, j int) bool { return appts[i].Time < appts[j].Time })
	return appts, nil
}

// Dashboard is the landing page snapshot.
type Dashboard struct {
	Date         string                      `json:"date"`
	Appointments []*appointments.Appointment `json:"appointments"`
	Paid         int                         `json:"paid"`
	Waiting      int                         `json:"waiting"`
	CashTotal    float64                     `json:"cash_total"`
	NonCashTotal float64                     `json:"non_cash_total"`
	RefreshedAt  time.Time                   `json:"refreshed_at"`
}

// Today returns the dashboard snapshot for the current day, cached with a
// TTL. Concurrent refreshes go through a slot: only the newest one populates
// the cache, superseded ones hand back their data without storing it.
func (s *AppointmentService) Today(ctx context.Context) (*Dashboard, error) {
	if d, ok := s.cache.Get(dashboardCacheKey); ok {
		return d, nil
	}

	day := time.Now().Format(appointments.DateLayout)

	ctx, token := s.slot.Begin(ctx)
	appts, err := s.ForDay(ctx, day)

	var dash *Dashboard
	token.Finish(err, func() {
		dash = buildDashboard(day, appts)
		s.cache.Set(dashboardCacheKey, dash)
	})
	if err != nil {
		return nil, err
	}
	if dash == nil {
		dash = buildDashboard(day, appts)
	}
	return dash, nil
}

func buildDashboard(day string, appts []*appointments.Appointment) *Dashboard {
	dash := &Dashboard{
		Date:         day,
		Appointments: appts,
		RefreshedAt:  time.Now(),
	}
	for _, a := range appts {
		switch a.Status {
		case appointments.StatusPaid:
			dash.Paid++
		case appointments.StatusWaiting:
			dash.Waiting++
		}
		dash.CashTotal += a.Cash
		dash.NonCashTotal += a.Cashless
	}
	return dash
}

// History returns a patient's visits, newest first. Fresh results come from
// the persistent cache when available; a miss rescans the appointment view
// and refreshes the cache best-effort.
func (s *AppointmentService) History(ctx context.Context, patientKey, name, phone string) ([]*appointments.Appointment, error) {
	if cached, err := s.history.Get(ctx, patientKey, s.historyAge); err == nil {
		var visits []*appointments.Appointment
		if json.Unmarshal(cached.Payload, &visits) == nil {
			return visits, nil
		}
		s.logger.Warn().Str("patient_key", patientKey).Msg("discarding undecodable cached history")
	}

	rows, err := s.repo.ForPatient(ctx, name, phone)
	if err != nil {
		return nil, err
	}

	visits := appointments.MapRows(rows)
	sort.SliceStable(visits, func(i, j int) bool {
		di, erri := visits[i].ParsedDate()
		dj, errj := visits[j].ParsedDate()
		if erri != nil || errj != nil {
			return visits[i].Date > visits[j].Date
		}
		return di.After(dj)
	})

	if payload, err := json.Marshal(visits); err == nil {
		if err := s.history.Set(ctx, patientKey, payload); err != nil {
			s.logger.Warn().Err(err).Str("patient_key", patientKey).Msg("failed to cache history")
		}
	}

	return visits, nil
}

// InvalidateHistory drops a patient's cached history.
func (s *AppointmentService) InvalidateHistory(ctx context.Context, patientKey string) error {
	return s.history.Delete(ctx, patientKey)
}
