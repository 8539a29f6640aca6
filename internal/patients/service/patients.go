package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	appts "github.com/clinika/clinika-backend/internal/appointments"
	"github.com/clinika/clinika-backend/internal/audit"
	"github.com/clinika/clinika-backend/internal/lookup"
	"github.com/clinika/clinika-backend/internal/normalize"
	"github.com/clinika/clinika-backend/internal/patients/repository"
	"github.com/clinika/clinika-backend/pkg/errors"
	"github.com/clinika/clinika-backend/pkg/logger"
)

// VisitSource provides a patient's visit history. Implemented by the
// appointment service.
type VisitSource interface {
	History(ctx context.Context, patientKey, name, phone string) ([]*appts.Appointment, error)
	InvalidateHistory(ctx context.Context, patientKey string) error
}

// PatientService serves the patient screens: paged listing, debounced
// search, and the per-patient visit history.
type PatientService struct {
	repo   *repository.PatientRepository
	visits VisitSource
	slot   lookup.Slot
	audit  audit.Recorder
	logger *logger.Logger
}

// NewPatientService creates a new patient service
func NewPatientService(repo *repository.PatientRepository, visits VisitSource, rec audit.Recorder, log *logger.Logger) *PatientService {
	return &PatientService{
		repo:   repo,
		visits: visits,
		audit:  rec,
		logger: log,
	}
}

// List returns one page of patients, sorted by name.
func (s *PatientService) List(ctx context.Context, limit, offset int) ([]*normalize.Patient, int64, error) {
	page, err := s.repo.Page(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	list := mapRows(page.Rows)
	normalize.SortPatientsByName(list)
	return list, page.Total, nil
}

// Search returns patients whose name or phone contains term. Searches go
// through a slot: a newer search supersedes an in-flight one, so a slow early
// query can never mark the slot successful over fresher results. An abandoned
// search dies with its own request context, not with anyone else's.
func (s *PatientService) Search(ctx context.Context, term string, limit int) ([]*normalize.Patient, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		list, _, err := s.List(ctx, limit, 0)
		return list, err
	}

	ctx, token := s.slot.Begin(ctx)
	rows, err := s.repo.Search(ctx, term, limit)
	token.Finish(err, nil)
	if err != nil {
		return nil, err
	}

	list := mapRows(rows)
	normalize.SortPatientsByName(list)
	return list, nil
}

func mapRows(rows []map[string]any) []*normalize.Patient {
	var list []*normalize.Patient
	for _, row := range rows {
		if p := normalize.MapPatient(row); p != nil {
			list = append(list, p)
		}
	}
	return list
}

// Get returns one patient by id.
func (s *PatientService) Get(ctx context.Context, id string) (*normalize.Patient, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := normalize.MapPatient(row)
	if p == nil {
		return nil, errors.NotFound("patient")
	}
	return p, nil
}

// History returns a patient's visits, newest first.
func (s *PatientService) History(ctx context.Context, id string) ([]*appts.Appointment, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	phone := ""
	if p.Phone != nil {
		phone = *p.Phone
	}
	return s.visits.History(ctx, p.ID, p.FIO, phone)
}

// CreateInput carries the fields accepted on patient writes.
type CreateInput struct {
	FIO   string `json:"fio" validate:"required"`
	Phone string `json:"phone"`
}

// Create inserts a new patient.
func (s *PatientService) Create(ctx context.Context, in *CreateInput) (*normalize.Patient, error) {
	p := &normalize.Patient{
		ID:  uuid.New().String(),
		FIO: strings.TrimSpace(in.FIO),
	}
	if in.Phone != "" {
		local, ok := normalize.NormalizePhone(in.Phone)
		if !ok {
			return nil, errors.Validation(map[string]string{"phone": "malformed phone number"})
		}
		p.Phone = &local
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.EventCreated, audit.Entry{Entity: "patient", EntityID: p.ID})
	return p, nil
}

// Update rewrites a patient and drops their cached history, which may be
// keyed by the old name.
func (s *PatientService) Update(ctx context.Context, id string, in *CreateInput) (*normalize.Patient, error) {
	p := &normalize.Patient{
		ID:  id,
		FIO: strings.TrimSpace(in.FIO),
	}
	if in.Phone != "" {
		local, ok := normalize.NormalizePhone(in.Phone)
		if !ok {
			return nil, errors.Validation(map[string]string{"phone": "malformed phone number"})
		}
		p.Phone = &local
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if err := s.visits.InvalidateHistory(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", id).Msg("failed to invalidate cached history")
	}
	s.audit.Record(ctx, audit.EventUpdated, audit.Entry{Entity: "patient", EntityID: id})
	return p, nil
}

// Delete removes a patient and their cached history.
func (s *PatientService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.visits.InvalidateHistory(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", id).Msg("failed to invalidate cached history")
	}
	s.audit.Record(ctx, audit.EventDeleted, audit.Entry{Entity: "patient", EntityID: id})
	return nil
}
