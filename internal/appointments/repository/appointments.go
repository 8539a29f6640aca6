package repository

import (
	"context"

	"github.com/clinika/clinika-backend/internal/lookup"
)

// AppointmentRepository reads the CRM's appointment view through the lookup
// orchestrator. There are no write paths: the view is owned by the CRM.
type AppointmentRepository struct {
	orch      *lookup.Orchestrator
	relations []string
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(orch *lookup.Orchestrator, relations []string) *AppointmentRepository {
	return &AppointmentRepository{orch: orch, relations: relations}
}

// Page returns one page of raw appointment rows.
func (r *AppointmentRepository) Page(ctx context.Context, limit, offset int) (*lookup.Page, error) {
	return r.orch.Select(ctx, lookup.Query{
		Relations: r.relations,
		OrderBy:   `"date" DESC`,
		Limit:     limit,
		Offset:    offset,
	})
}

// ForDay returns the raw rows whose date column equals day (dd.MM.yyyy).
func (r *AppointmentRepository) ForDay(ctx context.Context, day string) ([]map[string]any, error) {
	page, err := r.orch.Select(ctx, lookup.Query{
		Relations: r.relations,
		Where:     `"date" = $1`,
		Args:      []interface{}{day},
	})
	if err != nil {
		return nil, err
	}
	return page.Rows, nil
}

// ForPatient returns the raw rows matching the patient's name, or phone when
// the name misses. Matching is a case-insensitive substring: the CRM spells
// the same patient several ways.
func (r *AppointmentRepository) ForPatient(ctx context.Context, name, phone string) ([]map[string]any, error) {
	page, err := r.orch.Select(ctx, lookup.Query{
		Relations: r.relations,
		Where:     `"patient_name" ILIKE $1`,
		Args:      []interface{}{"%" + name + "%"},
	})
	if err == nil && len(page.Rows) > 0 {
		return page.Rows, nil
	}
	if err != nil && lookup.IsCancellation(err) {
		return nil, err
	}
	if phone == "" {
		if err != nil {
			return nil, err
		}
		return page.Rows, nil
	}

	// The CRM stores phones with arbitrary punctuation ("0555 12-34-56"),
	// so compare digits only against the normalized local number.
	page, err = r.orch.Select(ctx, lookup.Query{
		Relations: r.relations,
		Where:     `regexp_replace("phone", '[^0-9]', '', 'g') LIKE $1`,
		Args:      []interface{}{"%" + phone + "%"},
	})
	if err != nil {
		return nil, err
	}
	return page.Rows, nil
}
