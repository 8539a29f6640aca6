// Package repository reads and writes patient records through the lookup
// orchestrator, mirroring the staff layout: candidate relations for reads,
// the first relation for writes.
package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/clinika/clinika-backend/internal/lookup"
	"github.com/clinika/clinika-backend/internal/normalize"
	"github.com/clinika/clinika-backend/pkg/database"
	"github.com/clinika/clinika-backend/pkg/errors"
)

// PatientRepository handles patient persistence
type PatientRepository struct {
	db            *database.DB
	orch          *lookup.Orchestrator
	relations     []string
	searchColumns []string
}

// NewPatientRepository creates a new patient repository. searchColumns lists
// every spelling the name and phone columns may carry across the candidate
// relations.
func NewPatientRepository(db *database.DB, orch *lookup.Orchestrator, relations, searchColumns []string) *PatientRepository {
	return &PatientRepository{db: db, orch: orch, relations: relations, searchColumns: searchColumns}
}

// Page returns one page of raw patient rows.
func (r *PatientRepository) Page(ctx context.Context, limit, offset int) (*lookup.Page, error) {
	return r.orch.Select(ctx, lookup.Query{
		Relations: r.relations,
		Limit:     limit,
		Offset:    offset,
	})
}

// Search matches term against the configured name and phone columns, with the
// orchestrator's per-column retry when the combined filter is rejected.
func (r *PatientRepository) Search(ctx context.Context, term string, limit int) ([]map[string]any, error) {
	return r.orch.Search(ctx, r.relations, r.searchColumns, term, limit,
		func(row map[string]any) string {
			if p := normalize.MapPatient(row); p != nil {
				return p.ID
			}
			return ""
		})
}

// GetByID returns the raw row with the given id.
func (r *PatientRepository) GetByID(ctx context.Context, id string) (map[string]any, error) {
	page, err := r.orch.Select(ctx, lookup.Query{
		Relations: r.relations,
		Where:     `"id" = $1`,
		Args:      []interface{}{id},
		Limit:     1,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Rows) == 0 {
		return nil, errors.NotFound("patient")
	}
	return page.Rows[0], nil
}

// Insert writes a new patient to the current relation.
func (r *PatientRepository) Insert(ctx context.Context, p *normalize.Patient) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (id, fio, phone) VALUES ($1, $2, $3)`,
		pq.QuoteIdentifier(r.writeRelation()),
	)
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.FIO, p.Phone); err != nil {
		return database.MapWriteError(err)
	}
	return nil
}

// Update rewrites an existing patient.
func (r *PatientRepository) Update(ctx context.Context, p *normalize.Patient) error {
	query := fmt.Sprintf(
		`UPDATE %s SET fio = $2, phone = $3 WHERE id = $1`,
		pq.QuoteIdentifier(r.writeRelation()),
	)
	res, err := r.db.ExecContext(ctx, query, p.ID, p.FIO, p.Phone)
	if err != nil {
		return database.MapWriteError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("patient")
	}
	return nil
}

// Delete removes a patient.
func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, pq.QuoteIdentifier(r.writeRelation()))
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return database.MapWriteError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("patient")
	}
	return nil
}

func (r *PatientRepository) writeRelation() string {
	return r.relations[0]
}
