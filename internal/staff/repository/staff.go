// Package repository reads and writes employee records. The clinic's CRM has
// renamed its staff tables more than once, so reads go through the lookup
// orchestrator over a configured candidate list while writes target the
// first, current relation.
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

// StaffRepository handles employee persistence
type StaffRepository struct {
	db            *database.DB
	orch          *lookup.Orchestrator
	relations     []string
	searchColumns []string
}

// NewStaffRepository creates a new staff repository over the candidate
// relations, in priority order. The first relation is the write target.
// searchColumns lists every spelling the name and phone columns may carry
// across the candidates; columns a relation lacks are discarded by the
// orchestrator's per-column retry.
func NewStaffRepository(db *database.DB, orch *lookup.Orchestrator, relations, searchColumns []string) *StaffRepository {
	return &StaffRepository{db: db, orch: orch, relations: relations, searchColumns: searchColumns}
}

// FetchAll returns the raw rows of every candidate relation that answers.
// Rows from different relations may overlap and use different column names;
// callers normalize and merge them.
func (r *StaffRepository) FetchAll(ctx context.Context) ([][]map[string]any, error) {
	return r.orch.SelectEach(ctx, lookup.Query{Relations: r.relations})
}

// Page returns one page of raw rows from the first healthy relation.
func (r *StaffRepository) Page(ctx context.Context, limit, offset int) (*lookup.Page, error) {
	return r.orch.Select(ctx, lookup.Query{
		Relations: r.relations,
		Limit:     limit,
		Offset:    offset,
	})
}

// Search matches term against the configured name and phone columns.
func (r *StaffRepository) Search(ctx context.Context, term string, limit int) ([]map[string]any, error) {
	return r.orch.Search(ctx, r.relations, r.searchColumns, term, limit,
		func(row map[string]any) string {
			if emp := normalize.MapEmployee(row); emp != nil {
				return emp.ID
			}
			return ""
		})
}

// GetByID returns the raw row with the given id from the first relation that
// has it.
func (r *StaffRepository) GetByID(ctx context.Context, id string) (map[string]any, error) {
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
		return nil, errors.NotFound("employee")
	}
	return page.Rows[0], nil
}

// Insert writes a new employee to the current relation.
func (r *StaffRepository) Insert(ctx context.Context, emp *normalize.Employee) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (id, full_name, phone, role) VALUES ($1, $2, $3, $4)`,
		pq.QuoteIdentifier(r.writeRelation()),
	)
	if _, err := r.db.ExecContext(ctx, query, emp.ID, emp.FullName, emp.Phone, emp.Role); err != nil {
		return database.MapWriteError(err)
	}
	return nil
}

// Update rewrites an existing employee in the current relation.
func (r *StaffRepository) Update(ctx context.Context, emp *normalize.Employee) error {
	query := fmt.Sprintf(
		`UPDATE %s SET full_name = $2, phone = $3, role = $4 WHERE id = $1`,
		pq.QuoteIdentifier(r.writeRelation()),
	)
	res, err := r.db.ExecContext(ctx, query, emp.ID, emp.FullName, emp.Phone, emp.Role)
	if err != nil {
		return database.MapWriteError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("employee")
	}
	return nil
}

// Delete removes an employee from the current relation.
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, pq.QuoteIdentifier(r.writeRelation()))
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return database.MapWriteError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("employee")
	}
	return nil
}

func (r *StaffRepository) writeRelation() string {
	return r.relations[0]
}
