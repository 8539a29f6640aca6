package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/clinika/clinika-backend/internal/catalog"
	"github.com/clinika/clinika-backend/internal/lookup"
	"github.com/clinika/clinika-backend/pkg/database"
	"github.com/clinika/clinika-backend/pkg/errors"
)

// CatalogRepository handles service catalog persistence
type CatalogRepository struct {
	db        *database.DB
	orch      *lookup.Orchestrator
	relations []string
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *database.DB, orch *lookup.Orchestrator, relations []string) *CatalogRepository {
	return &CatalogRepository{db: db, orch: orch, relations: relations}
}

// FetchAll returns all raw catalog rows from the first healthy relation.
func (r *CatalogRepository) FetchAll(ctx context.Context) ([]map[string]any, error) {
	page, err := r.orch.Select(ctx, lookup.Query{Relations: r.relations})
	if err != nil {
		return nil, err
	}
	return page.Rows, nil
}

// GetByID returns the raw row with the given id.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (map[string]any, error) {
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
		return nil, errors.NotFound("service")
	}
	return page.Rows[0], nil
}

// Insert writes a new service to the current relation.
func (r *CatalogRepository) Insert(ctx context.Context, svc *catalog.Service) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (id, service_name, price_som, employee_id, photo_url) VALUES ($1, $2, $3, $4, $5)`,
		pq.QuoteIdentifier(r.writeRelation()),
	)
	if _, err := r.db.ExecContext(ctx, query, svc.ID, svc.Name, svc.PriceSom, svc.EmployeeID, svc.PhotoURL); err != nil {
		return database.MapWriteError(err)
	}
	return nil
}

// Update rewrites an existing service.
func (r *CatalogRepository) Update(ctx context.Context, svc *catalog.Service) error {
	query := fmt.Sprintf(
		`UPDATE %s SET service_name = $2, price_som = $3, employee_id = $4 WHERE id = $1`,
		pq.QuoteIdentifier(r.writeRelation()),
	)
	res, err := r.db.ExecContext(ctx, query, svc.ID, svc.Name, svc.PriceSom, svc.EmployeeID)
	if err != nil {
		return database.MapWriteError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("service")
	}
	return nil
}

// UpdatePhoto sets the photo URL, returning the previous one.
func (r *CatalogRepository) UpdatePhoto(ctx context.Context, id string, photo *string) (*string, error) {
	var old *string
	query := fmt.Sprintf(
		`UPDATE %s SET photo_url = $2 WHERE id = $1 RETURNING (SELECT photo_url FROM %s WHERE id = $1)`,
		pq.QuoteIdentifier(r.writeRelation()), pq.QuoteIdentifier(r.writeRelation()),
	)
	if err := r.db.QueryRowxContext(ctx, query, id, photo).Scan(&old); err != nil {
		return nil, database.MapWriteError(err)
	}
	return old, nil
}

// Delete removes a service.
func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, pq.QuoteIdentifier(r.writeRelation()))
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return database.MapWriteError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("service")
	}
	return nil
}

func (r *CatalogRepository) writeRelation() string {
	return r.relations[0]
}
