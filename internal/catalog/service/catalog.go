package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinika/clinika-backend/internal/audit"
	"github.com/clinika/clinika-backend/internal/catalog"
	"github.com/clinika/clinika-backend/internal/catalog/repository"
	"github.com/clinika/clinika-backend/internal/lookup"
	"github.com/clinika/clinika-backend/internal/storage"
	"github.com/clinika/clinika-backend/pkg/cache"
	"github.com/clinika/clinika-backend/pkg/errors"
	"github.com/clinika/clinika-backend/pkg/logger"
)

const listCacheKey = "catalog"

// CatalogService manages the clinic's price list. The full list is cached
// with a TTL for the dashboard, and every write invalidates it.
type CatalogService struct {
	repo   *repository.CatalogRepository
	files  *storage.FileStore
	cache  *cache.Cache[[]*catalog.Service]
	slot   lookup.Slot
	audit  audit.Recorder
	logger *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo *repository.CatalogRepository, files *storage.FileStore, ttl time.Duration, rec audit.Recorder, log *logger.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		files:  files,
		cache:  cache.New[[]*catalog.Service](ttl),
		audit:  rec,
		logger: log,
	}
}

// Close releases the cache janitor.
func (s *CatalogService) Close() {
	s.cache.Stop()
}

// List returns the full service list, TTL-cached and refreshed through a
// slot so a superseded refresh cannot clobber a newer one.
func (s *CatalogService) List(ctx context.Context) ([]*catalog.Service, error) {
	if list, ok := s.cache.Get(listCacheKey); ok {
		return list, nil
	}

	ctx, token := s.slot.Begin(ctx)
	rows, err := s.repo.FetchAll(ctx)

	var list []*catalog.Service
	token.Finish(err, func() {
		list = catalog.MapRows(rows)
		s.cache.Set(listCacheKey, list)
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = catalog.MapRows(rows)
	}
	return list, nil
}

// Get returns one service by id.
func (s *CatalogService) Get(ctx context.Context, id string) (*catalog.Service, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	svc := catalog.MapRow(row)
	if svc == nil {
		return nil, errors.NotFound("service")
	}
	return svc, nil
}

// Input carries the fields accepted on catalog writes.
type Input struct {
	Name       string  `json:"name" validate:"required"`
	PriceSom   float64 `json:"price_som" validate:"gte=0"`
	EmployeeID string  `json:"employee_id"`
}

func (in *Input) toService(id string) *catalog.Service {
	svc := &catalog.Service{
		ID:       id,
		Name:     strings.TrimSpace(in.Name),
		PriceSom: in.PriceSom,
	}
	if in.EmployeeID != "" {
		svc.EmployeeID = &in.EmployeeID
	}
	return svc
}

// Create inserts a new service.
func (s *CatalogService) Create(ctx context.Context, in *Input) (*catalog.Service, error) {
	svc := in.toService(uuid.New().String())
	if err := s.repo.Insert(ctx, svc); err != nil {
		return nil, err
	}

	s.cache.Invalidate(listCacheKey)
	s.audit.Record(ctx, audit.EventCreated, audit.Entry{Entity: "service", EntityID: svc.ID})
	return svc, nil
}

// Update rewrites a service.
func (s *CatalogService) Update(ctx context.Context, id string, in *Input) (*catalog.Service, error) {
	svc := in.toService(id)
	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, err
	}

	s.cache.Invalidate(listCacheKey)
	s.audit.Record(ctx, audit.EventUpdated, audit.Entry{Entity: "service", EntityID: id})
	return svc, nil
}

// ReplacePhoto stores a new photo for the service and removes the previous
// one best-effort.
func (s *CatalogService) ReplacePhoto(ctx context.Context, id string, r io.Reader, filename string) (string, error) {
	name, err := s.files.Save(r, filename)
	if err != nil {
		return "", err
	}

	url := s.files.PublicURL(name)
	old, err := s.repo.UpdatePhoto(ctx, id, &url)
	if err != nil {
		s.files.TryDelete(name)
		return "", err
	}

	if old != nil {
		s.files.TryDelete(s.files.NameFromURL(*old))
	}

	s.cache.Invalidate(listCacheKey)
	s.audit.Record(ctx, audit.EventUpdated, audit.Entry{Entity: "service", EntityID: id, Detail: "photo replaced"})
	return url, nil
}

// Delete removes a service and its photo best-effort.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if svc.PhotoURL != nil {
		s.files.TryDelete(s.files.NameFromURL(*svc.PhotoURL))
	}
	s.cache.Invalidate(listCacheKey)
	s.audit.Record(ctx, audit.EventDeleted, audit.Entry{Entity: "service", EntityID: id})
	return nil
}
