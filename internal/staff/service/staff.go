package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinika/clinika-backend/internal/audit"
	"github.com/clinika/clinika-backend/internal/lookup"
	"github.com/clinika/clinika-backend/internal/normalize"
	"github.com/clinika/clinika-backend/internal/staff/repository"
	"github.com/clinika/clinika-backend/pkg/cache"
	"github.com/clinika/clinika-backend/pkg/errors"
	"github.com/clinika/clinika-backend/pkg/logger"
)

const directoryCacheKey = "directory"

// StaffService builds the employee directory out of whatever staff relations
// currently exist, merged and deduplicated into canonical records.
type StaffService struct {
	repo   *repository.StaffRepository
	cache  *cache.Cache[[]*normalize.Employee]
	slot   lookup.Slot
	audit  audit.Recorder
	logger *logger.Logger
}

// NewStaffService creates a new staff service. ttl bounds how stale the
// cached directory may get.
func NewStaffService(repo *repository.StaffRepository, ttl time.Duration, rec audit.Recorder, log *logger.Logger) *StaffService {
	return &StaffService{
		repo:   repo,
		cache:  cache.New[[]*normalize.Employee](ttl),
		audit:  rec,
		logger: log,
	}
}

// Close releases the cache janitor.
func (s *StaffService) Close() {
	s.cache.Stop()
}

// Directory returns every employee across all source relations, merged
// first-wins and sorted by name. Concurrent refreshes all get answered, but
// only the newest one populates the cache.
func (s *StaffService) Directory(ctx context.Context) ([]*normalize.Employee, error) {
	if list, ok := s.cache.Get(directoryCacheKey); ok {
		return list, nil
	}

	ctx, token := s.slot.Begin(ctx)
	lists, err := s.repo.FetchAll(ctx)

	var merged []*normalize.Employee
	token.Finish(err, func() {
		merged = mergeRaw(lists)
		s.cache.Set(directoryCacheKey, merged)
	})
	if err != nil {
		return nil, err
	}
	if merged == nil {
		// A newer refresh superseded this one; map without caching.
		merged = mergeRaw(lists)
	}
	return merged, nil
}

func mergeRaw(lists [][]map[string]any) []*normalize.Employee {
	mapped := make([][]*normalize.Employee, 0, len(lists))
	for _, rows := range lists {
		var emps []*normalize.Employee
		for _, row := range rows {
			if emp := normalize.MapEmployee(row); emp != nil {
				emps = append(emps, emp)
			}
		}
		mapped = append(mapped, emps)
	}
	merged := normalize.MergeEmployees(mapped...)
	normalize.SortEmployeesByName(merged)
	return merged
}

// Search returns employees whose name or phone contains term.
func (s *StaffService) Search(ctx context.Context, term string, limit int) ([]*normalize.Employee, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.Directory(ctx)
	}

	rows, err := s.repo.Search(ctx, term, limit)
	if err != nil {
		return nil, err
	}

	var out []*normalize.Employee
	for _, row := range rows {
		if emp := normalize.MapEmployee(row); emp != nil {
			out = append(out, emp)
		}
	}
	normalize.SortEmployeesByName(out)
	return out, nil
}

// Get returns one employee by id.
func (s *StaffService) Get(ctx context.Context, id string) (*normalize.Employee, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	emp := normalize.MapEmployee(row)
	if emp == nil {
		return nil, errors.NotFound("employee")
	}
	return emp, nil
}

// CreateInput carries the fields accepted on employee writes.
type CreateInput struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Create inserts a new employee and invalidates the directory.
func (s *StaffService) Create(ctx context.Context, in *CreateInput) (*normalize.Employee, error) {
	emp := &normalize.Employee{
		ID:       uuid.New().String(),
		FullName: strings.TrimSpace(in.FullName),
	}
	if local, ok := normalize.NormalizePhone(in.Phone); ok {
		emp.Phone = &local
	}
	if role := normalize.CanonicalRole(in.Role); role != "" {
		emp.Role = &role
	}

	if err := s.repo.Insert(ctx, emp); err != nil {
		return nil, err
	}

	s.cache.Invalidate(directoryCacheKey)
	s.audit.Record(ctx, audit.EventCreated, audit.Entry{Entity: "employee", EntityID: emp.ID})
	return emp, nil
}

// Update rewrites an employee and invalidates the directory.
func (s *StaffService) Update(ctx context.Context, id string, in *CreateInput) (*normalize.Employee, error) {
	emp := &normalize.Employee{
		ID:       id,
		FullName: strings.TrimSpace(in.FullName),
	}
	if local, ok := normalize.NormalizePhone(in.Phone); ok {
		emp.Phone = &local
	}
	if role := normalize.CanonicalRole(in.Role); role != "" {
		emp.Role = &role
	}

	if err := s.repo.Update(ctx, emp); err != nil {
		return nil, err
	}

	s.cache.Invalidate(directoryCacheKey)
	s.audit.Record(ctx, audit.EventUpdated, audit.Entry{Entity: "employee", EntityID: id})
	return emp, nil
}

// Delete removes an employee and invalidates the directory.
func (s *StaffService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(directoryCacheKey)
	s.audit.Record(ctx, audit.EventDeleted, audit.Entry{Entity: "employee", EntityID: id})
	return nil
}
