package service

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/clinika/clinika-backend/internal/audit"
	"github.com/clinika/clinika-backend/internal/expenses"
	"github.com/clinika/clinika-backend/internal/expenses/repository"
	"github.com/clinika/clinika-backend/internal/storage"
	"github.com/clinika/clinika-backend/pkg/logger"
)

// ExpenseService handles expense business logic
type ExpenseService struct {
	repo   *repository.ExpenseRepository
	files  *storage.FileStore
	audit  audit.Recorder
	logger *logger.Logger
}

// NewExpenseService creates a new expense service
func NewExpenseService(repo *repository.ExpenseRepository, files *storage.FileStore, rec audit.Recorder, log *logger.Logger) *ExpenseService {
	return &ExpenseService{
		repo:   repo,
		files:  files,
		audit:  rec,
		logger: log,
	}
}

// Input carries the fields accepted on expense writes.
type Input struct {
	EmployeeID     string  `json:"employee_id"`
	Name           string  `json:"name" validate:"required"`
	Category       string  `json:"category"`
	CashAmount     float64 `json:"cash_amount" validate:"gte=0"`
	CashlessAmount float64 `json:"cashless_amount" validate:"gte=0"`
	TotalAmount    float64 `json:"total_amount"`
	Comment        string  `json:"comment"`
}

func (in *Input) toExpense() *expenses.Expense {
	e := &expenses.Expense{
		Name:           strings.TrimSpace(in.Name),
		Category:       strings.TrimSpace(in.Category),
		CashAmount:     in.CashAmount,
		CashlessAmount: in.CashlessAmount,
		TotalAmount:    in.TotalAmount,
	}
	if in.EmployeeID != "" {
		e.EmployeeID = &in.EmployeeID
	}
	if c := strings.TrimSpace(in.Comment); c != "" {
		e.Comment = &c
	}
	e.Normalize()
	return e
}

// List returns expenses matching filter.
func (s *ExpenseService) List(ctx context.Context, f repository.Filter) ([]*expenses.Expense, int64, error) {
	return s.repo.List(ctx, f)
}

// Get returns one expense
func (s *ExpenseService) Get(ctx context.Context, id int64) (*expenses.Expense, error) {
	return s.repo.GetByID(ctx, id)
}

// Create inserts an expense with the total rule applied.
func (s *ExpenseService) Create(ctx context.Context, in *Input) (*expenses.Expense, error) {
	e := in.toExpense()
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, audit.EventCreated, audit.Entry{Entity: "expense", EntityID: strconv.FormatInt(e.ID, 10)})
	return e, nil
}

// Update rewrites an expense with the total rule applied.
func (s *ExpenseService) Update(ctx context.Context, id int64, in *Input) (*expenses.Expense, error) {
	e := in.toExpense()
	e.ID = id
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, audit.EventUpdated, audit.Entry{Entity: "expense", EntityID: strconv.FormatInt(id, 10)})
	return e, nil
}

// ReplacePhoto stores the uploaded receipt photo and removes the previous
// one best-effort. A failed row update leaves the new file on disk rather
// than surfacing a second error to the caller.
func (s *ExpenseService) ReplacePhoto(ctx context.Context, id int64, r io.Reader, filename string) (string, error) {
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

	s.audit.Record(ctx, audit.EventUpdated, audit.Entry{
		Entity:   "expense",
		EntityID: strconv.FormatInt(id, 10),
		Detail:   "photo replaced",
	})
	return url, nil
}

// Delete removes an expense and its photo best-effort.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if e.Photo != nil {
		s.files.TryDelete(s.files.NameFromURL(*e.Photo))
	}
	s.audit.Record(ctx, audit.EventDeleted, audit.Entry{Entity: "expense", EntityID: strconv.FormatInt(id, 10)})
	return nil
}
