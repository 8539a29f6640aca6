package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/clinika/clinika-backend/internal/expenses"
	"github.com/clinika/clinika-backend/pkg/database"
	"github.com/clinika/clinika-backend/pkg/errors"
)

// ExpenseRepository handles expense persistence
type ExpenseRepository struct {
	db *database.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *database.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Filter narrows expense listings.
type Filter struct {
	Category   string
	EmployeeID string
	From       string // inclusive, yyyy-mm-dd
	To         string // exclusive
	Limit      int
	Offset     int
}

func (f Filter) where() (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.EmployeeID != "" {
		add("employee_id = $%d", f.EmployeeID)
	}
	if f.From != "" {
		add("created_at >= $%d", f.From)
	}
	if f.To != "" {
		add("created_at < $%d", f.To)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns expenses matching filter, newest first, plus the total count.
func (r *ExpenseRepository) List(ctx context.Context, f Filter) ([]*expenses.Expense, int64, error) {
	where, args := f.where()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM expenses`+where, args...); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, employee_id, name, category, cash_amount, cashless_amount, total_amount, comment, photo, created_at, updated_at
		FROM expenses` + where + `
		ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", f.Offset)
	}

	list := make([]*expenses.Expense, 0)
	if err := r.db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// GetByID returns one expense
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*expenses.Expense, error) {
	var e expenses.Expense
	query := `
		SELECT id, employee_id, name, category, cash_amount, cashless_amount, total_amount, comment, photo, created_at, updated_at
		FROM expenses
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("expense")
		}
		return nil, err
	}
	return &e, nil
}

// Create inserts an expense. The id and timestamps come back from the
// database.
func (r *ExpenseRepository) Create(ctx context.Context, e *expenses.Expense) error {
	query := `
		INSERT INTO expenses (employee_id, name, category, cash_amount, cashless_amount, total_amount, comment, photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		e.EmployeeID, e.Name, e.Category, e.CashAmount, e.CashlessAmount, e.TotalAmount, e.Comment, e.Photo,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return database.MapWriteError(err)
	}
	return nil
}

// Update rewrites an expense
func (r *ExpenseRepository) Update(ctx context.Context, e *expenses.Expense) error {
	query := `
		UPDATE expenses
		SET employee_id = $2, name = $3, category = $4, cash_amount = $5, cashless_amount = $6, total_amount = $7, comment = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		e.ID, e.EmployeeID, e.Name, e.Category, e.CashAmount, e.CashlessAmount, e.TotalAmount, e.Comment,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.NotFound("expense")
		}
		return database.MapWriteError(err)
	}
	return nil
}

// UpdatePhoto sets the photo URL, returning the previous one.
func (r *ExpenseRepository) UpdatePhoto(ctx context.Context, id int64, photo *string) (*string, error) {
	var old *string
	query := `
		UPDATE expenses
		SET photo = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING (SELECT photo FROM expenses WHERE id = $1)
	`
	if err := r.db.QueryRowxContext(ctx, query, id, photo).Scan(&old); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("expense")
		}
		return nil, database.MapWriteError(err)
	}
	return old, nil
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return database.MapWriteError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("expense")
	}
	return nil
}
