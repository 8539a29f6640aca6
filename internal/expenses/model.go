// Package expenses tracks clinic spending. Unlike staff and patients, the
// expenses table is owned by the dashboard itself, so records are typed all
// the way down instead of going through row normalization.
package expenses

import "time"

// Expense is one spending record.
type Expense struct {
	ID             int64     `db:"id" json:"id"`
	EmployeeID     *string   `db:"employee_id" json:"employee_id,omitempty"`
	Name           string    `db:"name" json:"name"`
	Category       string    `db:"category" json:"category"`
	CashAmount     float64   `db:"cash_amount" json:"cash_amount"`
	CashlessAmount float64   `db:"cashless_amount" json:"cashless_amount"`
	TotalAmount    float64   `db:"total_amount" json:"total_amount"`
	Comment        *string   `db:"comment" json:"comment,omitempty"`
	Photo          *string   `db:"photo" json:"photo,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// NormalizeTotal is the single source of the total-amount rule: an explicit
// positive total is trusted, anything else is recomputed as cash + cashless.
// Every write path must go through this function.
func NormalizeTotal(cash, cashless, total float64) float64 {
	if total > 0 {
		return total
	}
	return cash + cashless
}

// Normalize applies NormalizeTotal to the record in place.
func (e *Expense) Normalize() {
	e.TotalAmount = NormalizeTotal(e.CashAmount, e.CashlessAmount, e.TotalAmount)
}
