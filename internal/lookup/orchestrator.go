// Package lookup resolves "where is this data actually stored" across an
// evolving backend schema. Callers hand it an ordered list of candidate
// relations; it accepts the first one that answers without a database error,
// even when the answer is zero rows.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clinika/clinika-backend/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RowQuerier is the subset of sqlx the orchestrator needs.
type RowQuerier interface {
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Orchestrator issues queries against candidate relations in priority order.
type Orchestrator struct {
	db  RowQuerier
	log *logger.Logger
}

// New creates an orchestrator over db.
func New(db RowQuerier, log *logger.Logger) *Orchestrator {
	return &Orchestrator{db: db, log: log.WithComponent("lookup")}
}

// Query describes a list query executed against the first healthy candidate.
type Query struct {
	Relations []string // candidate table/view names, priority order
	Columns   string   // defaults to *
	Where     string   // optional, uses $n placeholders
	Args      []interface{}
	OrderBy   string
	Limit     int
	Offset    int
}

// Page is one page of raw rows plus the relation that served it. Total is the
// relation's row count when it could be obtained, else the page length.
type Page struct {
	Rows     []map[string]any
	Total    int64
	Relation string
}

// Select runs q against each candidate relation until one succeeds.
// Cancellation aborts immediately; any other error moves to the next
// candidate. When every candidate fails the last error is returned.
func (o *Orchestrator) Select(ctx context.Context, q Query) (*Page, error) {
	if len(q.Relations) == 0 {
		return nil, errors.New("lookup: no candidate relations")
	}

	var lastErr error
	for _, rel := range q.Relations {
		rows, err := o.selectFrom(ctx, rel, q)
		if err != nil {
			if IsCancellation(err) {
				return nil, err
			}
			o.log.Warn().Err(err).Str("relation", rel).Msg("candidate relation failed, trying next")
			lastErr = err
			continue
		}

		page := &Page{Rows: rows, Relation: rel}
		page.Total = o.countOrLen(ctx, rel, q, len(rows))
		return page, nil
	}

	return nil, fmt.Errorf("all candidate relations failed: %w", lastErr)
}

// SelectEach runs q against every candidate relation and returns one row list
// per relation that answered. Failures other than cancellation are skipped:
// the caller merges whatever sources still exist under the current schema.
func (o *Orchestrator) SelectEach(ctx context.Context, q Query) ([][]map[string]any, error) {
	var lists [][]map[string]any
	for _, rel := range q.Relations {
		rows, err := o.selectFrom(ctx, rel, q)
		if err != nil {
			if IsCancellation(err) {
				return nil, err
			}
			o.log.Debug().Err(err).Str("relation", rel).Msg("skipping unavailable relation")
			continue
		}
		lists = append(lists, rows)
	}
	return lists, nil
}

// Search runs a case-insensitive substring match over columns. The combined
// multi-column filter is attempted first; if the backend rejects it (a column
// may not exist on the serving relation), each column is retried independently
// and the results are unioned, deduplicated by key.
func (o *Orchestrator) Search(ctx context.Context, relations, columns []string, term string, limit int, key func(map[string]any) string) ([]map[string]any, error) {
	pattern := "%" + term + "%"

	combined := make([]string, len(columns))
	for i, col := range columns {
		combined[i] = pq.QuoteIdentifier(col) + " ILIKE $1"
	}

	page, err := o.Select(ctx, Query{
		Relations: relations,
		Where:     strings.Join(combined, " OR "),
		Args:      []interface{}{pattern},
		Limit:     limit,
	})
	if err == nil {
		return page.Rows, nil
	}
	if IsCancellation(err) || len(columns) < 2 {
		return nil, err
	}

	// Split retry: one query per column, union client-side.
	o.log.Warn().Err(err).Msg("combined search filter rejected, retrying per column")

	seen := make(map[string]bool)
	var union []map[string]any
	var succeeded bool
	for _, col := range columns {
		page, colErr := o.Select(ctx, Query{
			Relations: relations,
			Where:     pq.QuoteIdentifier(col) + " ILIKE $1",
			Args:      []interface{}{pattern},
			Limit:     limit,
		})
		if colErr != nil {
			if IsCancellation(colErr) {
				return nil, colErr
			}
			continue
		}
		succeeded = true
		for _, row := range page.Rows {
			k := ""
			if key != nil {
				k = key(row)
			}
			if k != "" && seen[k] {
				continue
			}
			if k != "" {
				seen[k] = true
			}
			union = append(union, row)
		}
	}
	if !succeeded {
		return nil, err
	}
	return union, nil
}

func (o *Orchestrator) selectFrom(ctx context.Context, relation string, q Query) ([]map[string]any, error) {
	query := buildSelect(relation, q)

	rows, err := o.db.QueryxContext(ctx, query, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]map[string]any, 0)
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// countOrLen asks the serving relation for its total row count under the same
// filter. A failed count is not a failed query: the page length stands in.
func (o *Orchestrator) countOrLen(ctx context.Context, relation string, q Query, pageLen int) int64 {
	query := "SELECT COUNT(*) FROM " + pq.QuoteIdentifier(relation)
	if q.Where != "" {
		query += " WHERE " + q.Where
	}

	var total int64
	if err := o.db.GetContext(ctx, &total, query, q.Args...); err != nil {
		o.log.Debug().Err(err).Str("relation", relation).Msg("count unavailable, using page length")
		return int64(pageLen)
	}
	return total
}

func buildSelect(relation string, q Query) string {
	cols := q.Columns
	if cols == "" {
		cols = "*"
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(cols)
	b.WriteString(" FROM ")
	b.WriteString(pq.QuoteIdentifier(relation))
	if q.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(q.Where)
	}
	if q.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.OrderBy)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", q.Offset)
	}
	return b.String()
}

// IsCancellation reports whether err is a superseded or torn-down request
// rather than a genuine failure. Cancellations are never surfaced to users.
func IsCancellation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pqErr *pq.Error
	// 57014 query_canceled: the server side of a context cancellation
	return errors.As(err, &pqErr) && pqErr.Code == "57014"
}
