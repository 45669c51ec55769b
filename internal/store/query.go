package store

import (
	"context"
	"fmt"
	"io"

	"github.com/bankcap/banketl/internal/model"
	"github.com/bankcap/banketl/internal/report"
)

// Result holds the rows returned by a query. Values are whatever the driver
// produced: int64, float64, string, []byte or nil.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Scalar returns the single value of a one-row, one-column result. It is a
// convenience for tests and tooling; the pipeline only prints results.
func (r Result) Scalar() (any, bool) {
	if len(r.Rows) != 1 || len(r.Columns) != 1 {
		return nil, false
	}
	return r.Rows[0][0], true
}

// Query runs a read query and buffers its whole result.
func (s *Store) Query(ctx context.Context, query string) (Result, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("running %q: %w: %w", query, model.ErrQuery, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("reading columns of %q: %w: %w", query, model.ErrQuery, err)
	}

	res := Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, fmt.Errorf("scanning row of %q: %w: %w", query, model.ErrQuery, err)
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("iterating %q: %w: %w", query, model.ErrQuery, err)
	}
	return res, nil
}

// RunQueries runs each query in order and prints the query text, its result
// table and a blank line. It stops at the first failing query.
func (s *Store) RunQueries(ctx context.Context, w io.Writer, queries []string) error {
	for _, q := range queries {
		fmt.Fprintln(w, q)
		res, err := s.Query(ctx, q)
		if err != nil {
			return err
		}
		report.Rows(w, res.Columns, res.Rows)
		fmt.Fprintln(w)
	}
	return nil
}
