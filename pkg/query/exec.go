package query

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/leapstack-labs/genseries/pkg/core"
)

func (qs *QuerySet) query(ctx context.Context, sql string, args []any) (*core.Rows, error) {
	if qs.exec == nil {
		return nil, ErrNoExecutor
	}
	qs.logger.Debug("executing query", "sql", sql, "args", len(args))
	rows, err := qs.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

func (qs *QuerySet) execute(ctx context.Context, sql string, args []any) (int64, error) {
	if qs.exec == nil {
		return 0, ErrNoExecutor
	}
	qs.logger.Debug("executing statement", "sql", sql, "args", len(args))
	n, err := qs.exec.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("statement failed: %w", err)
	}
	return n, nil
}

// Fetch evaluates the query and returns every row.
func (qs *QuerySet) Fetch(ctx context.Context) ([]Row, error) {
	if qs.empty && len(qs.combined) == 0 {
		return nil, nil
	}
	sql, args, err := qs.SQL()
	if err != nil {
		return nil, err
	}
	rows, err := qs.query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	return scanRows(rows, qs.outputColumns())
}

// Iterator streams rows without buffering the whole result.
func (qs *QuerySet) Iterator(ctx context.Context) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		if qs.empty && len(qs.combined) == 0 {
			return
		}
		sql, args, err := qs.SQL()
		if err != nil {
			yield(Row{}, err)
			return
		}
		rows, err := qs.query(ctx, sql, args)
		if err != nil {
			yield(Row{}, err)
			return
		}
		defer func() { _ = rows.Close() }()

		names, err := rows.Columns()
		if err != nil {
			yield(Row{}, fmt.Errorf("failed to read columns: %w", err))
			return
		}
		cols := qs.outputColumns()
		for rows.Next() {
			row, err := scanRow(rows, names, cols)
			if !yield(row, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Row{}, fmt.Errorf("error iterating rows: %w", err))
		}
	}
}

// Get returns the single row matching preds.
func (qs *QuerySet) Get(ctx context.Context, preds ...Predicate) (Row, error) {
	rows, err := qs.Filter(preds...).Limit(2).Fetch(ctx)
	if err != nil {
		return Row{}, err
	}
	switch len(rows) {
	case 0:
		return Row{}, ErrDoesNotExist
	case 1:
		return rows[0], nil
	default:
		return Row{}, ErrMultipleRows
	}
}

func (qs *QuerySet) firstRow(ctx context.Context, ordered *QuerySet) (Row, error) {
	rows, err := ordered.Limit(1).Fetch(ctx)
	if err != nil {
		return Row{}, err
	}
	if len(rows) == 0 {
		return Row{}, ErrDoesNotExist
	}
	return rows[0], nil
}

func (qs *QuerySet) keyOrdered() *QuerySet {
	if len(qs.order) > 0 {
		return qs
	}
	cols := qs.outputColumns()
	if len(cols) == 0 {
		return qs
	}
	c := qs.clone()
	c.order = []orderTerm{{field: cols[0].Name}}
	return c
}

// First returns the first row in the query's order, or by key when
// unordered.
func (qs *QuerySet) First(ctx context.Context) (Row, error) {
	return qs.firstRow(ctx, qs.keyOrdered())
}

// Last returns the last row in the query's order, or by key when unordered.
func (qs *QuerySet) Last(ctx context.Context) (Row, error) {
	return qs.firstRow(ctx, qs.keyOrdered().Reverse())
}

// Latest returns the row with the greatest value of fields, defaulting to
// the key.
func (qs *QuerySet) Latest(ctx context.Context, fields ...string) (Row, error) {
	if len(fields) == 0 {
		return qs.Last(ctx)
	}
	desc := make([]string, len(fields))
	for i, f := range fields {
		desc[i] = "-" + strings.TrimPrefix(f, "-")
	}
	return qs.firstRow(ctx, qs.OrderBy(desc...))
}

// Earliest returns the row with the smallest value of fields, defaulting to
// the key.
func (qs *QuerySet) Earliest(ctx context.Context, fields ...string) (Row, error) {
	if len(fields) == 0 {
		return qs.First(ctx)
	}
	return qs.firstRow(ctx, qs.OrderBy(fields...))
}

// Count returns the number of rows.
func (qs *QuerySet) Count(ctx context.Context) (int64, error) {
	if qs.empty && len(qs.combined) == 0 {
		return 0, nil
	}
	sql, args, err := qs.wrap(func(r *Renderer) { r.Write("COUNT(*)") })
	if err != nil {
		return 0, err
	}
	rows, err := qs.query(ctx, sql, args)
	if err != nil {
		return 0, err
	}
	out, err := scanRows(rows, []Column{{Name: "count", Type: core.TypeBigint}})
	if err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("count returned %d rows", len(out))
	}
	n, _ := out[0].Values[0].(int64)
	return n, nil
}

// Exists reports whether the query yields at least one row.
func (qs *QuerySet) Exists(ctx context.Context) (bool, error) {
	if qs.empty && len(qs.combined) == 0 {
		return false, nil
	}
	r := NewRenderer(qs.dialect)
	r.Write("SELECT ")
	Exists(qs.Limit(1)).WriteSQL(r)
	if err := r.Err(); err != nil {
		return false, err
	}
	rows, err := qs.query(ctx, r.String(), r.Args())
	if err != nil {
		return false, err
	}
	out, err := scanRows(rows, []Column{{Name: "exists", Type: core.TypeBoolean}})
	if err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("exists returned %d rows", len(out))
	}
	ok, _ := out[0].Values[0].(bool)
	return ok, nil
}

// Contains reports whether a row with key v is present.
func (qs *QuerySet) Contains(ctx context.Context, v any) (bool, error) {
	cols := qs.outputColumns()
	if len(cols) == 0 {
		return false, nil
	}
	return qs.Filter(Eq(cols[0].Name, v)).Exists(ctx)
}

// InBulk returns the rows whose field is one of values, keyed by the
// field's value formatted with %v. No values selects every row.
func (qs *QuerySet) InBulk(ctx context.Context, field string, values ...any) (map[string]Row, error) {
	filtered := qs
	if len(values) > 0 {
		filtered = qs.Filter(In(field, values))
	}
	rows, err := filtered.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Row, len(rows))
	for _, row := range rows {
		out[fmt.Sprint(row.Get(field))] = row
	}
	return out, nil
}

// Aggregate evaluates named aggregate expressions over the whole result.
func (qs *QuerySet) Aggregate(ctx context.Context, aggs map[string]Expr) (map[string]any, error) {
	names := sortedKeys(aggs)
	out := make(map[string]any, len(names))
	if len(names) == 0 {
		return out, nil
	}
	if qs.empty && len(qs.combined) == 0 {
		for _, n := range names {
			out[n] = nil
		}
		return out, nil
	}

	inner := qs.outputColumns()
	lookup := func(name string) (Column, bool) {
		for _, c := range inner {
			if c.Name == name {
				return c, true
			}
		}
		return Column{}, false
	}
	cols := make([]Column, len(names))
	sql, args, err := qs.wrap(func(r *Renderer) {
		for i, n := range names {
			if i > 0 {
				r.Write(", ")
			}
			cols[i] = resultColumn(n, aggs[n], lookup)
			writeItem(r, aggs[n], cols[i], true)
			r.Write(" AS ")
			r.Ident(n)
		}
	})
	if err != nil {
		return nil, err
	}
	rows, err := qs.query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	res, err := scanRows(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("aggregate returned %d rows", len(res))
	}
	for i, n := range names {
		out[n] = res[0].Values[i]
	}
	return out, nil
}

// Explain returns the database's plan for the query.
func (qs *QuerySet) Explain(ctx context.Context) (string, error) {
	if qs.empty && len(qs.combined) == 0 {
		return "", nil
	}
	sql, args, err := qs.SQL()
	if err != nil {
		return "", err
	}
	rows, err := qs.query(ctx, "EXPLAIN "+sql, args)
	if err != nil {
		return "", err
	}
	res, err := scanRows(rows, nil)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, row := range res {
		for i, v := range row.Values {
			if i > 0 {
				b.WriteString("\t")
			}
			fmt.Fprint(&b, v)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
