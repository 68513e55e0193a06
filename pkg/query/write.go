package query

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// table returns the writable table behind qs.
func (qs *QuerySet) table() (Table, error) {
	switch t := qs.src.(type) {
	case Table:
		return t, nil
	case *Table:
		return *t, nil
	}
	return Table{}, ErrReadOnlySource
}

func (t Table) column(name string) (Column, error) {
	for _, c := range t.Cols {
		if c.Name == name {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("%w: %q on table %s", ErrUnknownField, name, t.Name)
}

func (t Table) key() (Column, error) {
	if len(t.Cols) == 0 {
		return Column{}, fmt.Errorf("table %s has no columns", t.Name)
	}
	return t.Cols[0], nil
}

// insertColumns returns the table columns present in any of rows, in table
// order.
func (t Table) insertColumns(rows []map[string]any) ([]Column, error) {
	seen := map[string]bool{}
	for _, row := range rows {
		for name := range row {
			if _, err := t.column(name); err != nil {
				return nil, err
			}
			seen[name] = true
		}
	}
	var cols []Column
	for _, c := range t.Cols {
		if seen[c.Name] {
			cols = append(cols, c)
		}
	}
	return cols, nil
}

func (qs *QuerySet) renderInsert(t Table, cols []Column, rows []map[string]any, returning bool) *Renderer {
	r := NewRenderer(qs.dialect)
	r.Write("INSERT INTO ")
	t.WriteSource(r)
	if len(cols) == 0 {
		r.Write(" DEFAULT VALUES")
	} else {
		r.Write(" (")
		for i, c := range cols {
			if i > 0 {
				r.Write(", ")
			}
			r.Ident(c.Name)
		}
		r.Write(") VALUES ")
		for i, row := range rows {
			if i > 0 {
				r.Write(", ")
			}
			r.Write("(")
			for j, c := range cols {
				if j > 0 {
					r.Write(", ")
				}
				r.CastArg(row[c.Name], c.Type)
			}
			r.Write(")")
		}
	}
	if returning {
		r.Write(" RETURNING ")
		for i, c := range t.Cols {
			if i > 0 {
				r.Write(", ")
			}
			writeItem(r, rawIdent(c.Name), c, true)
		}
	}
	return r
}

type rawIdent string

func (i rawIdent) WriteSQL(r *Renderer) { r.Ident(string(i)) }

// Create inserts one row and returns it as stored.
func (qs *QuerySet) Create(ctx context.Context, values map[string]any) (Row, error) {
	t, err := qs.table()
	if err != nil {
		return Row{}, err
	}
	rows := []map[string]any{values}
	cols, err := t.insertColumns(rows)
	if err != nil {
		return Row{}, err
	}
	returning := qs.dialect.SupportsReturning
	r := qs.renderInsert(t, cols, rows, returning)
	if err := r.Err(); err != nil {
		return Row{}, err
	}
	if !returning {
		if _, err := qs.execute(ctx, r.String(), r.Args()); err != nil {
			return Row{}, err
		}
		row := Row{}
		for _, c := range cols {
			row.Columns = append(row.Columns, c.Name)
			row.Values = append(row.Values, values[c.Name])
		}
		return row, nil
	}
	res, err := qs.query(ctx, r.String(), r.Args())
	if err != nil {
		return Row{}, err
	}
	out, err := scanRows(res, t.Cols)
	if err != nil {
		return Row{}, err
	}
	if len(out) != 1 {
		return Row{}, fmt.Errorf("insert returned %d rows", len(out))
	}
	return out[0], nil
}

// BulkCreate inserts rows in one statement and returns the number inserted.
func (qs *QuerySet) BulkCreate(ctx context.Context, rows []map[string]any) (int64, error) {
	t, err := qs.table()
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	cols, err := t.insertColumns(rows)
	if err != nil {
		return 0, err
	}
	r := qs.renderInsert(t, cols, rows, false)
	if err := r.Err(); err != nil {
		return 0, err
	}
	return qs.execute(ctx, r.String(), r.Args())
}

// writeKeyFilter writes `WHERE "key" IN (SELECT key FROM <qs>)`, or nothing
// when qs selects the whole table.
func (qs *QuerySet) writeKeyFilter(r *Renderer, key Column) {
	whole := !qs.empty && len(qs.where) == 0 && len(qs.combined) == 0 && qs.limit == 0 && qs.offset == 0
	if whole {
		return
	}
	r.Write(" WHERE ")
	r.Ident(key.Name)
	r.Write(" IN (")
	keys := qs.clone()
	keys.fields = []string{key.Name}
	keys.projections = nil
	keys.order = nil
	keys.reversed = false
	if qs.limit > 0 || qs.offset > 0 {
		keys.order = qs.order
		keys.reversed = qs.reversed
	}
	keys.forUpdate = false
	keys.writeSelect(r, selectOpts{single: true})
	r.Write(")")
}

// Update sets columns on every matched row and returns the number updated.
func (qs *QuerySet) Update(ctx context.Context, values map[string]any) (int64, error) {
	t, err := qs.table()
	if err != nil {
		return 0, err
	}
	if qs.empty || len(values) == 0 {
		return 0, nil
	}
	key, err := t.key()
	if err != nil {
		return 0, err
	}

	r := NewRenderer(qs.dialect)
	r.Write("UPDATE ")
	t.WriteSource(r)
	r.Write(" SET ")
	// Col in a value refers to the row being updated.
	r.pushScope(&scope{alias: qs.dialect.QuoteQualified(t.Name), columns: t.Cols})
	for i, name := range sortedKeys(values) {
		c, err := t.column(name)
		if err != nil {
			return 0, err
		}
		if i > 0 {
			r.Write(", ")
		}
		r.Ident(c.Name)
		r.Write(" = ")
		writeOperand(r, values[name], c.Type)
	}
	r.popScope()
	qs.writeKeyFilter(r, key)
	if err := r.Err(); err != nil {
		return 0, err
	}
	return qs.execute(ctx, r.String(), r.Args())
}

// Delete removes every matched row and returns the number deleted.
func (qs *QuerySet) Delete(ctx context.Context) (int64, error) {
	t, err := qs.table()
	if err != nil {
		return 0, err
	}
	if qs.empty {
		return 0, nil
	}
	key, err := t.key()
	if err != nil {
		return 0, err
	}
	r := NewRenderer(qs.dialect)
	r.Write("DELETE FROM ")
	t.WriteSource(r)
	qs.writeKeyFilter(r, key)
	if err := r.Err(); err != nil {
		return 0, err
	}
	return qs.execute(ctx, r.String(), r.Args())
}

// mergeValues returns a new map holding lookup overlaid with values. Either
// may be nil.
func mergeValues(lookup, values map[string]any) map[string]any {
	merged := make(map[string]any, len(lookup)+len(values))
	maps.Copy(merged, lookup)
	maps.Copy(merged, values)
	return merged
}

func lookupPredicates(lookup map[string]any) []Predicate {
	preds := make([]Predicate, 0, len(lookup))
	for _, k := range sortedKeys(lookup) {
		preds = append(preds, Eq(k, lookup[k]))
	}
	return preds
}

// GetOrCreate returns the row matching lookup, creating it from lookup and
// defaults when absent. The bool reports whether a row was created.
func (qs *QuerySet) GetOrCreate(ctx context.Context, lookup, defaults map[string]any) (Row, bool, error) {
	if _, err := qs.table(); err != nil {
		return Row{}, false, err
	}
	row, err := qs.Get(ctx, lookupPredicates(lookup)...)
	if err == nil {
		return row, false, nil
	}
	if !errors.Is(err, ErrDoesNotExist) {
		return Row{}, false, err
	}
	row, err = qs.Create(ctx, mergeValues(lookup, defaults))
	if err != nil {
		return Row{}, false, err
	}
	return row, true, nil
}

// UpdateOrCreate updates the row matching lookup with values, creating it
// when absent. The bool reports whether a row was created.
func (qs *QuerySet) UpdateOrCreate(ctx context.Context, lookup, values map[string]any) (Row, bool, error) {
	if _, err := qs.table(); err != nil {
		return Row{}, false, err
	}
	preds := lookupPredicates(lookup)
	_, err := qs.Get(ctx, preds...)
	switch {
	case errors.Is(err, ErrDoesNotExist):
		row, err := qs.Create(ctx, mergeValues(lookup, values))
		if err != nil {
			return Row{}, false, err
		}
		return row, true, nil
	case err != nil:
		return Row{}, false, err
	}

	matched := qs.Filter(preds...)
	if _, err := matched.Update(ctx, values); err != nil {
		return Row{}, false, err
	}
	// Re-read through the updated values so a lookup field changed by
	// values still finds the row.
	row, err := qs.Get(ctx, lookupPredicates(mergeValues(lookup, values))...)
	if err != nil {
		return Row{}, false, err
	}
	return row, false, nil
}

// BulkUpdate updates each row identified by its key field with the row's
// remaining values and returns the total number updated.
func (qs *QuerySet) BulkUpdate(ctx context.Context, rows []map[string]any, key string) (int64, error) {
	t, err := qs.table()
	if err != nil {
		return 0, err
	}
	if _, err := t.column(key); err != nil {
		return 0, err
	}
	var total int64
	for i, row := range rows {
		id, ok := row[key]
		if !ok {
			return total, fmt.Errorf("row %d has no %q value", i, key)
		}
		values := maps.Clone(row)
		delete(values, key)
		n, err := qs.Filter(Eq(key, id)).Update(ctx, values)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
