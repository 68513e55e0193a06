package query

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/genseries/pkg/core"
)

type selectOpts struct {
	// single selects only the first output column.
	single bool
	// top casts numeric and range columns to text for decoding.
	top bool
}

// textDecoded lists canonical types that are selected as text at the top
// level and parsed client side.
var textDecoded = map[string]bool{
	core.TypeNumeric:   true,
	core.TypeInt8Range: true,
	core.TypeNumRange:  true,
	core.TypeDateRange: true,
	core.TypeTstzRange: true,
}

// scopeColumns lists every name resolvable inside the query: source columns
// followed by annotations and aliases.
func (qs *QuerySet) scopeColumns() []Column {
	cols := append([]Column(nil), qs.src.Columns()...)
	lookup := func(name string) (Column, bool) {
		for _, c := range cols {
			if c.Name == name {
				return c, true
			}
		}
		return Column{}, false
	}
	for _, a := range qs.annotations {
		cols = append(cols, resultColumn(a.name, a.expr, lookup))
	}
	return cols
}

// Columns returns the output columns of the query set.
func (qs *QuerySet) Columns() []Column { return qs.outputColumns() }

func (qs *QuerySet) outputColumns() []Column {
	scoped := qs.scopeColumns()
	lookup := func(name string) (Column, bool) {
		for _, c := range scoped {
			if c.Name == name {
				return c, true
			}
		}
		return Column{}, false
	}
	switch {
	case len(qs.projections) > 0:
		out := make([]Column, 0, len(qs.projections))
		for _, p := range qs.projections {
			out = append(out, resultColumn(p.name, p.expr, lookup))
		}
		return out
	case len(qs.fields) > 0:
		out := make([]Column, 0, len(qs.fields))
		for _, f := range qs.fields {
			if c, ok := lookup(f); ok {
				out = append(out, c)
			} else {
				out = append(out, Column{Name: f})
			}
		}
		return out
	}
	out := append([]Column(nil), qs.src.Columns()...)
	for i, a := range qs.annotations {
		if a.selected {
			out = append(out, scoped[len(qs.src.Columns())+i])
		}
	}
	return out
}

func (qs *QuerySet) newScope(alias string) *scope {
	s := &scope{alias: alias, columns: qs.scopeColumns()}
	if len(qs.annotations) > 0 {
		s.annotations = make(map[string]Expr, len(qs.annotations))
		for _, a := range qs.annotations {
			s.annotations[a.name] = a.expr
		}
	}
	return s
}

// selectItems pairs each output column with the expression producing it.
func (qs *QuerySet) selectItems() []namedExpr {
	if len(qs.projections) > 0 {
		return qs.projections
	}
	var names []string
	if len(qs.fields) > 0 {
		names = qs.fields
	} else {
		for _, c := range qs.outputColumns() {
			names = append(names, c.Name)
		}
	}
	items := make([]namedExpr, 0, len(names))
	for _, n := range names {
		items = append(items, namedExpr{name: n, expr: Col(n), selected: true})
	}
	return items
}

// writeSelect renders the query as a SELECT statement.
func (qs *QuerySet) writeSelect(r *Renderer, opts selectOpts) {
	if len(qs.combined) > 0 {
		qs.writeCombined(r, opts)
		return
	}

	alias := r.NewAlias()
	r.pushScope(qs.newScope(alias))
	defer r.popScope()

	items := qs.selectItems()
	cols := qs.outputColumns()
	if opts.single && len(items) > 1 {
		items, cols = items[:1], cols[:1]
	}

	r.Write("SELECT ")
	if qs.distinct {
		r.Write("DISTINCT ")
	}
	for i, item := range items {
		if i > 0 {
			r.Write(", ")
		}
		writeItem(r, item.expr, cols[i], opts.top)
		r.Write(" AS ")
		r.Ident(item.name)
	}

	r.Write(" FROM ")
	qs.src.WriteSource(r)
	r.Write(" AS " + alias)

	qs.writeWhere(r)
	qs.writeOrder(r)
	qs.writeLimit(r)
	if qs.forUpdate && r.Dialect().SupportsForUpdate && !qs.distinct {
		r.Write(" FOR UPDATE")
	}
}

func writeItem(r *Renderer, e Expr, col Column, top bool) {
	if top && textDecoded[col.Type] {
		r.Cast(core.TypeText, func() { e.WriteSQL(r) })
		return
	}
	e.WriteSQL(r)
}

func (qs *QuerySet) writeWhere(r *Renderer) {
	if !qs.empty && len(qs.where) == 0 {
		return
	}
	r.Write(" WHERE ")
	if qs.empty {
		falsePredicate{}.WriteSQL(r)
		return
	}
	for i, p := range qs.where {
		if i > 0 {
			r.Write(" AND ")
		}
		p.WriteSQL(r)
	}
}

// effectiveOrder resolves Reverse against the explicit ordering, falling
// back to the key column.
func (qs *QuerySet) effectiveOrder() []orderTerm {
	order := qs.order
	if len(order) == 0 && qs.reversed {
		if cols := qs.outputColumns(); len(cols) > 0 {
			order = []orderTerm{{field: cols[0].Name}}
		}
	}
	if !qs.reversed {
		return order
	}
	flipped := make([]orderTerm, len(order))
	for i, o := range order {
		flipped[i] = orderTerm{field: o.field, desc: !o.desc}
	}
	return flipped
}

func (qs *QuerySet) writeOrder(r *Renderer) {
	order := qs.effectiveOrder()
	if len(order) == 0 {
		return
	}
	r.Write(" ORDER BY ")
	for i, o := range order {
		if i > 0 {
			r.Write(", ")
		}
		if qs.isProjection(o.field) {
			// Ordering a DISTINCT projection must name the output column.
			r.Ident(o.field)
		} else {
			r.writeColumn(o.field, 0)
		}
		if o.desc {
			r.Write(" DESC")
		}
	}
}

func (qs *QuerySet) isProjection(name string) bool {
	for _, p := range qs.projections {
		if p.name == name {
			return true
		}
	}
	return false
}

func (qs *QuerySet) writeLimit(r *Renderer) {
	if qs.limit > 0 {
		r.Write(" LIMIT " + strconv.Itoa(qs.limit))
	}
	if qs.offset > 0 {
		r.Write(" OFFSET " + strconv.Itoa(qs.offset))
	}
}

// writeCombined renders a set operation. Ordering and limits of qs apply to
// the combined result; each operand keeps its own.
func (qs *QuerySet) writeCombined(r *Renderer, opts selectOpts) {
	base := qs.clone()
	base.combined = nil
	base.order = nil
	base.reversed = false
	base.limit, base.offset = 0, 0
	base.forUpdate = false

	cols := base.outputColumns()
	alias := r.NewAlias()

	r.Write("SELECT ")
	n := len(cols)
	if opts.single && n > 1 {
		n = 1
	}
	for i := range n {
		if i > 0 {
			r.Write(", ")
		}
		ref := func() { r.Write(alias + "." + r.Dialect().QuoteIdentifier(cols[i].Name)) }
		if opts.top && textDecoded[cols[i].Type] {
			r.Cast(core.TypeText, ref)
		} else {
			ref()
		}
		r.Write(" AS ")
		r.Ident(cols[i].Name)
	}
	r.Write(" FROM ((")
	base.writeSelect(r, selectOpts{})
	r.Write(")")
	for _, c := range qs.combined {
		for _, other := range c.others {
			r.Write(" " + c.op + " (")
			other.writeSelect(r, selectOpts{})
			r.Write(")")
		}
	}
	r.Write(") AS " + alias)

	r.pushScope(&scope{alias: alias, columns: cols})
	defer r.popScope()
	qs.writeOrder(r)
	qs.writeLimit(r)
}

// SQL renders the query set as a top-level SELECT.
func (qs *QuerySet) SQL() (string, []any, error) {
	r := NewRenderer(qs.dialect)
	qs.writeSelect(r, selectOpts{top: true})
	if err := r.Err(); err != nil {
		return "", nil, err
	}
	return r.String(), r.Args(), nil
}

// String renders the query set for display, ignoring errors.
func (qs *QuerySet) String() string {
	sql, _, err := qs.SQL()
	if err != nil {
		return "<invalid query: " + err.Error() + ">"
	}
	return strings.TrimSpace(sql)
}

// wrap renders `SELECT <head> FROM (<qs>) AS tN` with the inner output
// columns in scope while head is written.
func (qs *QuerySet) wrap(head func(r *Renderer)) (string, []any, error) {
	r := NewRenderer(qs.dialect)
	const alias = "tq"
	r.pushScope(&scope{alias: alias, columns: qs.outputColumns()})
	r.Write("SELECT ")
	head(r)
	r.popScope()
	r.Write(" FROM (")
	qs.writeSelect(r, selectOpts{})
	r.Write(") AS " + alias)
	if err := r.Err(); err != nil {
		return "", nil, err
	}
	return r.String(), r.Args(), nil
}
