package query

import (
	"fmt"

	"github.com/leapstack-labs/genseries/pkg/core"
)

// Expr is a SQL expression that renders itself against the current scope.
type Expr interface {
	WriteSQL(r *Renderer)
}

type colRef struct {
	name  string
	outer int
}

// Col references a column or annotation of the query being rendered.
func Col(name string) Expr { return colRef{name: name} }

// OuterRef references a column of the enclosing query from inside a
// subquery, making the subquery correlated.
func OuterRef(name string) Expr { return colRef{name: name, outer: 1} }

func (c colRef) WriteSQL(r *Renderer) { r.writeColumn(c.name, c.outer) }

type valueExpr struct {
	v   any
	typ string
}

// Value binds a literal parameter.
func Value(v any) Expr { return valueExpr{v: v} }

// TypedValue binds a literal parameter cast to a canonical type.
func TypedValue(v any, canonical string) Expr { return valueExpr{v: v, typ: canonical} }

func (v valueExpr) WriteSQL(r *Renderer) { r.CastArg(v.v, v.typ) }

type subqueryExpr struct {
	qs *QuerySet
}

// Subquery embeds qs as a scalar subquery. The subquery yields its first
// output column.
func Subquery(qs *QuerySet) Expr { return subqueryExpr{qs: qs} }

func (s subqueryExpr) WriteSQL(r *Renderer) {
	r.Write("(")
	s.qs.writeSelect(r, selectOpts{single: true})
	r.Write(")")
}

type existsExpr struct {
	qs *QuerySet
}

// Exists is true when qs yields at least one row. Combined with OuterRef it
// expresses a correlated existence check.
func Exists(qs *QuerySet) Expr { return existsExpr{qs: qs} }

func (e existsExpr) WriteSQL(r *Renderer) {
	r.Write("EXISTS (")
	e.qs.writeSelect(r, selectOpts{})
	r.Write(")")
}

type aggregateExpr struct {
	fn       string
	arg      Expr
	distinct bool
}

// Sum aggregates the named column.
func Sum(field string) Expr { return aggregateExpr{fn: "SUM", arg: Col(field)} }

// Avg averages the named column.
func Avg(field string) Expr { return aggregateExpr{fn: "AVG", arg: Col(field)} }

// Min returns the smallest value of the named column.
func Min(field string) Expr { return aggregateExpr{fn: "MIN", arg: Col(field)} }

// Max returns the largest value of the named column.
func Max(field string) Expr { return aggregateExpr{fn: "MAX", arg: Col(field)} }

// Count counts the non-null values of the named column.
func Count(field string) Expr { return aggregateExpr{fn: "COUNT", arg: Col(field)} }

// CountDistinct counts the distinct non-null values of the named column.
func CountDistinct(field string) Expr {
	return aggregateExpr{fn: "COUNT", arg: Col(field), distinct: true}
}

// CountAll counts rows.
func CountAll() Expr { return aggregateExpr{fn: "COUNT"} }

func (a aggregateExpr) WriteSQL(r *Renderer) {
	r.Write(a.fn + "(")
	if a.distinct {
		r.Write("DISTINCT ")
	}
	if a.arg == nil {
		r.Write("*")
	} else {
		a.arg.WriteSQL(r)
	}
	r.Write(")")
}

// truncUnits lists the units accepted by Dates (date) and Datetimes (all).
var truncUnits = map[string]bool{
	"year": true, "quarter": true, "month": true, "week": true, "day": true,
	"hour": false, "minute": false, "second": false,
}

type truncExpr struct {
	field string
	unit  string
	date  bool
}

func (t truncExpr) WriteSQL(r *Renderer) {
	dateUnit, ok := truncUnits[t.unit]
	if !ok || (t.date && !dateUnit) {
		r.Fail(fmt.Errorf("invalid truncation unit %q", t.unit))
		return
	}
	trunc := func() {
		r.Write("date_trunc('" + t.unit + "', ")
		r.writeColumn(t.field, 0)
		r.Write(")")
	}
	if t.date {
		r.Cast(core.TypeDate, trunc)
		return
	}
	trunc()
}

// resultColumn infers the output column of e when selected under name.
// lookup resolves plain column references of the query e belongs to.
func resultColumn(name string, e Expr, lookup func(string) (Column, bool)) Column {
	typed := func(t string) Column {
		return Column{Name: name, Kind: typeKinds[t], Type: t}
	}
	switch x := e.(type) {
	case colRef:
		if x.outer == 0 {
			if c, ok := lookup(x.name); ok {
				c.Name = name
				return c
			}
		}
	case valueExpr:
		return typed(x.typ)
	case subqueryExpr:
		if cols := x.qs.outputColumns(); len(cols) > 0 {
			c := cols[0]
			c.Name = name
			return c
		}
	case aggregateExpr:
		switch x.fn {
		case "COUNT":
			return typed(core.TypeBigint)
		case "SUM", "AVG":
			return typed(core.TypeNumeric)
		default:
			if x.arg != nil {
				return resultColumn(name, x.arg, lookup)
			}
		}
	case truncExpr:
		if x.date {
			return typed(core.TypeDate)
		}
		if c, ok := lookup(x.field); ok {
			c.Name = name
			return c
		}
	case existsExpr, comparison, inPredicate, nullPredicate, notPredicate, junction:
		return typed(core.TypeBoolean)
	}
	return Column{Name: name}
}
