package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/leapstack-labs/genseries/pkg/core"
)

// Predicate is a boolean expression usable in Filter and Exclude.
type Predicate = Expr

type comparison struct {
	field string
	op    string
	value any
}

// Eq matches rows whose field equals v. A nil v matches NULL.
func Eq(field string, v any) Predicate {
	if v == nil {
		return nullPredicate{field: field, null: true}
	}
	return comparison{field: field, op: "=", value: v}
}

// Ne matches rows whose field differs from v.
func Ne(field string, v any) Predicate { return comparison{field: field, op: "<>", value: v} }

// Gt matches rows whose field is greater than v.
func Gt(field string, v any) Predicate { return comparison{field: field, op: ">", value: v} }

// Gte matches rows whose field is greater than or equal to v.
func Gte(field string, v any) Predicate { return comparison{field: field, op: ">=", value: v} }

// Lt matches rows whose field is less than v.
func Lt(field string, v any) Predicate { return comparison{field: field, op: "<", value: v} }

// Lte matches rows whose field is less than or equal to v.
func Lte(field string, v any) Predicate { return comparison{field: field, op: "<=", value: v} }

// Overlaps matches range rows sharing at least one point with v.
func Overlaps(field string, v any) Predicate { return comparison{field: field, op: "&&", value: v} }

// Contains matches range rows containing v, which may be a range or an element.
func Contains(field string, v any) Predicate { return comparison{field: field, op: "@>", value: v} }

// ContainedBy matches range rows contained by the range v.
func ContainedBy(field string, v any) Predicate {
	return comparison{field: field, op: "<@", value: v}
}

func (c comparison) WriteSQL(r *Renderer) {
	r.writeColumn(c.field, 0)
	r.Write(" " + c.op + " ")
	writeOperand(r, c.value, operandType(c, r.columnType(c.field)))
}

// operandType picks the cast applied to a bound comparison value.
func operandType(c comparison, colType string) string {
	elem, isRange := rangeElements[colType]
	if c.op != "@>" || !isRange {
		return colType
	}
	switch c.value.(type) {
	case core.Range, *core.Range:
		return colType
	default:
		return elem
	}
}

type inPredicate struct {
	field string
	value any
}

// In matches rows whose field is in v: a *QuerySet, a Subquery, or a slice.
func In(field string, v any) Predicate { return inPredicate{field: field, value: v} }

func (p inPredicate) WriteSQL(r *Renderer) {
	switch v := p.value.(type) {
	case *QuerySet:
		r.writeColumn(p.field, 0)
		r.Write(" IN (")
		v.writeSelect(r, selectOpts{single: true})
		r.Write(")")
		return
	case subqueryExpr:
		r.writeColumn(p.field, 0)
		r.Write(" IN ")
		v.WriteSQL(r)
		return
	}

	rv := reflect.ValueOf(p.value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		p = inPredicate{field: p.field, value: []any{p.value}}
		rv = reflect.ValueOf(p.value)
	}
	if rv.Len() == 0 {
		r.Write("1 = 0")
		return
	}
	typ := r.columnType(p.field)
	r.writeColumn(p.field, 0)
	r.Write(" IN (")
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			r.Write(", ")
		}
		writeOperand(r, rv.Index(i).Interface(), typ)
	}
	r.Write(")")
}

type nullPredicate struct {
	field string
	null  bool
}

// IsNull matches rows whose field is NULL (null=true) or not NULL.
func IsNull(field string, null bool) Predicate { return nullPredicate{field: field, null: null} }

func (p nullPredicate) WriteSQL(r *Renderer) {
	r.writeColumn(p.field, 0)
	if p.null {
		r.Write(" IS NULL")
	} else {
		r.Write(" IS NOT NULL")
	}
}

type notPredicate struct {
	p Predicate
}

// Not negates p.
func Not(p Predicate) Predicate { return notPredicate{p: p} }

func (n notPredicate) WriteSQL(r *Renderer) {
	r.Write("NOT (")
	n.p.WriteSQL(r)
	r.Write(")")
}

type junction struct {
	op    string
	preds []Predicate
}

// And matches rows satisfying every predicate.
func And(preds ...Predicate) Predicate { return junction{op: "AND", preds: preds} }

// Or matches rows satisfying at least one predicate.
func Or(preds ...Predicate) Predicate { return junction{op: "OR", preds: preds} }

func (j junction) WriteSQL(r *Renderer) {
	if len(j.preds) == 0 {
		if j.op == "AND" {
			r.Write("1 = 1")
		} else {
			r.Write("1 = 0")
		}
		return
	}
	r.Write("(")
	for i, p := range j.preds {
		if i > 0 {
			r.Write(" " + j.op + " ")
		}
		p.WriteSQL(r)
	}
	r.Write(")")
}

type rawPredicate struct {
	sql  string
	args []any
}

// WriteSQL substitutes each ? in the raw text with a bound argument. The
// placeholder and argument counts must match.
func (p rawPredicate) WriteSQL(r *Renderer) {
	parts := strings.Split(p.sql, "?")
	if n := len(parts) - 1; n != len(p.args) {
		r.Fail(fmt.Errorf("raw condition %q has %d placeholders but %d arguments", p.sql, n, len(p.args)))
		return
	}
	r.Write("(")
	for i, part := range parts {
		r.Write(part)
		if i < len(p.args) {
			r.Arg(p.args[i])
		}
	}
	r.Write(")")
}

type falsePredicate struct{}

func (falsePredicate) WriteSQL(r *Renderer) { r.Write("1 = 0") }

func writeOperand(r *Renderer, v any, typ string) {
	switch x := v.(type) {
	case *QuerySet:
		r.Write("(")
		x.writeSelect(r, selectOpts{single: true})
		r.Write(")")
	case Expr:
		x.WriteSQL(r)
	default:
		r.CastArg(v, typ)
	}
}
