package series

import (
	"github.com/cockroachdb/errors"

	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/dialect"
	"github.com/leapstack-labs/genseries/pkg/query"
)

// ColumnName is the name of the single output column of every series.
const ColumnName = "id"

// termAlias names the set-returning call inside the derived table.
const termAlias = "gs"

// Relation is a compiled series: a derived table with one typed column.
// It holds no connection and renders the same SQL for the same Params, so
// one Relation may be embedded in any number of queries.
type Relation struct {
	params Params
	desc   Descriptor
}

var _ query.Source = (*Relation)(nil)

// Compile builds the derived table for p. p must come from Normalize; any
// other value is a programmer error reported as an assertion failure.
func Compile(p Params) (*Relation, error) {
	desc, ok := Describe(p.kind)
	if !ok {
		return nil, errors.AssertionFailedf("series: compile called with unnormalized params (kind %s)", p.kind)
	}
	if err := p.Validate(); err != nil {
		return nil, errors.NewAssertionErrorWithWrappedErrf(err, "series: compile called with invalid params %s", p)
	}
	return &Relation{params: p, desc: desc}, nil
}

// MustCompile is Compile that panics on a contract violation.
func MustCompile(p Params) *Relation {
	rel, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return rel
}

// Params returns the triple the relation was compiled from.
func (rel *Relation) Params() Params { return rel.params }

// Kind returns the value kind of the output column.
func (rel *Relation) Kind() core.Kind { return rel.desc.Kind }

// Descriptor returns the registry entry used for compilation.
func (rel *Relation) Descriptor() Descriptor { return rel.desc }

// Columns implements query.Source.
func (rel *Relation) Columns() []query.Column {
	return []query.Column{{Name: ColumnName, Kind: rel.desc.Kind, Type: rel.desc.StorageType}}
}

// WriteSource implements query.Source. Scalar kinds select every term of
// [start, stop]; range kinds pair each term s with s+step and keep the pairs
// whose upper bound does not pass stop. The filter is written as
// s <= stop - step so no term is advanced past the last one.
func (rel *Relation) WriteSource(r *query.Renderer) {
	d := rel.desc
	start, stop, step := rel.params.bindArgs()
	term := termAlias + ".term"

	r.Write("(SELECT ")
	if d.IsRange {
		rel.writePair(r, term, step)
	} else {
		r.Cast(d.StorageType, func() { r.Write(term) })
	}
	r.Write(" AS ")
	r.Ident(ColumnName)

	fn := r.Dialect().SeriesFunction
	if fn == "" {
		fn = "generate_series"
	}
	r.Write(" FROM " + fn + "(")
	r.CastArg(start, d.TermType)
	r.Write(", ")
	r.CastArg(stop, d.TermType)
	r.Write(", ")
	r.CastArg(step, d.StepType)
	r.Write(") AS " + termAlias + "(term)")

	if d.IsRange {
		r.Write(" WHERE " + term + " <= ")
		r.CastArg(stop, d.TermType)
		r.Write(" - ")
		r.CastArg(step, d.StepType)
	}
	r.Write(")")
}

// writePair writes <rangefunc>(lower, upper, '[)').
func (rel *Relation) writePair(r *query.Renderer, term string, step any) {
	d := rel.desc
	if !r.Dialect().SupportsRangeTypes {
		// Surface the dialect's own unsupported-type error.
		r.TypeName(d.StorageType)
		return
	}
	elem := MustDescribe(d.Scalar).StorageType
	bound := func(upper bool) {
		write := func() {
			r.Write(term)
			if upper {
				r.Write(" + ")
				r.CastArg(step, d.StepType)
			}
		}
		if elem != d.TermType {
			r.Cast(elem, write)
			return
		}
		write()
	}
	r.Write(d.RangeFunc + "(")
	bound(false)
	r.Write(", ")
	bound(true)
	r.Write(", '" + core.HalfOpen + "')")
}

// SQL renders the derived table on its own, without an enclosing query.
func (rel *Relation) SQL(d *dialect.Dialect) (string, []any, error) {
	r := query.NewRenderer(d)
	rel.WriteSource(r)
	if err := r.Err(); err != nil {
		return "", nil, err
	}
	return r.String(), r.Args(), nil
}
