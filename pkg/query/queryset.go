// Package query is the relational query layer: an immutable, chainable
// QuerySet over any Source (stored table or derived table), rendered to SQL
// for a dialect and executed through an Executor.
//
// Every builder method returns a new QuerySet; the receiver is never modified,
// so one QuerySet can be embedded in any number of composed queries.
package query

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/dialect"
)

// Executor runs rendered statements. adapter.BaseSQLAdapter satisfies it.
type Executor interface {
	Query(ctx context.Context, sql string, args ...any) (*core.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}

// Option configures a QuerySet.
type Option func(*QuerySet)

// WithLogger sets the logger used for statement debug output.
func WithLogger(l *slog.Logger) Option {
	return func(qs *QuerySet) {
		if l != nil {
			qs.logger = l
		}
	}
}

type namedExpr struct {
	name     string
	expr     Expr
	selected bool
}

type orderTerm struct {
	field string
	desc  bool
}

type combination struct {
	op     string
	others []*QuerySet
}

// QuerySet is a lazily evaluated relation over a Source.
type QuerySet struct {
	exec    Executor
	dialect *dialect.Dialect
	src     Source
	logger  *slog.Logger

	where       []Predicate
	annotations []namedExpr
	order       []orderTerm
	reversed    bool
	distinct    bool
	fields      []string
	projections []namedExpr
	limit       int
	offset      int
	empty       bool
	forUpdate   bool
	combined    []combination
	related     []string
	prefetch    []string
}

// New creates a QuerySet selecting every column of src.
func New(exec Executor, d *dialect.Dialect, src Source, opts ...Option) *QuerySet {
	qs := &QuerySet{
		exec:    exec,
		dialect: d,
		src:     src,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(qs)
	}
	return qs
}

func (qs *QuerySet) clone() *QuerySet {
	c := *qs
	c.where = slices.Clone(qs.where)
	c.annotations = slices.Clone(qs.annotations)
	c.order = slices.Clone(qs.order)
	c.fields = slices.Clone(qs.fields)
	c.projections = slices.Clone(qs.projections)
	c.combined = slices.Clone(qs.combined)
	c.related = slices.Clone(qs.related)
	c.prefetch = slices.Clone(qs.prefetch)
	return &c
}

// Source returns the source the query selects from.
func (qs *QuerySet) Source() Source { return qs.src }

// Dialect returns the dialect the query renders for.
func (qs *QuerySet) Dialect() *dialect.Dialect { return qs.dialect }

// IsEmpty reports whether the query set was emptied with None.
func (qs *QuerySet) IsEmpty() bool { return qs.empty }

// Filter narrows the relation to rows satisfying every predicate.
func (qs *QuerySet) Filter(preds ...Predicate) *QuerySet {
	c := qs.clone()
	c.where = append(c.where, preds...)
	return c
}

// Exclude removes rows satisfying all of the predicates.
func (qs *QuerySet) Exclude(preds ...Predicate) *QuerySet {
	c := qs.clone()
	switch len(preds) {
	case 0:
	case 1:
		c.where = append(c.where, Not(preds[0]))
	default:
		c.where = append(c.where, Not(And(preds...)))
	}
	return c
}

// Annotate adds a computed output column.
func (qs *QuerySet) Annotate(name string, e Expr) *QuerySet {
	c := qs.clone()
	c.annotations = append(c.annotations, namedExpr{name: name, expr: e, selected: true})
	return c
}

// Alias names an expression for use in filters and ordering without
// selecting it.
func (qs *QuerySet) Alias(name string, e Expr) *QuerySet {
	c := qs.clone()
	c.annotations = append(c.annotations, namedExpr{name: name, expr: e})
	return c
}

// OrderBy replaces the ordering. A leading "-" sorts descending.
func (qs *QuerySet) OrderBy(fields ...string) *QuerySet {
	c := qs.clone()
	c.order = c.order[:0]
	for _, f := range fields {
		if name, ok := strings.CutPrefix(f, "-"); ok {
			c.order = append(c.order, orderTerm{field: name, desc: true})
		} else {
			c.order = append(c.order, orderTerm{field: f})
		}
	}
	c.reversed = false
	return c
}

// Reverse flips the ordering. An unordered query set is ordered by its key.
func (qs *QuerySet) Reverse() *QuerySet {
	c := qs.clone()
	c.reversed = !c.reversed
	return c
}

// Distinct removes duplicate rows.
func (qs *QuerySet) Distinct() *QuerySet {
	c := qs.clone()
	c.distinct = true
	return c
}

// Values restricts the output to the named columns and annotations.
func (qs *QuerySet) Values(fields ...string) *QuerySet {
	c := qs.clone()
	c.fields = slices.Clone(fields)
	c.projections = nil
	return c
}

// ValuesList is Values; rows are already positional.
func (qs *QuerySet) ValuesList(fields ...string) *QuerySet {
	return qs.Values(fields...)
}

// Only is Values for callers thinking in terms of deferred loading.
func (qs *QuerySet) Only(fields ...string) *QuerySet {
	return qs.Values(fields...)
}

// Defer drops the named columns from the output.
func (qs *QuerySet) Defer(fields ...string) *QuerySet {
	var keep []string
	for _, col := range qs.outputColumns() {
		if !slices.Contains(fields, col.Name) {
			keep = append(keep, col.Name)
		}
	}
	return qs.Values(keep...)
}

// Dates returns the distinct dates of field truncated to unit
// (year, quarter, month, week, day), ascending.
func (qs *QuerySet) Dates(field, unit string) *QuerySet {
	return qs.truncated(field, unit, true)
}

// Datetimes returns the distinct timestamps of field truncated to unit
// (year … second), ascending.
func (qs *QuerySet) Datetimes(field, unit string) *QuerySet {
	return qs.truncated(field, unit, false)
}

func (qs *QuerySet) truncated(field, unit string, date bool) *QuerySet {
	c := qs.clone()
	c.fields = nil
	c.projections = []namedExpr{{name: field, expr: truncExpr{field: field, unit: strings.ToLower(unit), date: date}, selected: true}}
	c.distinct = true
	c.order = []orderTerm{{field: field}}
	c.reversed = false
	return c
}

// None returns an empty query set that never reaches the database.
func (qs *QuerySet) None() *QuerySet {
	c := qs.clone()
	c.empty = true
	return c
}

// All returns a copy of the query set.
func (qs *QuerySet) All() *QuerySet { return qs.clone() }

// Union combines rows of qs and others, removing duplicates.
func (qs *QuerySet) Union(others ...*QuerySet) *QuerySet { return qs.combine("UNION", others) }

// Intersection keeps rows present in qs and every other query set.
func (qs *QuerySet) Intersection(others ...*QuerySet) *QuerySet {
	return qs.combine("INTERSECT", others)
}

// Difference keeps rows of qs absent from the others.
func (qs *QuerySet) Difference(others ...*QuerySet) *QuerySet {
	return qs.combine("EXCEPT", others)
}

func (qs *QuerySet) combine(op string, others []*QuerySet) *QuerySet {
	c := qs.clone()
	if len(others) > 0 {
		c.combined = append(c.combined, combination{op: op, others: others})
	}
	return c
}

// SelectRelated records relations to join eagerly. Sources in this package
// have no foreign keys, so the names only travel with the query set.
func (qs *QuerySet) SelectRelated(fields ...string) *QuerySet {
	c := qs.clone()
	c.related = append(c.related, fields...)
	return c
}

// PrefetchRelated records relations to load in follow-up queries. Like
// SelectRelated it has nothing to load for single-source relations.
func (qs *QuerySet) PrefetchRelated(lookups ...string) *QuerySet {
	c := qs.clone()
	c.prefetch = append(c.prefetch, lookups...)
	return c
}

// Extra appends a raw WHERE fragment. Each ? binds the next argument.
func (qs *QuerySet) Extra(where string, args ...any) *QuerySet {
	c := qs.clone()
	c.where = append(c.where, rawPredicate{sql: where, args: args})
	return c
}

// Using returns the query set bound to another executor.
func (qs *QuerySet) Using(exec Executor) *QuerySet {
	c := qs.clone()
	c.exec = exec
	return c
}

// SelectForUpdate locks the selected rows.
func (qs *QuerySet) SelectForUpdate() *QuerySet {
	c := qs.clone()
	c.forUpdate = true
	return c
}

// Limit caps the number of rows.
func (qs *QuerySet) Limit(n int) *QuerySet {
	c := qs.clone()
	c.limit = n
	return c
}

// Offset skips the first n rows.
func (qs *QuerySet) Offset(n int) *QuerySet {
	c := qs.clone()
	c.offset = n
	return c
}

// Raw runs hand-written SQL through the query set's executor. On an empty
// query set the raw query is inert too.
func (qs *QuerySet) Raw(sql string, args ...any) *RawQuery {
	return &RawQuery{exec: qs.exec, sql: sql, args: args, logger: qs.logger, empty: qs.empty}
}
