package query

import (
	"context"
	"iter"
)

// Relation is the full query surface of an entity. *QuerySet implements it
// by building and running SQL; restricted entities may implement it with
// inert behavior.
type Relation interface {
	Filter(preds ...Predicate) *QuerySet
	Exclude(preds ...Predicate) *QuerySet
	Annotate(name string, e Expr) *QuerySet
	Alias(name string, e Expr) *QuerySet
	OrderBy(fields ...string) *QuerySet
	Reverse() *QuerySet
	Distinct() *QuerySet
	Values(fields ...string) *QuerySet
	ValuesList(fields ...string) *QuerySet
	Dates(field, unit string) *QuerySet
	Datetimes(field, unit string) *QuerySet
	None() *QuerySet
	All() *QuerySet
	Union(others ...*QuerySet) *QuerySet
	Intersection(others ...*QuerySet) *QuerySet
	Difference(others ...*QuerySet) *QuerySet
	SelectRelated(fields ...string) *QuerySet
	PrefetchRelated(lookups ...string) *QuerySet
	Extra(where string, args ...any) *QuerySet
	Defer(fields ...string) *QuerySet
	Only(fields ...string) *QuerySet
	Using(exec Executor) *QuerySet
	SelectForUpdate() *QuerySet
	Raw(sql string, args ...any) *RawQuery

	Fetch(ctx context.Context) ([]Row, error)
	Get(ctx context.Context, preds ...Predicate) (Row, error)
	Create(ctx context.Context, values map[string]any) (Row, error)
	GetOrCreate(ctx context.Context, lookup, defaults map[string]any) (Row, bool, error)
	UpdateOrCreate(ctx context.Context, lookup, values map[string]any) (Row, bool, error)
	BulkCreate(ctx context.Context, rows []map[string]any) (int64, error)
	BulkUpdate(ctx context.Context, rows []map[string]any, key string) (int64, error)
	Count(ctx context.Context) (int64, error)
	InBulk(ctx context.Context, field string, values ...any) (map[string]Row, error)
	Iterator(ctx context.Context) iter.Seq2[Row, error]
	Latest(ctx context.Context, fields ...string) (Row, error)
	Earliest(ctx context.Context, fields ...string) (Row, error)
	First(ctx context.Context) (Row, error)
	Last(ctx context.Context) (Row, error)
	Aggregate(ctx context.Context, aggs map[string]Expr) (map[string]any, error)
	Exists(ctx context.Context) (bool, error)
	Contains(ctx context.Context, v any) (bool, error)
	Update(ctx context.Context, values map[string]any) (int64, error)
	Delete(ctx context.Context) (int64, error)
	Explain(ctx context.Context) (string, error)
}

var _ Relation = (*QuerySet)(nil)
