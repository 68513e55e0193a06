// Package series turns a (start, stop, step) triple into a derived table
// backed by the database's generate_series function.
//
// Normalize validates and coerces raw bounds for a core.Kind, Describe
// supplies the static per-kind metadata, and Compile produces a Relation
// that can be used as the source of a query.QuerySet:
//
//	p, err := series.Normalize([]any{0, 9}, core.KindInteger)
//	rel, err := series.Compile(p)
//	qs := query.New(db, postgres.Postgres, rel)
//
// Scalar kinds yield every term of [start, stop]. Range kinds yield the
// half-open ranges [s, s+step) whose upper bound does not pass stop, one row
// fewer than the scalar series over the same bounds.
package series
