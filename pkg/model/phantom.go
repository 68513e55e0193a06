// Package model declares phantom entities: schema carriers for a series
// column with no backing table. A Manager is the only way to query one, and
// only GenerateSeries reaches the database; every other query method is
// guarded and has no effect.
package model

import (
	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/query"
	"github.com/leapstack-labs/genseries/pkg/series"
)

// Phantom declares an entity with a single series column of Kind.
type Phantom struct {
	Name string
	Kind core.Kind
}

// Columns returns the entity's schema: the series column.
func (p Phantom) Columns() []query.Column {
	d, ok := series.Describe(p.Kind)
	if !ok {
		return []query.Column{{Name: series.ColumnName}}
	}
	return []query.Column{{Name: series.ColumnName, Kind: p.Kind, Type: d.StorageType}}
}

// emptySource is the phantom's own relation: an empty derived table with the
// entity's schema, so inert query sets never name a table.
type emptySource struct {
	p Phantom
}

func (s emptySource) Columns() []query.Column { return s.p.Columns() }

func (s emptySource) WriteSource(r *query.Renderer) {
	r.Write("(SELECT ")
	for i, c := range s.Columns() {
		if i > 0 {
			r.Write(", ")
		}
		if c.Type == "" {
			r.Write("NULL")
		} else {
			r.Cast(c.Type, func() { r.Write("NULL") })
		}
		r.Write(" AS ")
		r.Ident(c.Name)
	}
	r.Write(" WHERE 1 = 0)")
}
