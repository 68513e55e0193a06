package model

import (
	"context"
	"iter"

	"github.com/leapstack-labs/genseries/pkg/query"
)

var _ query.Relation = (*Manager)(nil)

// guard reports a call that has no effect on the phantom entity.
func (m *Manager) guard(method string) {
	m.sink.Warn(Diagnostic{Entity: m.phantom.Name, Method: method, Message: LimitedMessage})
}

// inert returns an empty query set over the phantom's empty source. It never
// executes and never names a table.
func (m *Manager) inert(method string) *query.QuerySet {
	m.guard(method)
	return query.New(m.exec, m.dialect, emptySource{p: m.phantom}, query.WithLogger(m.logger)).None()
}

func (m *Manager) Filter(...query.Predicate) *query.QuerySet  { return m.inert("Filter") }
func (m *Manager) Exclude(...query.Predicate) *query.QuerySet { return m.inert("Exclude") }
func (m *Manager) Annotate(string, query.Expr) *query.QuerySet {
	return m.inert("Annotate")
}
func (m *Manager) Alias(string, query.Expr) *query.QuerySet   { return m.inert("Alias") }
func (m *Manager) OrderBy(...string) *query.QuerySet          { return m.inert("OrderBy") }
func (m *Manager) Reverse() *query.QuerySet                   { return m.inert("Reverse") }
func (m *Manager) Distinct() *query.QuerySet                  { return m.inert("Distinct") }
func (m *Manager) Values(...string) *query.QuerySet           { return m.inert("Values") }
func (m *Manager) ValuesList(...string) *query.QuerySet       { return m.inert("ValuesList") }
func (m *Manager) Dates(string, string) *query.QuerySet       { return m.inert("Dates") }
func (m *Manager) Datetimes(string, string) *query.QuerySet   { return m.inert("Datetimes") }
func (m *Manager) None() *query.QuerySet                      { return m.inert("None") }
func (m *Manager) All() *query.QuerySet                       { return m.inert("All") }
func (m *Manager) Union(...*query.QuerySet) *query.QuerySet   { return m.inert("Union") }
func (m *Manager) Intersection(...*query.QuerySet) *query.QuerySet {
	return m.inert("Intersection")
}
func (m *Manager) Difference(...*query.QuerySet) *query.QuerySet {
	return m.inert("Difference")
}
func (m *Manager) SelectRelated(...string) *query.QuerySet   { return m.inert("SelectRelated") }
func (m *Manager) PrefetchRelated(...string) *query.QuerySet { return m.inert("PrefetchRelated") }
func (m *Manager) Extra(string, ...any) *query.QuerySet      { return m.inert("Extra") }
func (m *Manager) Defer(...string) *query.QuerySet           { return m.inert("Defer") }
func (m *Manager) Only(...string) *query.QuerySet            { return m.inert("Only") }
func (m *Manager) Using(query.Executor) *query.QuerySet      { return m.inert("Using") }
func (m *Manager) SelectForUpdate() *query.QuerySet          { return m.inert("SelectForUpdate") }

func (m *Manager) Raw(sql string, args ...any) *query.RawQuery {
	return m.inert("Raw").Raw(sql, args...)
}

func (m *Manager) Fetch(context.Context) ([]query.Row, error) {
	m.guard("Fetch")
	return nil, nil
}

func (m *Manager) Get(context.Context, ...query.Predicate) (query.Row, error) {
	m.guard("Get")
	return query.Row{}, nil
}

func (m *Manager) Create(context.Context, map[string]any) (query.Row, error) {
	m.guard("Create")
	return query.Row{}, nil
}

func (m *Manager) GetOrCreate(context.Context, map[string]any, map[string]any) (query.Row, bool, error) {
	m.guard("GetOrCreate")
	return query.Row{}, false, nil
}

func (m *Manager) UpdateOrCreate(context.Context, map[string]any, map[string]any) (query.Row, bool, error) {
	m.guard("UpdateOrCreate")
	return query.Row{}, false, nil
}

func (m *Manager) BulkCreate(context.Context, []map[string]any) (int64, error) {
	m.guard("BulkCreate")
	return 0, nil
}

func (m *Manager) BulkUpdate(context.Context, []map[string]any, string) (int64, error) {
	m.guard("BulkUpdate")
	return 0, nil
}

func (m *Manager) Count(context.Context) (int64, error) {
	m.guard("Count")
	return 0, nil
}

func (m *Manager) InBulk(context.Context, string, ...any) (map[string]query.Row, error) {
	m.guard("InBulk")
	return map[string]query.Row{}, nil
}

func (m *Manager) Iterator(context.Context) iter.Seq2[query.Row, error] {
	m.guard("Iterator")
	return func(func(query.Row, error) bool) {}
}

func (m *Manager) Latest(context.Context, ...string) (query.Row, error) {
	m.guard("Latest")
	return query.Row{}, nil
}

func (m *Manager) Earliest(context.Context, ...string) (query.Row, error) {
	m.guard("Earliest")
	return query.Row{}, nil
}

func (m *Manager) First(context.Context) (query.Row, error) {
	m.guard("First")
	return query.Row{}, nil
}

func (m *Manager) Last(context.Context) (query.Row, error) {
	m.guard("Last")
	return query.Row{}, nil
}

func (m *Manager) Aggregate(context.Context, map[string]query.Expr) (map[string]any, error) {
	m.guard("Aggregate")
	return map[string]any{}, nil
}

func (m *Manager) Exists(context.Context) (bool, error) {
	m.guard("Exists")
	return false, nil
}

func (m *Manager) Contains(context.Context, any) (bool, error) {
	m.guard("Contains")
	return false, nil
}

func (m *Manager) Update(context.Context, map[string]any) (int64, error) {
	m.guard("Update")
	return 0, nil
}

func (m *Manager) Delete(context.Context) (int64, error) {
	m.guard("Delete")
	return 0, nil
}

func (m *Manager) Explain(context.Context) (string, error) {
	m.guard("Explain")
	return "", nil
}
