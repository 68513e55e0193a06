package duckdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/genseries/internal/testutil"
	"github.com/leapstack-labs/genseries/pkg/adapters/duckdb"
	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/dialect"
	"github.com/leapstack-labs/genseries/pkg/model"
	"github.com/leapstack-labs/genseries/pkg/query"
	"github.com/leapstack-labs/genseries/pkg/series"
)

func connect(t *testing.T) *duckdb.Adapter {
	t.Helper()
	adp := duckdb.New(testutil.NewTestLogger(t))
	require.NoError(t, adp.Connect(context.Background(), core.AdapterConfig{Path: ":memory:"}))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func manager(t *testing.T, adp *duckdb.Adapter, kind core.Kind, rec *model.Recorder) *model.Manager {
	t.Helper()
	return model.New(model.Phantom{Name: "Series", Kind: kind}, adp,
		model.WithLogger(testutil.NewTestLogger(t)), model.WithSink(rec))
}

func TestSeries_Integer(t *testing.T) {
	ctx := context.Background()
	rec := &model.Recorder{}
	m := manager(t, connect(t), core.KindInteger, rec)

	qs, err := m.GenerateSeries([]int{0, 9})
	require.NoError(t, err)

	n, err := qs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	first, err := qs.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Get("id"))

	last, err := qs.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), last.Get("id"))

	agg, err := qs.Aggregate(ctx, map[string]query.Expr{"total": query.Sum("id")})
	require.NoError(t, err)
	total, ok := agg["total"].(*apd.Decimal)
	require.True(t, ok)
	assert.Equal(t, 0, total.Cmp(apd.New(45, 0)))

	assert.Empty(t, rec.Diagnostics())
}

func TestSeries_IntegerStep(t *testing.T) {
	ctx := context.Background()
	m := manager(t, connect(t), core.KindInteger, &model.Recorder{})

	qs, err := m.GenerateSeries(series.P(1, 10, 3))
	require.NoError(t, err)

	rows, err := qs.OrderBy("-id").Fetch(ctx)
	require.NoError(t, err)

	var got []any
	for _, r := range rows {
		got = append(got, r.Get("id"))
	}
	assert.Equal(t, []any{int64(10), int64(7), int64(4), int64(1)}, got)
}

func TestSeries_Dates(t *testing.T) {
	ctx := context.Background()
	m := manager(t, connect(t), core.KindDate, &model.Recorder{})

	qs, err := m.GenerateSeries([]string{"2024-01-01", "2024-01-31"})
	require.NoError(t, err)

	n, err := qs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(31), n)

	first, err := qs.First(ctx)
	require.NoError(t, err)
	got, ok := first.Get("id").(time.Time)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	weekly, err := m.GenerateSeries([]string{"2024-01-01", "2024-01-31", "1 week"})
	require.NoError(t, err)
	n, err = weekly.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestSeries_DateTime(t *testing.T) {
	ctx := context.Background()
	m := manager(t, connect(t), core.KindDateTime, &model.Recorder{})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	qs, err := m.GenerateSeries(series.P(start, start.Add(24*time.Hour), time.Hour))
	require.NoError(t, err)

	n, err := qs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25), n)

	last, err := qs.Last(ctx)
	require.NoError(t, err)
	got, ok := last.Get("id").(time.Time)
	require.True(t, ok)
	assert.True(t, got.Equal(start.Add(24*time.Hour)))
}

func TestSeries_DatesComposed(t *testing.T) {
	ctx := context.Background()
	m := manager(t, connect(t), core.KindDate, &model.Recorder{})

	qs, err := m.GenerateSeries([]string{"2024-01-01", "2024-01-10"})
	require.NoError(t, err)

	agg, err := qs.Aggregate(ctx, map[string]query.Expr{"latest": query.Max("id")})
	require.NoError(t, err)
	latest, ok := agg["latest"].(time.Time)
	require.True(t, ok, "got %T", agg["latest"])
	assert.True(t, latest.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))

	// The same relation embedded twice, once inside a correlated subquery.
	twice, err := qs.Filter(query.Exists(qs.Filter(query.Eq("id", query.OuterRef("id"))))).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), twice)

	ranges, err := manager(t, connect(t), core.KindDateTime, &model.Recorder{}).
		GenerateSeries([]string{"2024-01-31", "2024-04-30", "1 mon"})
	require.NoError(t, err)
	rows, err := ranges.OrderBy("id").Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	feb, ok := rows[1].Get("id").(time.Time)
	require.True(t, ok)
	assert.True(t, feb.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
}

func TestSeries_ComposedWithTable(t *testing.T) {
	ctx := context.Background()
	adp := connect(t)

	_, err := adp.Exec(ctx, `CREATE TABLE events (id BIGINT, label VARCHAR)`)
	require.NoError(t, err)
	_, err = adp.Exec(ctx, `INSERT INTO events VALUES (3, 'a'), (5, 'b'), (50, 'c')`)
	require.NoError(t, err)

	md, err := adp.GetTableMetadata(ctx, "events")
	require.NoError(t, err)
	events := query.New(adp, adp.Dialect(), query.TableFromMetadata(md, adp.Dialect().DefaultSchema))

	m := manager(t, adp, core.KindInteger, &model.Recorder{})
	qs, err := m.GenerateSeries([]int{0, 9})
	require.NoError(t, err)

	n, err := qs.Filter(query.In("id", events.Values("id"))).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	missing, err := qs.Exclude(query.In("id", events.Values("id"))).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), missing)

	// A NULL in the reference column must not empty the anti-join.
	_, err = adp.Exec(ctx, `INSERT INTO events VALUES (NULL, 'd')`)
	require.NoError(t, err)
	missing, err = qs.Exclude(query.In("id", events.Filter(query.IsNull("id", false)).Values("id"))).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), missing)

	labelled, err := events.Filter(query.In("id", qs)).OrderBy("id").Values("label").Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, labelled, 2)
	assert.Equal(t, "a", labelled[0].Get("label"))
}

func TestSeries_UnsupportedKinds(t *testing.T) {
	ctx := context.Background()
	adp := connect(t)

	for _, kind := range []core.Kind{core.KindDecimal, core.KindIntegerRange} {
		t.Run(kind.String(), func(t *testing.T) {
			qs, err := manager(t, adp, kind, &model.Recorder{}).GenerateSeries([]string{"1", "5"})
			require.NoError(t, err)

			_, err = qs.Fetch(ctx)
			var unsupported *dialect.UnsupportedTypeError
			require.ErrorAs(t, err, &unsupported)
		})
	}
}

func TestSeries_GuardedCallsNeverExecute(t *testing.T) {
	ctx := context.Background()
	rec := &model.Recorder{}
	m := manager(t, connect(t), core.KindInteger, rec)

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	rows, err := m.Raw(`SELECT 1`).Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	deleted, err := m.Delete(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	assert.Len(t, rec.Diagnostics(), 3)
}
