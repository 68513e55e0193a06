package postgres_test

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/genseries/internal/testutil"
	"github.com/leapstack-labs/genseries/pkg/adapters/postgres"
	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/model"
	"github.com/leapstack-labs/genseries/pkg/query"
	"github.com/leapstack-labs/genseries/pkg/series"
)

// connect opens the database named by GENSERIES_TEST_PG_HOST and friends,
// skipping the test when no server is configured.
func connect(t *testing.T) *postgres.Adapter {
	t.Helper()
	host := os.Getenv("GENSERIES_TEST_PG_HOST")
	if host == "" {
		t.Skip("GENSERIES_TEST_PG_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("GENSERIES_TEST_PG_PORT"))
	cfg := core.AdapterConfig{
		Host:     host,
		Port:     port,
		Database: envOr("GENSERIES_TEST_PG_DATABASE", "postgres"),
		Username: envOr("GENSERIES_TEST_PG_USER", "postgres"),
		Password: os.Getenv("GENSERIES_TEST_PG_PASSWORD"),
		Options:  map[string]string{"timezone": "UTC"},
	}

	adp := postgres.New(testutil.NewTestLogger(t))
	require.NoError(t, adp.Connect(context.Background(), cfg))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestSeries_AllKinds(t *testing.T) {
	adp := connect(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		kind      core.Kind
		raw       any
		wantCount int64
		wantFirst any
		wantLast  any
	}{
		{core.KindInteger, []int{0, 9}, 10, int64(0), int64(9)},
		{core.KindIntegerRange, []int{0, 9}, 9, core.NewRange("0", "1"), core.NewRange("8", "9")},
		{core.KindDecimalRange, []string{"0.0", "1.0", "0.5"}, 2, core.NewRange("0.0", "0.5"), core.NewRange("0.5", "1.0")},
		{core.KindDate, []string{"2024-01-01", "2024-01-31"}, 31, start, start.AddDate(0, 0, 30)},
		{
			core.KindDateRange, []string{"2024-01-01", "2024-01-31"}, 30,
			core.NewRange("2024-01-01", "2024-01-02"), core.NewRange("2024-01-30", "2024-01-31"),
		},
		{core.KindDateTime, series.P(start, start.Add(24*time.Hour), "1 hour"), 25, start, start.Add(24 * time.Hour)},
		{
			core.KindDateTimeRange, series.P(start, start.Add(2*time.Hour), "1 hour"), 2,
			core.NewRange("2024-01-01 00:00:00+00", "2024-01-01 01:00:00+00"),
			core.NewRange("2024-01-01 01:00:00+00", "2024-01-01 02:00:00+00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			rec := &model.Recorder{}
			m := model.New(model.Phantom{Name: "Series", Kind: tt.kind}, adp, model.WithSink(rec))

			qs, err := m.GenerateSeries(tt.raw)
			require.NoError(t, err)

			n, err := qs.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, n)

			first, err := qs.First(ctx)
			require.NoError(t, err)
			last, err := qs.Last(ctx)
			require.NoError(t, err)

			if want, ok := tt.wantFirst.(time.Time); ok {
				assert.True(t, want.Equal(first.Get("id").(time.Time)))
				assert.True(t, tt.wantLast.(time.Time).Equal(last.Get("id").(time.Time)))
			} else {
				assert.Equal(t, tt.wantFirst, first.Get("id"))
				assert.Equal(t, tt.wantLast, last.Get("id"))
			}
			assert.Empty(t, rec.Diagnostics())
		})
	}
}

func TestSeries_Decimal(t *testing.T) {
	adp := connect(t)
	ctx := context.Background()
	m := model.New(model.Phantom{Name: "Amount", Kind: core.KindDecimal}, adp)

	qs, err := m.GenerateSeries([]string{"0.0", "1.0", "0.1"})
	require.NoError(t, err)

	n, err := qs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	agg, err := qs.Aggregate(ctx, map[string]query.Expr{"total": query.Sum("id")})
	require.NoError(t, err)
	total := agg["total"].(*apd.Decimal)
	want, _, _ := apd.NewFromString("5.5")
	assert.Equal(t, 0, total.Cmp(want))
}

func TestSeries_RangeLookups(t *testing.T) {
	adp := connect(t)
	ctx := context.Background()
	m := model.New(model.Phantom{Name: "Bucket", Kind: core.KindIntegerRange}, adp)

	qs, err := m.GenerateSeries([]int{0, 9})
	require.NoError(t, err)

	n, err := qs.Filter(query.Overlaps("id", core.NewRange("2", "4"))).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	row, err := qs.Get(ctx, query.Contains("id", 5))
	require.NoError(t, err)
	assert.Equal(t, core.NewRange("5", "6"), row.Get("id"))
}
