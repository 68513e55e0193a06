package sequence

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/series"
)

func dec(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestIntegers(t *testing.T) {
	tests := []struct {
		name              string
		start, stop, step int64
		want              []int64
	}{
		{"unit step", 0, 4, 1, []int64{0, 1, 2, 3, 4}},
		{"step lands past stop", 1, 10, 3, []int64{1, 4, 7, 10}},
		{"step skips stop", 1, 9, 3, []int64{1, 4, 7}},
		{"negative bounds", -3, -1, 1, []int64{-3, -2, -1}},
		{"zero step yields nothing", 0, 4, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slices.Collect(Integers(tt.start, tt.stop, tt.step)))
		})
	}
}

func TestDecimals(t *testing.T) {
	var got []string
	for v := range Decimals(dec(t, "0.0"), dec(t, "1.0"), dec(t, "0.25")) {
		got = append(got, v.String())
	}
	assert.Equal(t, []string{"0.0", "0.25", "0.50", "0.75", "1.00"}, got)
}

func TestTimes_MonthStep(t *testing.T) {
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	stop := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	got := slices.Collect(Times(start, stop, pgtype.Interval{Months: 1, Valid: true}))
	assert.Equal(t, []time.Time{
		start,
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC),
	}, got)
}

func TestExpect(t *testing.T) {
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		kind  core.Kind
		raw   any
		count int64
		first any
		last  any
	}{
		{"integer", core.KindInteger, []int{0, 9}, 10, int64(0), int64(9)},
		{"integer range", core.KindIntegerRange, []int{0, 9}, 9, core.NewRange("0", "1"), core.NewRange("8", "9")},
		{"integer range inclusive stop", core.KindIntegerRange, []int{0, 9, 3}, 3, core.NewRange("0", "3"), core.NewRange("6", "9")},
		{"integer range partial last step", core.KindIntegerRange, []int{0, 10, 3}, 3, core.NewRange("0", "3"), core.NewRange("6", "9")},
		{
			"integer range at int64 max", core.KindIntegerRange, []int{math.MaxInt64 - 4, math.MaxInt64, 2}, 2,
			core.NewRange("9223372036854775803", "9223372036854775805"),
			core.NewRange("9223372036854775805", "9223372036854775807"),
		},
		{"date", core.KindDate, []string{"2024-01-01", "2024-01-31"}, 31, jan1, jan1.AddDate(0, 0, 30)},
		{"date hourly", core.KindDate, []string{"2024-01-01", "2024-01-02", "6 hours"}, 5, jan1, jan1.AddDate(0, 0, 1)},
		{
			"date range", core.KindDateRange, []string{"2024-01-01", "2024-01-31"}, 30,
			core.NewRange("2024-01-01", "2024-01-02"), core.NewRange("2024-01-30", "2024-01-31"),
		},
		{"datetime", core.KindDateTime, series.P(jan1, jan1.Add(24*time.Hour), time.Hour), 25, jan1, jan1.Add(24 * time.Hour)},
		{
			"datetime range", core.KindDateTimeRange, series.P(jan1, jan1.Add(2*time.Hour), "1 hour"), 2,
			core.NewRange("2024-01-01 00:00:00+00", "2024-01-01 01:00:00+00"),
			core.NewRange("2024-01-01 01:00:00+00", "2024-01-01 02:00:00+00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := series.Normalize(tt.raw, tt.kind)
			require.NoError(t, err)

			e, err := Expect(p)
			require.NoError(t, err)
			assert.Equal(t, tt.count, e.Count)
			assert.NoError(t, Same(tt.kind, tt.first, e.First))
			assert.NoError(t, Same(tt.kind, tt.last, e.Last))
		})
	}
}

func TestExpect_Decimal(t *testing.T) {
	p, err := series.Normalize([]string{"0.0", "1.0", "0.1"}, core.KindDecimal)
	require.NoError(t, err)

	rows, err := Collect(p)
	require.NoError(t, err)
	require.Len(t, rows, 11)

	sum := new(apd.Decimal)
	for _, r := range rows {
		_, err := decCtx.Add(sum, sum, r.(*apd.Decimal))
		require.NoError(t, err)
	}
	assert.Equal(t, 0, sum.Cmp(dec(t, "5.5")))

	p, err = series.Normalize([]string{"0.0", "1.0", "0.5"}, core.KindDecimalRange)
	require.NoError(t, err)
	e, err := Expect(p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.Count)
	assert.Equal(t, core.NewRange("0.5", "1.0"), e.Last)
}

func TestExpect_InvalidParams(t *testing.T) {
	_, err := Expect(series.Params{})
	assert.Error(t, err)
}

func TestSame(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	instant := time.Date(2024, 1, 1, 5, 30, 0, 0, ist)

	tests := []struct {
		name      string
		kind      core.Kind
		want, got any
		ok        bool
	}{
		{"ints", core.KindInteger, int64(3), int64(3), true},
		{"ints differ", core.KindInteger, int64(3), int64(4), false},
		{"decimals by value", core.KindDecimal, dec(t, "1.50"), dec(t, "1.5"), true},
		{"instants across zones", core.KindDateTime, instant, instant.UTC(), true},
		{"dates ignore zone", core.KindDate, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, ist), true},
		{"type mismatch", core.KindInteger, int64(3), "3", false},
		{"nil", core.KindInteger, nil, nil, true},
		{
			"range bounds by instant", core.KindDateTimeRange,
			core.NewRange("2024-01-01 00:00:00+00", "2024-01-01 01:00:00+00"),
			core.NewRange("2024-01-01 05:30:00+05:30", "2024-01-01 06:30:00+05:30"),
			true,
		},
		{"range decimals", core.KindDecimalRange, core.NewRange("0.5", "1.0"), core.NewRange("0.50", "1"), true},
		{"range differs", core.KindIntegerRange, core.NewRange("0", "1"), core.NewRange("0", "2"), false},
		{"range bounds notation", core.KindIntegerRange, core.NewRange("0", "1"), core.Range{Lower: "0", Upper: "1", Bounds: "[]"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Same(tt.kind, tt.want, tt.got)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrMismatch)
		})
	}
}

func TestSame_Unparseable(t *testing.T) {
	err := Same(core.KindDateRange, core.NewRange("2024-01-01", "2024-01-02"), core.NewRange("yesterday", "today"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}
