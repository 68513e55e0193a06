package series_test

import (
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/series"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize_Forms(t *testing.T) {
	args := series.Args{Start: 0, Stop: 10, Step: 2}
	tests := []struct {
		name     string
		raw      any
		wantStep int64
	}{
		{name: "int slice", raw: []int{0, 10}, wantStep: 1},
		{name: "any slice with step", raw: []any{0, 10, 2}, wantStep: 2},
		{name: "array", raw: [3]int64{0, 10, 2}, wantStep: 2},
		{name: "positional", raw: series.P(0, 10), wantStep: 1},
		{name: "positional with step", raw: series.P(0, 10, 2), wantStep: 2},
		{name: "keyword", raw: series.Args{Start: 0, Stop: 10}, wantStep: 1},
		{name: "keyword pointer", raw: &args, wantStep: 2},
		{name: "map", raw: map[string]any{"start": 0, "stop": 10, "step": 2}, wantStep: 2},
		{name: "string values", raw: []string{"0", "10", "2"}, wantStep: 2},
		{name: "params", raw: series.MustNormalize([]int{0, 10, 2}, core.KindInteger), wantStep: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := series.Normalize(tt.raw, core.KindInteger)
			require.NoError(t, err)
			assert.Equal(t, core.KindInteger, p.Kind())
			assert.Equal(t, int64(0), p.Start())
			assert.Equal(t, int64(10), p.Stop())
			assert.Equal(t, tt.wantStep, p.Step())
		})
	}
}

func TestNormalize_DefaultStep(t *testing.T) {
	oneDay := pgtype.Interval{Days: 1, Valid: true}
	tests := []struct {
		kind core.Kind
		raw  any
		want any
	}{
		{kind: core.KindInteger, raw: []int{1, 5}, want: int64(1)},
		{kind: core.KindIntegerRange, raw: []int{1, 5}, want: int64(1)},
		{kind: core.KindDate, raw: []string{"2024-01-01", "2024-01-05"}, want: oneDay},
		{kind: core.KindDateTime, raw: []string{"2024-01-01T00:00:00Z", "2024-01-05T00:00:00Z"}, want: oneDay},
		{kind: core.KindDateRange, raw: []string{"2024-01-01", "2024-01-05"}, want: oneDay},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			p, err := series.Normalize(tt.raw, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Step())
		})
	}

	t.Run("decimal", func(t *testing.T) {
		p, err := series.Normalize([]string{"0.5", "3.5"}, core.KindDecimal)
		require.NoError(t, err)
		step, ok := p.Step().(*apd.Decimal)
		require.True(t, ok)
		assert.Equal(t, "1", step.String())
	})
}

func TestNormalize_RangeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		kind core.Kind
		want string
	}{
		{name: "equal bounds", raw: []int{5, 5}, kind: core.KindInteger, want: series.MsgStartNotBeforeStop},
		{name: "descending", raw: []int{6, 5}, kind: core.KindInteger, want: series.MsgStartNotBeforeStop},
		{name: "zero step", raw: []int{0, 10, 0}, kind: core.KindInteger, want: series.MsgStepNotPositive},
		{name: "negative step", raw: []int{0, 10, -1}, kind: core.KindIntegerRange, want: series.MsgStepNotPositive},
		{name: "decimal zero step", raw: []string{"0", "1", "0.00"}, kind: core.KindDecimal, want: series.MsgStepNotPositive},
		{name: "decimal descending", raw: []string{"1.5", "1.25"}, kind: core.KindDecimalRange, want: series.MsgStartNotBeforeStop},
		{name: "dates descending", raw: []string{"2024-02-01", "2024-01-01"}, kind: core.KindDate, want: series.MsgStartNotBeforeStop},
		{name: "same day after truncation", raw: []string{"2024-01-01T10:00:00Z", "2024-01-01T20:00:00Z"}, kind: core.KindDate, want: series.MsgStartNotBeforeStop},
		{name: "negative interval", raw: []string{"2024-01-01", "2024-02-01", "-1 day"}, kind: core.KindDate, want: series.MsgStepNotPositive},
		{name: "mixed sign interval", raw: []string{"2024-01-01", "2024-02-01", "1 month -1 day"}, kind: core.KindDateTime, want: series.MsgStepNotPositive},
		{name: "zero interval", raw: []string{"2024-01-01", "2024-02-01", "0s"}, kind: core.KindDateTimeRange, want: series.MsgStepNotPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := series.Normalize(tt.raw, tt.kind)
			var rangeErr *series.RangeError
			require.True(t, errors.As(err, &rangeErr), "got %v", err)
			assert.Equal(t, tt.want, rangeErr.Message)
			assert.Equal(t, tt.kind, rangeErr.Kind)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestNormalize_TypeErrors(t *testing.T) {
	tests := []struct {
		name      string
		raw       any
		kind      core.Kind
		wantField string
	}{
		{name: "text bound", raw: []any{"a", 10}, kind: core.KindInteger, wantField: "start"},
		{name: "fractional integer", raw: []any{1.5, 3}, kind: core.KindInteger, wantField: "start"},
		{name: "boolean bound", raw: []any{0, true}, kind: core.KindInteger, wantField: "stop"},
		{name: "overflow", raw: []any{0, uint64(math.MaxUint64)}, kind: core.KindInteger, wantField: "stop"},
		{name: "nil bound", raw: series.Args{Stop: 3}, kind: core.KindInteger, wantField: "start"},
		{name: "not a number", raw: []string{"NaN", "1"}, kind: core.KindDecimal, wantField: "start"},
		{name: "infinite", raw: []string{"0", "Infinity"}, kind: core.KindDecimal, wantField: "stop"},
		{name: "bad date", raw: []string{"yesterday", "2024-01-01"}, kind: core.KindDate, wantField: "start"},
		{name: "numeric date step", raw: []any{"2024-01-01", "2024-02-01", 3}, kind: core.KindDate, wantField: "step"},
		{name: "bad interval", raw: []string{"2024-01-01", "2024-02-01", "1 fortnight"}, kind: core.KindDate, wantField: "step"},
		{name: "interval days past int32", raw: []string{"2024-01-01", "2024-02-01", "4294967297 days"}, kind: core.KindDate, wantField: "step"},
		{name: "interval days wrapping negative", raw: []string{"2024-01-01", "2024-02-01", "3000000000 days"}, kind: core.KindDate, wantField: "step"},
		{name: "interval below microseconds", raw: []string{"2024-01-01", "2024-02-01", "0.0000001 seconds"}, kind: core.KindDateTime, wantField: "step"},
		{name: "four values", raw: []int{1, 2, 3, 4}, kind: core.KindInteger, wantField: "params"},
		{name: "one value", raw: []int{1}, kind: core.KindInteger, wantField: "params"},
		{name: "positional arity", raw: series.P(1, 2, 3, 4), kind: core.KindInteger, wantField: "params"},
		{name: "unknown key", raw: map[string]any{"start": 1, "end": 2}, kind: core.KindInteger, wantField: "params"},
		{name: "scalar", raw: "1,2", kind: core.KindInteger, wantField: "params"},
		{name: "nil", raw: nil, kind: core.KindInteger, wantField: "params"},
		{name: "unknown kind", raw: []int{1, 2}, kind: core.KindInvalid, wantField: "kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := series.Normalize(tt.raw, tt.kind)
			var typeErr *series.TypeError
			require.True(t, errors.As(err, &typeErr), "got %v", err)
			assert.Equal(t, tt.wantField, typeErr.Field)
		})
	}
}

func TestNormalize_Coercion(t *testing.T) {
	t.Run("integers", func(t *testing.T) {
		p, err := series.Normalize([]any{"7", 9.0, apd.New(1, 0)}, core.KindInteger)
		require.NoError(t, err)
		assert.Equal(t, int64(7), p.Start())
		assert.Equal(t, int64(9), p.Stop())
		assert.Equal(t, int64(1), p.Step())
	})

	t.Run("dates are truncated", func(t *testing.T) {
		p, err := series.Normalize(series.P(time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC), "2024-01-03"), core.KindDate)
		require.NoError(t, err)
		assert.Equal(t, day(2024, 1, 1), p.Start())
		assert.Equal(t, day(2024, 1, 3), p.Stop())
	})

	t.Run("pgtype values", func(t *testing.T) {
		p, err := series.Normalize(series.P(
			pgtype.Date{Time: day(2024, 1, 1), Valid: true},
			pgtype.Timestamptz{Time: day(2024, 1, 3), Valid: true},
			pgtype.Interval{Days: 2, Valid: true},
		), core.KindDate)
		require.NoError(t, err)
		assert.Equal(t, day(2024, 1, 1), p.Start())
		assert.Equal(t, pgtype.Interval{Days: 2, Valid: true}, p.Step())
	})

	t.Run("duration step", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		p, err := series.Normalize(series.P(start, start.Add(6*time.Hour), 90*time.Minute), core.KindDateTime)
		require.NoError(t, err)
		assert.Equal(t, start, p.Start())
		assert.Equal(t, pgtype.Interval{Microseconds: (90 * time.Minute).Microseconds(), Valid: true}, p.Step())
	})

	t.Run("infinite date", func(t *testing.T) {
		_, err := series.Normalize(series.P(pgtype.Date{InfinityModifier: pgtype.NegativeInfinity, Valid: true}, "2024-01-01"), core.KindDate)
		var typeErr *series.TypeError
		require.True(t, errors.As(err, &typeErr))
		assert.Equal(t, "start", typeErr.Field)
	})
}

func TestParams_DecimalCopies(t *testing.T) {
	p := series.MustNormalize([]string{"0.5", "2.5", "0.5"}, core.KindDecimal)

	start := p.Start().(*apd.Decimal)
	assert.Equal(t, "0.5", start.String())
	start.SetInt64(99)

	assert.Equal(t, "0.5", p.Start().(*apd.Decimal).String())
}

func TestParams_EqualAndString(t *testing.T) {
	a := series.MustNormalize([]int{0, 10}, core.KindInteger)
	b := series.MustNormalize(series.Args{Start: "0", Stop: "10", Step: 1}, core.KindInteger)
	c := series.MustNormalize([]int{0, 10}, core.KindIntegerRange)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "integer(0, 10, 1)", a.String())

	d := series.MustNormalize([]string{"1.0", "2.00"}, core.KindDecimal)
	e := series.MustNormalize([]string{"1", "2", "1"}, core.KindDecimal)
	assert.True(t, d.Equal(e))

	dates := series.MustNormalize([]string{"2024-01-01", "2024-03-01", "1 month"}, core.KindDate)
	assert.Equal(t, "date(2024-01-01T00:00:00Z, 2024-03-01T00:00:00Z, 1 month)", dates.String())
}

func TestParams_Validate(t *testing.T) {
	var zero series.Params
	var typeErr *series.TypeError
	require.True(t, errors.As(zero.Validate(), &typeErr))

	p := series.MustNormalize([]int{0, 10}, core.KindInteger)
	require.NoError(t, p.Validate())
}

func TestMustNormalize_Panics(t *testing.T) {
	assert.Panics(t, func() { series.MustNormalize([]int{3, 1}, core.KindInteger) })
}
