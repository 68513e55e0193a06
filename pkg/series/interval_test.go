package series_test

import (
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/genseries/pkg/series"
)

func TestParseInterval(t *testing.T) {
	hour := time.Hour.Microseconds()
	tests := []struct {
		in   string
		want pgtype.Interval
	}{
		{in: "1 day", want: pgtype.Interval{Days: 1, Valid: true}},
		{in: "3 days", want: pgtype.Interval{Days: 3, Valid: true}},
		{in: "2 weeks", want: pgtype.Interval{Days: 14, Valid: true}},
		{in: "1 year 2 mons", want: pgtype.Interval{Months: 14, Valid: true}},
		{in: "2 Months 3 Days", want: pgtype.Interval{Months: 2, Days: 3, Valid: true}},
		{in: "1.5 hours", want: pgtype.Interval{Microseconds: hour * 3 / 2, Valid: true}},
		{in: "36h", want: pgtype.Interval{Microseconds: 36 * hour, Valid: true}},
		{in: "1h30m", want: pgtype.Interval{Microseconds: hour * 3 / 2, Valid: true}},
		{in: "01:30", want: pgtype.Interval{Microseconds: hour * 3 / 2, Valid: true}},
		{in: "1 day 02:00:30", want: pgtype.Interval{Days: 1, Microseconds: 2*hour + 30_000_000, Valid: true}},
		{in: "250 milliseconds", want: pgtype.Interval{Microseconds: 250_000, Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := series.ParseInterval(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInterval_Errors(t *testing.T) {
	for _, in := range []string{"", "  ", "day", "1", "1 fortnight", "1.5 days", "x days", "1:xx"} {
		t.Run(in, func(t *testing.T) {
			_, err := series.ParseInterval(in)
			assert.Error(t, err)
		})
	}
}

func TestParseInterval_OutOfRange(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "4294967297 days", want: "out of range"},
		{in: "3000000000 days", want: "out of range"},
		{in: "200000000 years", want: "out of range"},
		{in: "2000000000 mons 2000000000 mons", want: "out of range"},
		{in: "9223372036854775807 hours", want: "out of range"},
		{in: "9223372036854775807 microseconds 1 microsecond", want: "out of range"},
		{in: "1e300 seconds", want: "out of range"},
		{in: "9223372036854775807:00", want: "out of range"},
		{in: "0.0000001 seconds", want: "below microsecond precision"},
		{in: "00:00:00.0000001", want: "below microsecond precision"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := series.ParseInterval(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseInterval_Limits(t *testing.T) {
	got, err := series.ParseInterval("2147483647 days")
	require.NoError(t, err)
	assert.Equal(t, pgtype.Interval{Days: math.MaxInt32, Valid: true}, got)

	got, err = series.ParseInterval("0.4 microseconds 1 microsecond")
	require.Error(t, err)
	assert.Equal(t, pgtype.Interval{}, got)

	got, err = series.ParseInterval("1.0000004 seconds")
	require.NoError(t, err)
	assert.Equal(t, pgtype.Interval{Microseconds: 1_000_000, Valid: true}, got)
}

func TestFormatInterval(t *testing.T) {
	hour := time.Hour.Microseconds()
	tests := []struct {
		in   pgtype.Interval
		want string
	}{
		{in: pgtype.Interval{Days: 1, Valid: true}, want: "1 day"},
		{in: pgtype.Interval{Months: 2, Days: 3, Microseconds: 2 * hour, Valid: true}, want: "2 months 3 days 2 hours"},
		{in: pgtype.Interval{Microseconds: hour * 3 / 2, Valid: true}, want: "1 hour 30 minutes"},
		{in: pgtype.Interval{Microseconds: 1_500_000, Valid: true}, want: "1 second 500000 microseconds"},
		{in: pgtype.Interval{Valid: true}, want: "0 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := series.FormatInterval(tt.in)
			assert.Equal(t, tt.want, got)

			back, err := series.ParseInterval(got)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestAddInterval(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	iv := pgtype.Interval{Months: 1, Days: 1, Microseconds: time.Hour.Microseconds(), Valid: true}
	assert.Equal(t, time.Date(2024, 2, 2, 1, 0, 0, 0, time.UTC), series.AddInterval(start, iv))

	monthEnd := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
	month := pgtype.Interval{Months: 1, Valid: true}
	assert.Equal(t, time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), series.AddInterval(monthEnd, month))
	assert.Equal(t, time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC), series.AddInterval(monthEnd, pgtype.Interval{Months: 13, Valid: true}))
}
