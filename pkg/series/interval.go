package series

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	usPerSecond = int64(time.Second / time.Microsecond)
	usPerMinute = 60 * usPerSecond
	usPerHour   = 60 * usPerMinute
)

// intervalUnits maps unit spellings onto (months, days, microseconds) per unit.
var intervalUnits = map[string][3]int64{
	"year": {12, 0, 0}, "years": {12, 0, 0}, "y": {12, 0, 0},
	"mon": {1, 0, 0}, "mons": {1, 0, 0}, "month": {1, 0, 0}, "months": {1, 0, 0},
	"week": {0, 7, 0}, "weeks": {0, 7, 0}, "w": {0, 7, 0},
	"day": {0, 1, 0}, "days": {0, 1, 0}, "d": {0, 1, 0},
	"hour": {0, 0, usPerHour}, "hours": {0, 0, usPerHour},
	"minute": {0, 0, usPerMinute}, "minutes": {0, 0, usPerMinute}, "min": {0, 0, usPerMinute}, "mins": {0, 0, usPerMinute},
	"second": {0, 0, usPerSecond}, "seconds": {0, 0, usPerSecond}, "sec": {0, 0, usPerSecond}, "secs": {0, 0, usPerSecond},
	"millisecond": {0, 0, 1000}, "milliseconds": {0, 0, 1000},
	"microsecond": {0, 0, 1}, "microseconds": {0, 0, 1},
}

// ParseInterval parses a duration expression into an interval. It accepts
// "<n> <unit>" pairs ("1 days", "1 mon 3 days", "1.5 hours"), an optional
// "hh:mm:ss" clock part, and Go duration strings ("36h", "1h30m").
func ParseInterval(s string) (pgtype.Interval, error) {
	text := strings.TrimSpace(strings.ToLower(s))
	if text == "" {
		return pgtype.Interval{}, fmt.Errorf("empty interval")
	}
	if d, err := time.ParseDuration(text); err == nil {
		return DurationInterval(d), nil
	}

	fields := strings.Fields(text)
	var months, days, us int64
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if strings.Contains(f, ":") {
			clock, err := parseClock(f)
			if err != nil {
				return pgtype.Interval{}, fmt.Errorf("invalid interval %q: %w", s, err)
			}
			var ok bool
			if us, ok = addChecked(us, clock); !ok {
				return pgtype.Interval{}, fmt.Errorf("invalid interval %q: %w", s, errIntervalRange)
			}
			continue
		}
		if i+1 >= len(fields) {
			return pgtype.Interval{}, fmt.Errorf("invalid interval %q: %q has no unit", s, f)
		}
		unit, ok := intervalUnits[fields[i+1]]
		if !ok {
			return pgtype.Interval{}, fmt.Errorf("invalid interval %q: unknown unit %q", s, fields[i+1])
		}
		i++
		if n, err := strconv.ParseInt(f, 10, 64); err == nil {
			var okM, okD, okU bool
			months, okM = mulAddChecked(months, n, unit[0])
			days, okD = mulAddChecked(days, n, unit[1])
			us, okU = mulAddChecked(us, n, unit[2])
			if !okM || !okD || !okU {
				return pgtype.Interval{}, fmt.Errorf("invalid interval %q: %w", s, errIntervalRange)
			}
			continue
		}
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return pgtype.Interval{}, fmt.Errorf("invalid interval %q: bad quantity %q", s, f)
		}
		if unit[0] != 0 || unit[1] != 0 {
			return pgtype.Interval{}, fmt.Errorf("invalid interval %q: fractional %s", s, fields[i])
		}
		part, err := fractionMicros(x, unit[2])
		if err != nil {
			return pgtype.Interval{}, fmt.Errorf("invalid interval %q: %w", s, err)
		}
		if us, ok = addChecked(us, part); !ok {
			return pgtype.Interval{}, fmt.Errorf("invalid interval %q: %w", s, errIntervalRange)
		}
	}
	if months < math.MinInt32 || months > math.MaxInt32 || days < math.MinInt32 || days > math.MaxInt32 {
		return pgtype.Interval{}, fmt.Errorf("invalid interval %q: %w", s, errIntervalRange)
	}
	return pgtype.Interval{Months: int32(months), Days: int32(days), Microseconds: us, Valid: true}, nil
}

var (
	errIntervalRange  = errors.New("interval out of range")
	errSubMicrosecond = errors.New("interval below microsecond precision")
)

// fractionMicros converts x units of unitUS microseconds, rejecting results
// that do not fit in int64 or round a non-zero quantity to zero.
func fractionMicros(x float64, unitUS int64) (int64, error) {
	f := math.Round(x * float64(unitUS))
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, errIntervalRange
	}
	if f == 0 && x != 0 {
		return 0, errSubMicrosecond
	}
	return int64(f), nil
}

func addChecked(a, b int64) (int64, bool) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return 0, false
	}
	return c, true
}

// mulAddChecked returns acc + n*unit, reporting overflow.
func mulAddChecked(acc, n, unit int64) (int64, bool) {
	if unit == 0 || n == 0 {
		return acc, true
	}
	prod := n * unit
	if prod/unit != n {
		return 0, false
	}
	return addChecked(acc, prod)
}

func parseClock(f string) (int64, error) {
	parts := strings.Split(f, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("bad clock %q", f)
	}
	h, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad hours in %q", f)
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad minutes in %q", f)
	}
	us, okH := mulAddChecked(0, h, usPerHour)
	us, okM := mulAddChecked(us, m, usPerMinute)
	if !okH || !okM {
		return 0, errIntervalRange
	}
	if len(parts) == 3 {
		sec, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, fmt.Errorf("bad seconds in %q", f)
		}
		part, err := fractionMicros(sec, usPerSecond)
		if err != nil {
			return 0, err
		}
		if us, okH = addChecked(us, part); !okH {
			return 0, errIntervalRange
		}
	}
	return us, nil
}

// DurationInterval converts a Go duration into an interval of microseconds.
func DurationInterval(d time.Duration) pgtype.Interval {
	return pgtype.Interval{Microseconds: d.Microseconds(), Valid: true}
}

// FormatInterval renders an interval as text both PostgreSQL and DuckDB
// accept in CAST(... AS INTERVAL).
func FormatInterval(iv pgtype.Interval) string {
	var parts []string
	add := func(n int64, unit string) {
		if n == 0 {
			return
		}
		if n != 1 && n != -1 {
			unit += "s"
		}
		parts = append(parts, strconv.FormatInt(n, 10)+" "+unit)
	}
	add(int64(iv.Months), "month")
	add(int64(iv.Days), "day")
	us := iv.Microseconds
	add(us/usPerHour, "hour")
	us %= usPerHour
	add(us/usPerMinute, "minute")
	us %= usPerMinute
	add(us/usPerSecond, "second")
	add(us%usPerSecond, "microsecond")
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, " ")
}

// positiveInterval reports whether iv moves time strictly forward: no
// component negative and at least one positive.
func positiveInterval(iv pgtype.Interval) bool {
	if iv.Months < 0 || iv.Days < 0 || iv.Microseconds < 0 {
		return false
	}
	return iv.Months > 0 || iv.Days > 0 || iv.Microseconds > 0
}

// AddInterval advances t by iv the way PostgreSQL does: months first,
// clamping to the last day of the target month, then days, then the time
// part.
func AddInterval(t time.Time, iv pgtype.Interval) time.Time {
	if iv.Months != 0 {
		y, m, d := t.Date()
		first := time.Date(y, m+time.Month(iv.Months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
		if last := first.AddDate(0, 1, -1).Day(); d > last {
			d = last
		}
		t = first.AddDate(0, 0, d-1)
	}
	return t.AddDate(0, 0, int(iv.Days)).Add(time.Duration(iv.Microseconds) * time.Microsecond)
}
