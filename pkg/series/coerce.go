package series

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/spf13/cast"

	"github.com/leapstack-labs/genseries/pkg/core"
)

var errUnsupported = errors.New("unsupported type")

// timeLayouts are tried in order before falling back to cast's parser.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

// coerceBound converts v into the scalar domain of kind: int64, apd.Decimal
// or time.Time (dates truncated to UTC midnight).
func coerceBound(v any, kind core.Kind) (any, error) {
	switch kind {
	case core.KindInteger:
		return toInt64(v)
	case core.KindDecimal:
		return toDecimal(v)
	case core.KindDate:
		t, err := toTime(v)
		if err != nil {
			return nil, err
		}
		return truncateDate(t), nil
	case core.KindDateTime:
		return toTime(v)
	}
	return nil, fmt.Errorf("kind %s has no scalar domain", kind)
}

// coerceStep converts v into the step domain of kind: int64, apd.Decimal or
// pgtype.Interval.
func coerceStep(v any, kind core.Kind) (any, error) {
	switch kind {
	case core.KindInteger:
		return toInt64(v)
	case core.KindDecimal:
		return toDecimal(v)
	case core.KindDate, core.KindDateTime:
		return toInterval(v)
	}
	return nil, fmt.Errorf("kind %s has no step domain", kind)
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil, bool:
		return 0, errUnsupported
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	case *apd.Decimal:
		return decimalToInt64(x)
	case apd.Decimal:
		return decimalToInt64(&x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", x)
		}
	}
	return cast.ToInt64E(v)
}

func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int64(f), nil
}

func decimalToInt64(d *apd.Decimal) (int64, error) {
	var frac apd.Decimal
	var integ apd.Decimal
	d.Modf(&integ, &frac)
	if !frac.IsZero() {
		return 0, fmt.Errorf("%s is not an integer", d)
	}
	return integ.Int64()
}

func toDecimal(v any) (apd.Decimal, error) {
	var d apd.Decimal
	switch x := v.(type) {
	case nil, bool:
		return d, errUnsupported
	case *apd.Decimal:
		if x == nil {
			return d, errUnsupported
		}
		d.Set(x)
	case apd.Decimal:
		d.Set(&x)
	case string:
		if _, _, err := d.SetString(strings.TrimSpace(x)); err != nil {
			return d, err
		}
	case float32:
		if _, err := d.SetFloat64(float64(x)); err != nil {
			return d, err
		}
	case float64:
		if _, err := d.SetFloat64(x); err != nil {
			return d, err
		}
	default:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return d, err
		}
		d.SetInt64(n)
	}
	if d.Form != apd.Finite {
		return d, fmt.Errorf("%s is not a finite number", d.String())
	}
	return d, nil
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case *time.Time:
		if x == nil {
			return time.Time{}, errUnsupported
		}
		return *x, nil
	case pgtype.Date:
		if !x.Valid || x.InfinityModifier != pgtype.Finite {
			return time.Time{}, fmt.Errorf("date must be finite")
		}
		return x.Time, nil
	case pgtype.Timestamptz:
		if !x.Valid || x.InfinityModifier != pgtype.Finite {
			return time.Time{}, fmt.Errorf("timestamp must be finite")
		}
		return x.Time, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return cast.ToTimeInDefaultLocationE(s, time.UTC)
	}
	return time.Time{}, errUnsupported
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toInterval(v any) (pgtype.Interval, error) {
	switch x := v.(type) {
	case pgtype.Interval:
		if !x.Valid {
			return x, fmt.Errorf("interval is null")
		}
		return x, nil
	case *pgtype.Interval:
		if x == nil || !x.Valid {
			return pgtype.Interval{}, fmt.Errorf("interval is null")
		}
		return *x, nil
	case time.Duration:
		return DurationInterval(x), nil
	case string:
		return ParseInterval(x)
	}
	return pgtype.Interval{}, errUnsupported
}
