package sequence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/series"
)

// rangeTimeLayouts covers the text forms Postgres and DuckDB print for
// timestamps inside range literals.
var rangeTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	time.DateOnly,
}

// Same compares a value fetched for kind against an expected one. Numbers
// compare by value, times by instant, ranges bound by bound. It returns an
// error wrapping ErrMismatch when they differ.
func Same(kind core.Kind, want, got any) error {
	ok, err := same(kind, want, got)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: want %v, got %v: %w", kind, want, got, ErrMismatch)
	}
	return nil
}

func same(kind core.Kind, want, got any) (bool, error) {
	switch w := want.(type) {
	case nil:
		return got == nil, nil
	case int64:
		g, ok := got.(int64)
		return ok && g == w, nil
	case *apd.Decimal:
		g, ok := got.(*apd.Decimal)
		return ok && g.Cmp(w) == 0, nil
	case time.Time:
		g, ok := got.(time.Time)
		if !ok {
			return false, nil
		}
		if kind == core.KindDate {
			return sameDay(w, g), nil
		}
		return g.Equal(w), nil
	case core.Range:
		g, ok := got.(core.Range)
		if !ok {
			return false, nil
		}
		return sameRange(kind, w, g)
	}
	return false, fmt.Errorf("cannot compare %T", want)
}

// sameDay ignores the zone drivers attach to DATE values.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameRange(kind core.Kind, want, got core.Range) (bool, error) {
	if want.Empty || got.Empty {
		return want.Empty == got.Empty, nil
	}
	if want.Bounds != got.Bounds && want.Bounds != "" && got.Bounds != "" {
		return false, nil
	}
	scalar, ok := series.ScalarKindOf(kind)
	if !ok {
		return false, fmt.Errorf("unknown kind %s", kind)
	}
	for _, pair := range [][2]string{{want.Lower, got.Lower}, {want.Upper, got.Upper}} {
		a, err := parseTerm(scalar, pair[0])
		if err != nil {
			return false, err
		}
		b, err := parseTerm(scalar, pair[1])
		if err != nil {
			return false, err
		}
		if ok, err := same(scalar, a, b); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// parseTerm reads one range bound back into the scalar domain.
func parseTerm(scalar core.Kind, s string) (any, error) {
	s = strings.Trim(s, `"`)
	switch scalar {
	case core.KindInteger:
		return strconv.ParseInt(s, 10, 64)
	case core.KindDecimal:
		d, _, err := apd.NewFromString(s)
		return d, err
	case core.KindDate, core.KindDateTime:
		for _, layout := range rangeTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("unrecognised time %q", s)
	}
	return nil, fmt.Errorf("kind %s has no scalar domain", scalar)
}
