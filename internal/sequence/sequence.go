// Package sequence generates series in process memory. It mirrors what the
// database produces for a series.Params so tests and the check command can
// compare server output against an independent expectation. Nothing here is
// used to answer queries.
package sequence

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/series"
)

// decCtx is wide enough that adding steps never rounds.
var decCtx = apd.BaseContext.WithPrecision(40)

// Integers yields start, start+step, ... while the term does not pass stop.
func Integers(start, stop, step int64) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		if step <= 0 {
			return
		}
		for v := start; v <= stop; v += step {
			if !yield(v) || v > stop-step {
				return
			}
		}
	}
}

// Decimals is Integers over arbitrary precision decimals. Each yielded
// value is a fresh copy.
func Decimals(start, stop, step *apd.Decimal) iter.Seq[*apd.Decimal] {
	return func(yield func(*apd.Decimal) bool) {
		if step.Sign() <= 0 {
			return
		}
		cur := new(apd.Decimal).Set(start)
		for cur.Cmp(stop) <= 0 {
			if !yield(new(apd.Decimal).Set(cur)) {
				return
			}
			if _, err := decCtx.Add(cur, cur, step); err != nil {
				return
			}
		}
	}
}

// Times advances start by step with the database's interval arithmetic
// until the term passes stop.
func Times(start, stop time.Time, step pgtype.Interval) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for t := start; !t.After(stop); {
			if !yield(t) {
				return
			}
			next := series.AddInterval(t, step)
			if !next.After(t) {
				return
			}
			t = next
		}
	}
}

// Terms yields the scalar terms of p before any pairing or date cast, in
// the domain of the kind's scalar: int64, *apd.Decimal or time.Time.
func Terms(p series.Params) iter.Seq[any] {
	return func(yield func(any) bool) {
		switch start := p.Start().(type) {
		case int64:
			for v := range Integers(start, p.Stop().(int64), p.Step().(int64)) {
				if !yield(v) {
					return
				}
			}
		case *apd.Decimal:
			for v := range Decimals(start, p.Stop().(*apd.Decimal), p.Step().(*apd.Decimal)) {
				if !yield(v) {
					return
				}
			}
		case time.Time:
			for v := range Times(start, p.Stop().(time.Time), p.Step().(pgtype.Interval)) {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Rows yields the values a series over p returns for its id column, in
// ascending order. Range kinds pair each term s with s+step and keep the
// pair only when s+step does not pass stop.
func Rows(p series.Params) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		kind := p.Kind()
		for term := range Terms(p) {
			if !kind.IsRange() {
				if !yield(scalarValue(kind, term), nil) {
					return
				}
				continue
			}
			upper, ok, err := advance(p, term)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				continue
			}
			r, err := series.PairToRange(kind, term, upper)
			if !yield(r, err) || err != nil {
				return
			}
		}
	}
}

// advance returns term+step and whether it stays within stop.
func advance(p series.Params, term any) (any, bool, error) {
	switch t := term.(type) {
	case int64:
		step := p.Step().(int64)
		if t > p.Stop().(int64)-step {
			return nil, false, nil
		}
		return t + step, true, nil
	case *apd.Decimal:
		next := new(apd.Decimal)
		if _, err := decCtx.Add(next, t, p.Step().(*apd.Decimal)); err != nil {
			return nil, false, fmt.Errorf("advance %s: %w", t, err)
		}
		return next, next.Cmp(p.Stop().(*apd.Decimal)) <= 0, nil
	case time.Time:
		next := series.AddInterval(t, p.Step().(pgtype.Interval))
		return next, !next.After(p.Stop().(time.Time)), nil
	}
	return nil, false, fmt.Errorf("unexpected term %T", term)
}

func scalarValue(kind core.Kind, term any) any {
	if t, ok := term.(time.Time); ok && kind == core.KindDate {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return term
}

// Expectation summarises a series without keeping every row.
type Expectation struct {
	Count int64
	First any
	Last  any
}

// Expect walks the series of p and records its size and extremes. First and
// Last are nil for an empty result.
func Expect(p series.Params) (Expectation, error) {
	var e Expectation
	if err := p.Validate(); err != nil {
		return e, err
	}
	for v, err := range Rows(p) {
		if err != nil {
			return Expectation{}, err
		}
		if e.Count == 0 {
			e.First = v
		}
		e.Last = v
		e.Count++
	}
	return e, nil
}

// Collect materialises Rows.
func Collect(p series.Params) ([]any, error) {
	var out []any
	for v, err := range Rows(p) {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ErrMismatch reports that a fetched value differs from the expected one.
var ErrMismatch = errors.New("value mismatch")
