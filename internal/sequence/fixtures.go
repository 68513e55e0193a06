package sequence

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Fixture errors.
var (
	ErrEndNotAfterStart = errors.New("end must be greater than start")
	ErrStepsNotPositive = errors.New("num_steps must be positive")
	ErrDeltaNotPositive = errors.New("max delta must be positive")
)

// DefaultSteps is the fixture length used when neither an end nor a step
// count is given.
const DefaultSteps = 10

var one = apd.New(1, 0)

// DateTimeSequence returns daily timestamps starting at start. A non-zero
// end bounds the sequence inclusively; otherwise numSteps values are
// produced, DefaultSteps when numSteps is zero.
func DateTimeSequence(start, end time.Time, numSteps int) ([]time.Time, error) {
	if !end.IsZero() {
		if !end.After(start) {
			return nil, ErrEndNotAfterStart
		}
		var out []time.Time
		for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
			out = append(out, t)
		}
		return out, nil
	}
	n, err := stepCount(numSteps)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out, nil
}

// DateSequence is DateTimeSequence truncated to UTC midnights.
func DateSequence(start, end time.Time, numSteps int) ([]time.Time, error) {
	ts, err := DateTimeSequence(start, end, numSteps)
	if err != nil {
		return nil, err
	}
	for i, t := range ts {
		y, m, d := t.Date()
		ts[i] = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return ts, nil
}

// DateTimeRangeSequence pairs every value of DateTimeSequence with the
// following day.
func DateTimeRangeSequence(start, end time.Time, numSteps int) ([][2]time.Time, error) {
	ts, err := DateTimeSequence(start, end, numSteps)
	if err != nil {
		return nil, err
	}
	out := make([][2]time.Time, len(ts))
	for i, t := range ts {
		out[i] = [2]time.Time{t, t.AddDate(0, 0, 1)}
	}
	return out, nil
}

// DecimalSequence returns start, start+1, ... bounded like DateTimeSequence.
// A nil end means numSteps values.
func DecimalSequence(start, end *apd.Decimal, numSteps int) ([]*apd.Decimal, error) {
	if end != nil {
		if end.Cmp(start) <= 0 {
			return nil, ErrEndNotAfterStart
		}
		var out []*apd.Decimal
		for v := range Decimals(start, end, one) {
			out = append(out, v)
		}
		return out, nil
	}
	n, err := stepCount(numSteps)
	if err != nil {
		return nil, err
	}
	out := make([]*apd.Decimal, 0, n)
	cur := new(apd.Decimal).Set(start)
	for range n {
		out = append(out, new(apd.Decimal).Set(cur))
		if _, err := decCtx.Add(cur, cur, one); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DecimalRangeSequence pairs every value of DecimalSequence with its
// successor.
func DecimalRangeSequence(start, end *apd.Decimal, numSteps int) ([][2]*apd.Decimal, error) {
	vs, err := DecimalSequence(start, end, numSteps)
	if err != nil {
		return nil, err
	}
	out := make([][2]*apd.Decimal, len(vs))
	for i, v := range vs {
		upper := new(apd.Decimal)
		if _, err := decCtx.Add(upper, v, one); err != nil {
			return nil, err
		}
		out[i] = [2]*apd.Decimal{v, upper}
	}
	return out, nil
}

func stepCount(n int) (int, error) {
	switch {
	case n == 0:
		return DefaultSteps, nil
	case n < 0:
		return 0, ErrStepsNotPositive
	}
	return n, nil
}

// RandomDateTime returns a UTC instant within maxDelta of now, before or
// after it.
func RandomDateTime(maxDelta time.Duration) (time.Time, error) {
	if maxDelta <= 0 {
		return time.Time{}, ErrDeltaNotPositive
	}
	offset := time.Duration(rand.Int64N(int64(2*maxDelta))) - maxDelta
	return time.Now().UTC().Add(offset).Truncate(time.Microsecond), nil
}

// RandomDate is RandomDateTime truncated to a UTC midnight.
func RandomDate(maxDelta time.Duration) (time.Time, error) {
	t, err := RandomDateTime(maxDelta)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// RandomDateTimeRange returns two ascending random instants.
func RandomDateTimeRange(maxDelta time.Duration) (lower, upper time.Time, err error) {
	if lower, err = RandomDateTime(maxDelta); err != nil {
		return
	}
	if upper, err = RandomDateTime(maxDelta); err != nil {
		return
	}
	if upper.Before(lower) {
		lower, upper = upper, lower
	}
	return lower, upper, nil
}
