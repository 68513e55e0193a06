package series

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/leapstack-labs/genseries/pkg/core"
)

// Args is the keyword form of a (start, stop, step) triple. A nil Step takes
// the kind's default.
type Args struct {
	Start any
	Stop  any
	Step  any
}

// P is the positional form: P(start, stop) or P(start, stop, step).
// Extra arguments are reported by Normalize.
func P(start, stop any, step ...any) Args {
	a := Args{Start: start, Stop: stop}
	switch len(step) {
	case 0:
	case 1:
		a.Step = step[0]
	default:
		// Keep every value so Normalize can reject the arity.
		a.Step = append([]any{}, step...)
	}
	return a
}

// Params is a validated, normalized triple for one kind. The zero value is
// invalid. Bounds are int64, *apd.Decimal or time.Time; steps are int64,
// *apd.Decimal or pgtype.Interval.
type Params struct {
	kind  core.Kind
	start any
	stop  any
	step  any
}

// Kind returns the kind the triple was normalized for.
func (p Params) Kind() core.Kind { return p.kind }

// Start returns the inclusive lower bound.
func (p Params) Start() any { return exported(p.start) }

// Stop returns the inclusive upper bound.
func (p Params) Stop() any { return exported(p.stop) }

// Step returns the increment.
func (p Params) Step() any { return exported(p.step) }

// exported hands out copies so callers cannot mutate the triple.
func exported(v any) any {
	if d, ok := v.(apd.Decimal); ok {
		return new(apd.Decimal).Set(&d)
	}
	return v
}

// Normalize validates raw against kind. raw may be a Params, an Args (or
// *Args), a map with start/stop/step keys, or a 2- or 3-element slice or
// array. Coercion failures return *TypeError; bounds that are not strictly
// ascending, and steps that are not positive, return *RangeError.
func Normalize(raw any, kind core.Kind) (Params, error) {
	desc, ok := Describe(kind)
	if !ok {
		return Params{}, &TypeError{Field: "kind", Kind: kind, Value: raw, Err: fmt.Errorf("unknown kind")}
	}

	args, err := toArgs(raw, kind)
	if err != nil {
		return Params{}, err
	}

	scalar := desc.Scalar
	start, err := coerceBound(args.Start, scalar)
	if err != nil {
		return Params{}, &TypeError{Field: "start", Kind: kind, Value: args.Start, Err: err}
	}
	stop, err := coerceBound(args.Stop, scalar)
	if err != nil {
		return Params{}, &TypeError{Field: "stop", Kind: kind, Value: args.Stop, Err: err}
	}
	rawStep := args.Step
	if rawStep == nil {
		rawStep = desc.DefaultStep
	}
	step, err := coerceStep(rawStep, scalar)
	if err != nil {
		return Params{}, &TypeError{Field: "step", Kind: kind, Value: rawStep, Err: err}
	}

	p := Params{kind: kind, start: start, stop: stop, step: step}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// MustNormalize is Normalize for triples known to be valid.
func MustNormalize(raw any, kind core.Kind) Params {
	p, err := Normalize(raw, kind)
	if err != nil {
		panic(err)
	}
	return p
}

func toArgs(raw any, kind core.Kind) (Args, error) {
	switch x := raw.(type) {
	case Params:
		return Args{Start: x.start, Stop: x.stop, Step: x.step}, nil
	case *Params:
		if x != nil {
			return Args{Start: x.start, Stop: x.stop, Step: x.step}, nil
		}
	case Args:
		if steps, ok := x.Step.([]any); ok {
			return Args{}, arityError(raw, kind, 2+len(steps))
		}
		return x, nil
	case *Args:
		if x != nil {
			return toArgs(*x, kind)
		}
	case map[string]any:
		return mapArgs(x, kind)
	case string, []byte, nil:
	default:
		if k := reflect.TypeOf(raw).Kind(); k == reflect.Slice || k == reflect.Array {
			items := sliceItems(reflect.ValueOf(raw))
			switch len(items) {
			case 2:
				return Args{Start: items[0], Stop: items[1]}, nil
			case 3:
				return Args{Start: items[0], Stop: items[1], Step: items[2]}, nil
			}
			return Args{}, arityError(raw, kind, len(items))
		}
	}
	return Args{}, &TypeError{Field: "params", Kind: kind, Value: raw, Err: errUnsupported}
}

func sliceItems(v reflect.Value) []any {
	items := make([]any, v.Len())
	for i := range items {
		items[i] = v.Index(i).Interface()
	}
	return items
}

func mapArgs(m map[string]any, kind core.Kind) (Args, error) {
	var a Args
	for k, v := range m {
		switch strings.ToLower(k) {
		case "start":
			a.Start = v
		case "stop":
			a.Stop = v
		case "step":
			a.Step = v
		default:
			return Args{}, &TypeError{Field: "params", Kind: kind, Value: m, Err: fmt.Errorf("unknown key %q", k)}
		}
	}
	return a, nil
}

func arityError(raw any, kind core.Kind, n int) error {
	return &TypeError{Field: "params", Kind: kind, Value: raw, Err: fmt.Errorf("expected 2 or 3 values, got %d", n)}
}

// Validate checks start < stop and step > 0. Normalize has already applied
// it to every Params it returns.
func (p Params) Validate() error {
	desc, ok := Describe(p.kind)
	if !ok {
		return &TypeError{Field: "kind", Kind: p.kind}
	}
	cmp, err := compareBounds(p.start, p.stop)
	if err != nil {
		return &TypeError{Field: "stop", Kind: p.kind, Value: p.stop, Err: err}
	}
	if cmp >= 0 {
		return &RangeError{Kind: p.kind, Message: MsgStartNotBeforeStop}
	}
	positive, err := positiveStep(p.step, desc.Scalar)
	if err != nil {
		return &TypeError{Field: "step", Kind: p.kind, Value: p.step, Err: err}
	}
	if !positive {
		return &RangeError{Kind: p.kind, Message: MsgStepNotPositive}
	}
	return nil
}

func compareBounds(a, b any) (int, error) {
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			switch {
			case x < y:
				return -1, nil
			case x > y:
				return 1, nil
			}
			return 0, nil
		}
	case apd.Decimal:
		if y, ok := b.(apd.Decimal); ok {
			return x.Cmp(&y), nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	}
	return 0, fmt.Errorf("mismatched bounds %T and %T", a, b)
}

func positiveStep(step any, scalar core.Kind) (bool, error) {
	switch x := step.(type) {
	case int64:
		return x > 0, nil
	case apd.Decimal:
		return x.Sign() > 0, nil
	case pgtype.Interval:
		if scalar != core.KindDate && scalar != core.KindDateTime {
			return false, fmt.Errorf("interval step for %s", scalar)
		}
		return positiveInterval(x), nil
	}
	return false, fmt.Errorf("unexpected step %T", step)
}

// Equal reports whether p and o describe the same series.
func (p Params) Equal(o Params) bool {
	if p.kind != o.kind {
		return false
	}
	if c, err := compareBounds(p.start, o.start); err != nil || c != 0 {
		return false
	}
	if c, err := compareBounds(p.stop, o.stop); err != nil || c != 0 {
		return false
	}
	switch x := p.step.(type) {
	case apd.Decimal:
		y, ok := o.step.(apd.Decimal)
		return ok && x.Cmp(&y) == 0
	default:
		return p.step == o.step
	}
}

// String formats the triple for logs and error messages.
func (p Params) String() string {
	return fmt.Sprintf("%s(%s, %s, %s)", p.kind, formatValue(p.start), formatValue(p.stop), formatValue(p.step))
}

func formatValue(v any) string {
	switch x := v.(type) {
	case apd.Decimal:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case pgtype.Interval:
		return FormatInterval(x)
	}
	return fmt.Sprint(v)
}

// bindArgs returns start, stop and step as driver arguments.
func (p Params) bindArgs() (start, stop, step any) {
	conv := func(v any) any {
		switch x := v.(type) {
		case apd.Decimal:
			return x.String()
		case pgtype.Interval:
			return FormatInterval(x)
		}
		return v
	}
	return conv(p.start), conv(p.stop), conv(p.step)
}
