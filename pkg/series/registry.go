package series

import (
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/leapstack-labs/genseries/pkg/core"
)

// Descriptor is the static metadata of one value kind.
type Descriptor struct {
	Kind core.Kind
	// Scalar is the kind of the generated terms; equal to Kind for scalars.
	Scalar  core.Kind
	IsRange bool
	// StorageType is the canonical type of the output column.
	StorageType string
	// TermType is the type the bounds are cast to before generation.
	TermType string
	// StepType is the type the step is cast to.
	StepType string
	// RangeFunc constructs a range from two terms; empty for scalars.
	RangeFunc string
	// DefaultStep is applied when a triple omits its step.
	DefaultStep string
}

var registry = map[core.Kind]Descriptor{
	core.KindInteger: {
		Kind: core.KindInteger, Scalar: core.KindInteger,
		StorageType: core.TypeBigint, TermType: core.TypeBigint, StepType: core.TypeBigint,
		DefaultStep: "1",
	},
	core.KindDecimal: {
		Kind: core.KindDecimal, Scalar: core.KindDecimal,
		StorageType: core.TypeNumeric, TermType: core.TypeNumeric, StepType: core.TypeNumeric,
		DefaultStep: "1",
	},
	core.KindDate: {
		Kind: core.KindDate, Scalar: core.KindDate,
		StorageType: core.TypeDate, TermType: core.TypeTimestamp, StepType: core.TypeInterval,
		DefaultStep: "1 day",
	},
	core.KindDateTime: {
		Kind: core.KindDateTime, Scalar: core.KindDateTime,
		StorageType: core.TypeTimestampTZ, TermType: core.TypeTimestampTZ, StepType: core.TypeInterval,
		DefaultStep: "1 day",
	},
	core.KindIntegerRange: {
		Kind: core.KindIntegerRange, Scalar: core.KindInteger, IsRange: true,
		StorageType: core.TypeInt8Range, TermType: core.TypeBigint, StepType: core.TypeBigint,
		RangeFunc: "int8range", DefaultStep: "1",
	},
	core.KindDecimalRange: {
		Kind: core.KindDecimalRange, Scalar: core.KindDecimal, IsRange: true,
		StorageType: core.TypeNumRange, TermType: core.TypeNumeric, StepType: core.TypeNumeric,
		RangeFunc: "numrange", DefaultStep: "1",
	},
	core.KindDateRange: {
		Kind: core.KindDateRange, Scalar: core.KindDate, IsRange: true,
		StorageType: core.TypeDateRange, TermType: core.TypeTimestamp, StepType: core.TypeInterval,
		RangeFunc: "daterange", DefaultStep: "1 day",
	},
	core.KindDateTimeRange: {
		Kind: core.KindDateTimeRange, Scalar: core.KindDateTime, IsRange: true,
		StorageType: core.TypeTstzRange, TermType: core.TypeTimestampTZ, StepType: core.TypeInterval,
		RangeFunc: "tstzrange", DefaultStep: "1 day",
	},
}

// Describe returns the descriptor of kind.
func Describe(kind core.Kind) (Descriptor, bool) {
	d, ok := registry[kind]
	return d, ok
}

// MustDescribe is Describe for kinds known to be valid.
func MustDescribe(kind core.Kind) Descriptor {
	d, ok := registry[kind]
	if !ok {
		panic(fmt.Sprintf("series: no descriptor for kind %s", kind))
	}
	return d
}

// Descriptors lists every descriptor in kind order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(registry))
	for _, k := range core.Kinds() {
		if d, ok := registry[k]; ok {
			out = append(out, d)
		}
	}
	return out
}

// ScalarKindOf returns the kind of the terms a range kind is built from.
// Scalar kinds map to themselves.
func ScalarKindOf(kind core.Kind) (core.Kind, bool) {
	d, ok := registry[kind]
	if !ok {
		return core.KindInvalid, false
	}
	return d.Scalar, true
}

// PairToRange builds the half-open range [lower, upper) for a range kind
// from two scalar terms.
func PairToRange(kind core.Kind, lower, upper any) (core.Range, error) {
	d, ok := registry[kind]
	if !ok || !d.IsRange {
		return core.Range{}, fmt.Errorf("%s is not a range kind", kind)
	}
	lo, err := formatTerm(d.Scalar, lower)
	if err != nil {
		return core.Range{}, err
	}
	hi, err := formatTerm(d.Scalar, upper)
	if err != nil {
		return core.Range{}, err
	}
	return core.NewRange(lo, hi), nil
}

// formatTerm renders a scalar term the way the database prints it.
func formatTerm(kind core.Kind, v any) (string, error) {
	x, err := coerceBound(v, kind)
	if err != nil {
		return "", &TypeError{Field: "term", Kind: kind, Value: v, Err: err}
	}
	switch t := x.(type) {
	case int64:
		return fmt.Sprint(t), nil
	case apd.Decimal:
		return t.String(), nil
	case time.Time:
		if kind == core.KindDate {
			return t.Format(time.DateOnly), nil
		}
		if _, off := t.Zone(); off%3600 == 0 {
			return t.Format("2006-01-02 15:04:05.999999-07"), nil
		}
		return t.Format("2006-01-02 15:04:05.999999-07:00"), nil
	}
	return "", fmt.Errorf("unexpected term %T", x)
}
