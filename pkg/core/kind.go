package core

import (
	"fmt"
	"strings"
)

// Kind identifies the element type produced by a series.
// Range kinds are views over their scalar counterpart.
type Kind uint8

// Series value kinds.
const (
	KindInvalid Kind = iota
	KindInteger
	KindDecimal
	KindDate
	KindDateTime
	KindIntegerRange
	KindDecimalRange
	KindDateRange
	KindDateTimeRange
)

var kindNames = [...]string{
	KindInvalid:       "invalid",
	KindInteger:       "integer",
	KindDecimal:       "decimal",
	KindDate:          "date",
	KindDateTime:      "datetime",
	KindIntegerRange:  "integer_range",
	KindDecimalRange:  "decimal_range",
	KindDateRange:     "date_range",
	KindDateTimeRange: "datetime_range",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsRange reports whether rows of this kind are half-open intervals.
func (k Kind) IsRange() bool {
	return k >= KindIntegerRange && k <= KindDateTimeRange
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindInteger && k <= KindDateTimeRange
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindInteger, KindDecimal, KindDate, KindDateTime,
		KindIntegerRange, KindDecimalRange, KindDateRange, KindDateTimeRange,
	}
}

// ParseKind resolves a kind name. Dashes and case are ignored, and the
// short aliases "int", "numeric", "timestamp" and their "range" forms are accepted.
func ParseKind(s string) (Kind, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for k := KindInteger; k <= KindDateTimeRange; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	switch name {
	case "int", "bigint":
		return KindInteger, nil
	case "numeric":
		return KindDecimal, nil
	case "timestamp", "timestamptz":
		return KindDateTime, nil
	case "int8range", "int_range", "intrange":
		return KindIntegerRange, nil
	case "numrange", "numeric_range":
		return KindDecimalRange, nil
	case "daterange":
		return KindDateRange, nil
	case "tstzrange", "timestamp_range":
		return KindDateTimeRange, nil
	}
	return KindInvalid, fmt.Errorf("unknown series kind %q", s)
}
