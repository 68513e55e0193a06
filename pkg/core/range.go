package core

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgtype"
)

// HalfOpen is the bound notation of every range a series emits.
const HalfOpen = "[)"

// Range is the textual form of a range value, e.g. [0,1) or
// ["2024-01-01 00:00:00+00","2024-01-02 00:00:00+00").
// Bounds are kept as text so the literal can round-trip through any driver
// without knowing the element type. An empty Lower or Upper is unbounded.
type Range struct {
	Lower  string
	Upper  string
	Bounds string
	Empty  bool
}

// NewRange builds a half-open range literal.
func NewRange(lower, upper string) Range {
	return Range{Lower: lower, Upper: upper, Bounds: HalfOpen}
}

func (r Range) bounds() string {
	if len(r.Bounds) != 2 {
		return HalfOpen
	}
	return r.Bounds
}

// String renders the range in the Postgres text input format.
func (r Range) String() string {
	if r.Empty {
		return "empty"
	}
	b := r.bounds()
	return string(b[0]) + quoteRangeElem(r.Lower) + "," + quoteRangeElem(r.Upper) + string(b[1])
}

// Equal compares two literals after normalising the bound notation.
func (r Range) Equal(o Range) bool {
	if r.Empty || o.Empty {
		return r.Empty == o.Empty
	}
	return r.Lower == o.Lower && r.Upper == o.Upper && r.bounds() == o.bounds()
}

// Value implements driver.Valuer.
func (r Range) Value() (driver.Value, error) {
	return r.String(), nil
}

// Scan implements sql.Scanner for text-encoded ranges.
func (r *Range) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = Range{}
		return nil
	case string:
		parsed, err := ParseRange(v)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case []byte:
		return r.Scan(string(v))
	case Range:
		*r = v
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Range", src)
	}
}

// textRangeOID names a range type with text elements. It exists only in the
// maps built by newRangeMap, so it never collides with a server OID.
const textRangeOID uint32 = 0x7fff_0001

// pgtype.Map is not safe for concurrent use.
var rangeMaps = sync.Pool{New: func() any { return newRangeMap() }}

func newRangeMap() *pgtype.Map {
	m := pgtype.NewMap()
	text, _ := m.TypeForName("text")
	m.RegisterType(&pgtype.Type{
		Name:  "textrange",
		OID:   textRangeOID,
		Codec: &pgtype.RangeCodec{ElementType: text},
	})
	return m
}

// ParseRange parses the Postgres text representation of a range. Bounds keep
// their element text, unquoted.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "empty") {
		return Range{Empty: true}, nil
	}

	m := rangeMaps.Get().(*pgtype.Map)
	defer rangeMaps.Put(m)

	var pr pgtype.Range[pgtype.Text]
	if err := m.Scan(textRangeOID, pgtype.TextFormatCode, []byte(s), &pr); err != nil {
		return Range{}, fmt.Errorf("invalid range literal %q: %w", s, err)
	}
	if pr.LowerType == pgtype.Empty {
		return Range{Empty: true}, nil
	}
	lower, upper := byte('('), byte(')')
	if pr.LowerType == pgtype.Inclusive {
		lower = '['
	}
	if pr.UpperType == pgtype.Inclusive {
		upper = ']'
	}
	return Range{Lower: pr.Lower.String, Upper: pr.Upper.String, Bounds: string([]byte{lower, upper})}, nil
}

func quoteRangeElem(s string) string {
	if s == "" || !strings.ContainsAny(s, ` ,"()[]\`) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
