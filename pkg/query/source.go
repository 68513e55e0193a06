package query

import (
	"strings"

	"github.com/leapstack-labs/genseries/pkg/core"
)

// Column describes one output column of a source.
type Column struct {
	Name string
	// Kind is the series kind carried by the column, or core.KindInvalid for
	// columns outside the series domain.
	Kind core.Kind
	// Type is the canonical storage type (see the core.Type* constants).
	Type string
}

// Source is anything a query can select FROM: a stored table or a derived
// table such as a compiled series.
type Source interface {
	// Columns lists the source's output columns. The first column is the key.
	Columns() []Column
	// WriteSource writes the FROM item without its alias.
	WriteSource(r *Renderer)
}

// Table is a stored table. Unlike derived sources it accepts writes.
type Table struct {
	Name string
	Cols []Column
}

// Columns implements Source.
func (t Table) Columns() []Column { return t.Cols }

// WriteSource implements Source.
func (t Table) WriteSource(r *Renderer) {
	r.Write(r.Dialect().QuoteQualified(t.Name))
}

// metadataTypes maps information_schema data types onto canonical types.
var metadataTypes = map[string]string{
	"integer":                     core.TypeBigint,
	"int":                         core.TypeBigint,
	"int4":                        core.TypeBigint,
	"int8":                        core.TypeBigint,
	"bigint":                      core.TypeBigint,
	"smallint":                    core.TypeBigint,
	"numeric":                     core.TypeNumeric,
	"decimal":                     core.TypeNumeric,
	"date":                        core.TypeDate,
	"timestamp":                   core.TypeTimestamp,
	"timestamp without time zone": core.TypeTimestamp,
	"timestamp with time zone":    core.TypeTimestampTZ,
	"timestamptz":                 core.TypeTimestampTZ,
	"timestamp_s":                 core.TypeTimestamp,
	"int4range":                   core.TypeInt8Range,
	"int8range":                   core.TypeInt8Range,
	"numrange":                    core.TypeNumRange,
	"daterange":                   core.TypeDateRange,
	"tstzrange":                   core.TypeTstzRange,
	"boolean":                     core.TypeBoolean,
	"text":                        core.TypeText,
	"varchar":                     core.TypeText,
	"character varying":           core.TypeText,
}

// typeKinds maps canonical types onto the series kind they carry.
var typeKinds = map[string]core.Kind{
	core.TypeBigint:      core.KindInteger,
	core.TypeNumeric:     core.KindDecimal,
	core.TypeDate:        core.KindDate,
	core.TypeTimestamp:   core.KindDateTime,
	core.TypeTimestampTZ: core.KindDateTime,
	core.TypeInt8Range:   core.KindIntegerRange,
	core.TypeNumRange:    core.KindDecimalRange,
	core.TypeDateRange:   core.KindDateRange,
	core.TypeTstzRange:   core.KindDateTimeRange,
}

// rangeElements maps a range type onto its element type.
var rangeElements = map[string]string{
	core.TypeInt8Range: core.TypeBigint,
	core.TypeNumRange:  core.TypeNumeric,
	core.TypeDateRange: core.TypeDate,
	core.TypeTstzRange: core.TypeTimestampTZ,
}

// TableFromMetadata builds a Table from adapter metadata so that stored
// tables can be composed with series. Unrecognised types become text.
func TableFromMetadata(md *core.TableMetadata, defaultSchema string) Table {
	cols := make([]Column, 0, len(md.Columns))
	for _, c := range md.Columns {
		dataType := strings.ToLower(c.Type)
		if i := strings.IndexByte(dataType, '('); i >= 0 {
			dataType = strings.TrimSpace(dataType[:i])
		}
		canonical, ok := metadataTypes[dataType]
		if !ok {
			canonical = core.TypeText
		}
		cols = append(cols, Column{Name: c.Name, Kind: typeKinds[canonical], Type: canonical})
	}
	name := md.Name
	if md.Schema != "" && md.Schema != defaultSchema {
		name = md.Schema + "." + md.Name
	}
	return Table{Name: name, Cols: cols}
}

// Row is one result row.
type Row struct {
	Columns []string
	Values  []any
}

// Get returns the value of the named column, or nil.
func (r Row) Get(name string) any {
	for i, c := range r.Columns {
		if c == name {
			return r.Values[i]
		}
	}
	return nil
}

// Map returns the row as a column → value map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}

// IsZero reports whether the row carries no columns.
func (r Row) IsZero() bool { return len(r.Columns) == 0 }
