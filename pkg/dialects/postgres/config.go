// Package postgres provides the PostgreSQL SQL dialect definition.
// This package is pure Go with no database driver dependencies.
package postgres

import (
	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/dialect"
)

func init() {
	dialect.Register(Postgres)
}

// Config is the PostgreSQL dialect configuration.
// This is pure data - accessible by both Adapter and the query renderer.
var Config = &core.DialectConfig{
	Name:          "postgres",
	DefaultSchema: "public",
	Placeholder:   core.PlaceholderDollar,
	Identifiers: core.IdentifierConfig{
		Quote:    `"`,
		QuoteEnd: `"`,
		Escape:   `""`,
	},
	SeriesFunction: "generate_series",

	// Postgres spells every canonical type the canonical way.
	Types: map[string]string{
		core.TypeBigint:      "bigint",
		core.TypeNumeric:     "numeric",
		core.TypeDate:        "date",
		core.TypeTimestamp:   "timestamp",
		core.TypeTimestampTZ: "timestamptz",
		core.TypeInterval:    "interval",
		core.TypeText:        "text",
		core.TypeBoolean:     "boolean",
		core.TypeInt8Range:   "int8range",
		core.TypeNumRange:    "numrange",
		core.TypeDateRange:   "daterange",
		core.TypeTstzRange:   "tstzrange",
	},

	SupportsReturning:   true,
	SupportsForUpdate:   true,
	SupportsRangeTypes:  true,
	SupportsExplainText: true,
}

// Postgres is the PostgreSQL dialect.
var Postgres = dialect.New(Config)
