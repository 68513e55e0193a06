// Package duckdb provides the DuckDB SQL dialect definition.
// This package is pure Go with no database driver dependencies.
package duckdb

import (
	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/dialect"
)

func init() {
	dialect.Register(DuckDB)
}

// Config is the DuckDB dialect configuration.
//
// DuckDB's generate_series only iterates integers and timestamps, and it has
// no range types, so numeric and range canonical types are left unmapped.
var Config = &core.DialectConfig{
	Name:          "duckdb",
	DefaultSchema: "main",
	Placeholder:   core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote:    `"`,
		QuoteEnd: `"`,
		Escape:   `""`,
	},
	SeriesFunction: "generate_series",

	Types: map[string]string{
		core.TypeBigint:    "BIGINT",
		core.TypeDate:      "DATE",
		core.TypeTimestamp: "TIMESTAMP",
		// Without the ICU extension TIMESTAMPTZ arithmetic is unavailable,
		// so zoned timestamps are generated as plain UTC timestamps.
		core.TypeTimestampTZ: "TIMESTAMP",
		core.TypeInterval:    "INTERVAL",
		core.TypeText:        "VARCHAR",
		core.TypeBoolean:     "BOOLEAN",
	},

	// go-duckdb cannot bind a Go string to an INTERVAL parameter.
	TextParams: map[string]bool{core.TypeInterval: true},

	SupportsReturning:   true,
	SupportsForUpdate:   false,
	SupportsRangeTypes:  false,
	SupportsExplainText: true,
}

// DuckDB is the DuckDB dialect.
var DuckDB = dialect.New(Config)
