package core

// DialectConfig holds the static configuration for a SQL dialect.
// It is pure data.
//
// The runtime helpers (placeholder formatting, quoting, type lookup) live in
// pkg/dialect.Dialect, which embeds this config.
type DialectConfig struct {
	// Name is the dialect identifier (e.g., "duckdb", "postgres")
	Name string

	// Identifiers defines quoting rules
	Identifiers IdentifierConfig

	// DefaultSchema is the default schema name ("main" for DuckDB, "public" for Postgres)
	DefaultSchema string

	// Placeholder defines how query parameters are formatted
	Placeholder PlaceholderStyle

	// Types maps canonical (Postgres-spelled) type names onto the dialect's
	// spelling. A canonical type missing from the map is unsupported.
	Types map[string]string

	// TextParams lists canonical types the driver cannot bind directly.
	// Parameters of these types are bound as text and cast twice:
	// CAST(CAST(? AS <text>) AS <type>).
	TextParams map[string]bool

	// SeriesFunction is the set-returning function that emits the terms of a series.
	SeriesFunction string

	// Feature flags
	SupportsReturning   bool
	SupportsForUpdate   bool
	SupportsRangeTypes  bool
	SupportsExplainText bool
}

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (DuckDB, MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
)

// IdentifierConfig defines how identifiers are quoted.
type IdentifierConfig struct {
	Quote    string // Quote character: ", `, [
	QuoteEnd string // End quote character (usually same as Quote, ] for [)
	Escape   string // Escape sequence: "", ``, ]]
}

// Canonical type names used by the registry and the query layer.
const (
	TypeBigint      = "bigint"
	TypeNumeric     = "numeric"
	TypeDate        = "date"
	TypeTimestamp   = "timestamp"
	TypeTimestampTZ = "timestamptz"
	TypeInterval    = "interval"
	TypeText        = "text"
	TypeBoolean     = "boolean"
	TypeInt8Range   = "int8range"
	TypeNumRange    = "numrange"
	TypeDateRange   = "daterange"
	TypeTstzRange   = "tstzrange"
)
