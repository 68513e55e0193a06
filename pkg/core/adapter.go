package core

import "database/sql"

// AdapterConfig is what an adapter needs to reach a target database.
// File-based engines read Path; network engines use Host, Port and Database.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	// Schema is the default schema for unqualified table names.
	Schema  string
	Options map[string]string
}

// Column describes one column of a concrete table as reported by
// information_schema. Type is the engine's own data type spelling.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	Position   int
}

// TableMetadata is the shape of a concrete table a series can be composed
// with.
type TableMetadata struct {
	Schema   string
	Name     string
	Columns  []Column
	RowCount int64
}

// Rows is the result cursor returned by adapters.
type Rows struct {
	*sql.Rows
}
