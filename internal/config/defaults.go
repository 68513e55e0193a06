package config

import (
	"strings"

	"github.com/leapstack-labs/genseries/pkg/dialect"
)

// Default configuration values.
const (
	DefaultTargetType = "duckdb"
	DefaultDatabase   = ":memory:"
	DefaultLogLevel   = "warn"
	DefaultOutput     = "table"
	DefaultPgPort     = 5432
)

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"table", "json", "csv"}

// DefaultSchemaForType returns the default schema of a registered dialect,
// or "main" when none is known.
func DefaultSchemaForType(dbType string) string {
	if d, ok := dialect.Get(strings.ToLower(dbType)); ok && d.DefaultSchema != "" {
		return d.DefaultSchema
	}
	return "main"
}

// ApplyTargetDefaults fills unset fields based on the target type.
func ApplyTargetDefaults(t *Target) {
	if t == nil {
		return
	}
	t.Type = strings.ToLower(t.Type)
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
	switch t.Type {
	case "postgres":
		if t.Port == 0 {
			t.Port = DefaultPgPort
		}
	case "duckdb":
		if t.Database == "" {
			t.Database = DefaultDatabase
		}
	}
}
