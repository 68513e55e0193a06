// Package dialect provides the runtime view of a SQL dialect: placeholder
// formatting, identifier quoting and the mapping from canonical type names
// onto the dialect's own spelling.
//
// Concrete dialects are plain data (core.DialectConfig) registered from
// pkg/dialects/*/ packages.
package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/genseries/pkg/core"
)

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	*core.DialectConfig
}

// New wraps a static configuration.
func New(cfg *core.DialectConfig) *Dialect {
	return &Dialect{DialectConfig: cfg}
}

// FormatPlaceholder returns the placeholder for the parameter at the given
// 1-based index.
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case core.PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	default: // PlaceholderQuestion
		return "?"
	}
}

// QuoteIdentifier quotes an identifier, escaping embedded quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteQualified quotes each dot-separated part of a qualified name.
func (d *Dialect) QuoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// SupportsType reports whether the dialect can express a canonical type.
func (d *Dialect) SupportsType(canonical string) bool {
	_, ok := d.Types[canonical]
	return ok
}

// TypeName returns the dialect spelling of a canonical type.
func (d *Dialect) TypeName(canonical string) (string, error) {
	if name, ok := d.Types[canonical]; ok {
		return name, nil
	}
	return "", &UnsupportedTypeError{Dialect: d.Name, Type: canonical}
}

// Cast wraps expr in a CAST to the canonical type.
func (d *Dialect) Cast(expr, canonical string) (string, error) {
	name, err := d.TypeName(canonical)
	if err != nil {
		return "", err
	}
	return "CAST(" + expr + " AS " + name + ")", nil
}

// UnsupportedTypeError is returned when a dialect cannot express a type.
type UnsupportedTypeError struct {
	Dialect string
	Type    string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("dialect %q does not support type %s", e.Dialect, e.Type)
}
