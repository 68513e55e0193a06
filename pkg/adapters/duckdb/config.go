package duckdb

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Params holds DuckDB-specific configuration, parsed from
// core.AdapterConfig.Options.
type Params struct {
	// Extensions to install and load (e.g., "icu", "json"), from the
	// comma-separated "extensions" option.
	Extensions []string

	// Settings applied with SET after connecting (e.g., threads,
	// memory_limit). Every option other than "extensions" is a setting.
	Settings map[string]string
}

// parseParams splits adapter options into extensions and settings.
func parseParams(options map[string]string) (*Params, error) {
	p := &Params{}
	for key, value := range options {
		if strings.EqualFold(key, "extensions") {
			for _, ext := range strings.Split(value, ",") {
				ext = strings.TrimSpace(ext)
				if ext == "" {
					continue
				}
				if !isPlainName(ext) {
					return nil, fmt.Errorf("invalid extension name %q", ext)
				}
				p.Extensions = append(p.Extensions, ext)
			}
			continue
		}
		if !isPlainName(key) {
			return nil, fmt.Errorf("invalid setting name %q", key)
		}
		if p.Settings == nil {
			p.Settings = make(map[string]string)
		}
		p.Settings[key] = value
	}
	return p, nil
}

// statements returns the SQL that applies p, in a stable order.
func (p *Params) statements() []string {
	var stmts []string
	for _, ext := range p.Extensions {
		stmts = append(stmts, "INSTALL "+ext, "LOAD "+ext)
	}
	for _, key := range slices.Sorted(maps.Keys(p.Settings)) {
		value := strings.ReplaceAll(p.Settings[key], "'", "''")
		stmts = append(stmts, fmt.Sprintf("SET %s = '%s'", key, value))
	}
	return stmts
}

func isPlainName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
