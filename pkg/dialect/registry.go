package dialect

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Dialect)
)

// Register makes d available under its lower-cased name. pkg/dialects/*
// packages call it from init; a later registration under the same name wins.
func Register(d *Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(d.Name)] = d
}

// Get looks a dialect up by name, ignoring case.
func Get(name string) (*Dialect, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[strings.ToLower(name)]
	return d, ok
}

// List returns the registered dialect names in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}
