// Package adapter provides the database adapter interface used to run
// rendered series queries.
//
// This package contains the public contract that all database adapters must
// implement. Concrete adapter implementations are in pkg/adapters/
// subdirectories and register themselves from init().
package adapter

import (
	"context"

	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/dialect"
)

// Adapter defines the interface that all database adapters must implement.
// It satisfies query.Executor, so an adapter can back a QuerySet directly.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg core.AdapterConfig) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a statement that doesn't return rows and reports the
	// number of rows affected.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Query executes a statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (*core.Rows, error)

	// GetTableMetadata retrieves metadata for a specified table.
	GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error)

	// Dialect returns the SQL dialect queries must be rendered for.
	Dialect() *dialect.Dialect
}
