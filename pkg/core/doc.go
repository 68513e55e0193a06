// Package core defines the shared language of genseries.
//
// This package contains:
//   - Series value kinds (Kind) and the textual Range literal
//   - Dialect configuration data (DialectConfig)
//   - Adapter configuration and metadata types
//
// The Golden Rule: pkg/core imports only stdlib and pgx/v5/pgtype.
// All other packages depend on core, not the reverse.
package core
