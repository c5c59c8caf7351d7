// Package database defines the metadata-source contract the rest of askdb
// builds on. Callers depend only on this package — never on a specific
// driver package such as database/postgres.
package database

import "context"

// Record is one result row, keyed by the column names the engine returned.
// Catalog rows and generated-query rows share this loosely-typed shape;
// consumers map the fields they know about into closed structs.
type Record map[string]any

// Source is the single contract every database backend must satisfy.
// One Source owns at most one live connection handle at a time.
type Source interface {
	// Connect lazily opens the connection handle. Calling it while a live
	// handle exists is a no-op, so callers may invoke it before every use.
	Connect(ctx context.Context) error

	// Close releases the connection handle if one exists. It is safe to
	// call with no live handle, and safe to call repeatedly. A later
	// Connect opens a fresh handle.
	Close(ctx context.Context) error

	// Ping verifies the database is reachable over the live handle.
	Ping(ctx context.Context) error

	// Query executes a SQL statement and returns every result row.
	// Values are passed as parameters — never interpolated into sql.
	Query(ctx context.Context, sql string, args ...any) ([]Record, error)
}
