package database

import "context"

// Adapter is the storage contract shared by every backend. Queries use '?'
// placeholders; each backend rebinds them to its driver's style.
type Adapter interface {
	// Execute runs a mutating statement.
	Execute(ctx context.Context, query string, args ...any) (Result, error)
	// All scans every row into dest, a pointer to a slice of structs tagged with `db`.
	All(ctx context.Context, dest any, query string, args ...any) error
	// Get scans at most one row into dest and reports whether a row existed.
	Get(ctx context.Context, dest any, query string, args ...any) (bool, error)
	// Run is Execute for statements whose result is not read.
	Run(ctx context.Context, query string, args ...any) error
}

// Result is the effect of a mutating statement.
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// Backend names the database flavour behind a Store.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendLibSQL   Backend = "libsql"
	BackendPostgres Backend = "postgres"
)

func (b Backend) String() string {
	return string(b)
}
