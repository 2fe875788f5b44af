// Package dialect provides the database driver abstraction used by the
// runtime pieces of crudo. It defines the dialect name constants and the
// interfaces a persistence execution engine must implement to run the
// query descriptors built by the query package.
package dialect

import "context"

// Supported dialect names.
const (
	// MySQL is the MySQL/MariaDB dialect.
	MySQL = "mysql"
	// SQLite is the SQLite dialect.
	SQLite = "sqlite"
	// Postgres is the PostgreSQL dialect.
	Postgres = "postgres"
)

// ExecQuerier wraps the two database operations used by the runtime:
// statements that mutate state and statements that return rows.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. For example,
	// INSERT and UPDATE. The v argument, if non-nil, receives the result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows, typically SELECT.
	// The v argument receives the rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that a database driver must implement.
type Driver interface {
	ExecQuerier

	// Tx starts and returns a new transaction.
	Tx(ctx context.Context) (Tx, error)

	// Close closes the underlying connection.
	Close() error

	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx is the interface for a database transaction.
type Tx interface {
	ExecQuerier

	// Commit commits the transaction.
	Commit() error

	// Rollback discards the transaction.
	Rollback() error
}
