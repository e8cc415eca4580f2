// Package database defines the narrow surface the repositories and the
// crawler depend on, so they never see the driver directly. The pgx pool
// satisfies it in production; tests use in-memory fakes.
package database

import (
	"context"
	"database/sql"
)

// Querier is the statement surface shared by the pool and a transaction.
// Exec reports affected rows because the application repository's
// compare-and-set update depends on that count.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

// DB is the shared connection handle. SQLDB exposes the stdlib adapter the
// migration runner requires.
type DB interface {
	Querier

	Ping(ctx context.Context) error
	Close() error
	Begin(ctx context.Context) (Tx, error)
	SQLDB() *sql.DB
}

// Tx covers the multi-statement writes: application create with its first
// history row, and the status compare-and-set plus history append.
type Tx interface {
	Querier

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type Row interface {
	Scan(dest ...any) error
}
