// Package repository holds the SQL data access for experiences, slots,
// promo codes and bookings. The sentinel errors below let the service and
// handler layers tell business outcomes apart from database faults.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned when the requested row does not exist. Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a guarded write matched no row, such as a
// capacity decrement that would have gone negative.
var ErrConflict = errors.New("conflict")

// ErrDuplicateKey is returned when an insert collides with an existing
// primary key.
var ErrDuplicateKey = errors.New("duplicate key")

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
