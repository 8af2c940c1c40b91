package database

import (
	"context"
	"database/sql"

	"github.com/iliyamo/optitask/internal/apperr"
)

// DBTX is the statement surface shared by *sql.DB, *sql.Conn and *sql.Tx.
// Repository queries are written against it so the same code runs on a
// checked-out connection or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithConn checks one connection out of the pool for the duration of fn.
// A failed checkout is reported as a pool error.
func WithConn(ctx context.Context, db *sql.DB, fn func(q DBTX) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return apperr.NewPool(err)
	}
	defer conn.Close()
	return fn(conn)
}

// WithTx runs fn inside a transaction on a freshly checked-out connection.
// The transaction commits when fn returns nil and rolls back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(q DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.NewPool(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return apperr.NewDatabase(err, "commit transaction")
	}
	return nil
}

// Ping checks a connection out of the pool and verifies it is alive.
func Ping(ctx context.Context, db *sql.DB) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return apperr.NewPool(err)
	}
	defer conn.Close()
	if err := conn.PingContext(ctx); err != nil {
		return apperr.NewPool(err)
	}
	return nil
}
