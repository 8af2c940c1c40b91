// Package repository defines the ownership-scoped data access layer.
// Errors leaving this package are always classified with apperr: a
// missing or foreign-owned row is NotFound, anything else the database
// rejects is a Database error whose detail is kept for server logs only.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iliyamo/optitask/internal/apperr"
)

// MySQL server error numbers for constraint failures.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// notFound builds the NotFound error for an entity kind and id.
func notFound(entity string, id uuid.UUID) error {
	return apperr.NotFoundf("%s with id %s not found", entity, id)
}

// translate classifies err. sql.ErrNoRows (returned by lookups and by
// updates that matched nothing) becomes NotFound for the given entity;
// errors that are already classified pass through.
func translate(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(entity, id)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.NewDatabase(err, describe(err))
}

// wrapDB classifies err for statements that have no single target row.
func wrapDB(err error, op string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.NewDatabase(err, op+": "+describe(err))
}

// describe names the kind of constraint failure, if any, for the logs.
func describe(err error) string {
	var my *mysql.MySQLError
	if errors.As(err, &my) {
		switch my.Number {
		case mysqlDuplicateEntry:
			return "unique constraint violation"
		case mysqlRowIsReferenced, mysqlNoReferencedRow:
			return "foreign key constraint violation"
		}
		return fmt.Sprintf("mysql error %d", my.Number)
	}
	var lite *sqlite.Error
	if errors.As(err, &lite) {
		switch lite.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return "unique constraint violation"
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return "foreign key constraint violation"
		}
		if lite.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return "constraint violation"
		}
		return fmt.Sprintf("sqlite error %d", lite.Code())
	}
	return "database failure"
}

// IsConstraintViolation reports whether err was caused by a unique or
// foreign key constraint in either supported database.
func IsConstraintViolation(err error) bool {
	var my *mysql.MySQLError
	if errors.As(err, &my) {
		switch my.Number {
		case mysqlDuplicateEntry, mysqlRowIsReferenced, mysqlNoReferencedRow:
			return true
		}
		return false
	}
	var lite *sqlite.Error
	if errors.As(err, &lite) {
		return lite.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
