package pg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// CodeConnectFailed is returned when the database cannot be reached at startup.
	CodeConnectFailed = "DB_CONNECT_FAILED"

	pgConflictCode = "23505"
)

// IsConflict checks if the error is a PostgreSQL unique constraint violation.
func IsConflict(err error) bool {
	return SQLState(err) == pgConflictCode
}

// SQLState returns the SQLSTATE of a PostgreSQL error, or "" for other errors.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// ConstraintName returns the violated constraint of a PostgreSQL error, if any.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// GetPgErrorDetails collects the failing query and, for PostgreSQL errors, the server's diagnostic fields.
func GetPgErrorDetails(err error, query fmt.Stringer) errx.D {
	details := make(errx.D)
	if queryStr := getSafeQueryString(query); queryStr != "" {
		details["query"] = strings.ReplaceAll(queryStr, `"`, ``)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return details
	}

	details["pg.code"] = pgErr.Code
	details["pg.severity"] = pgErr.Severity
	details["pg.message"] = pgErr.Message
	details["pg.detail"] = pgErr.Detail
	details["pg.hint"] = pgErr.Hint
	details["pg.schema"] = pgErr.SchemaName
	details["pg.table"] = pgErr.TableName
	details["pg.column"] = pgErr.ColumnName
	details["pg.constraint"] = pgErr.ConstraintName

	return details
}

// getSafeQueryString stringifies query, returning "" for nil queries or when
// String panics (bun insert queries may panic on partially built models).
func getSafeQueryString(query fmt.Stringer) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()

	if query == nil {
		return ""
	}

	return query.String()
}
