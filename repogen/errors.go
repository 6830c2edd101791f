package repogen

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/tabletop/pg"
)

// Storage error taxonomy. Every repository method reports store failures with one of these codes.
const (
	CodeDuplicateKey         = "DUPLICATE_KEY"
	CodeIntegrityViolation   = "INTEGRITY_VIOLATION"
	CodeInvalidData          = "INVALID_DATA"
	CodeOperationalFailure   = "OPERATIONAL_FAILURE"
	CodeProgrammingError     = "PROGRAMMING_ERROR"
	CodeUnsupportedOperation = "UNSUPPORTED_OPERATION"

	CodeUnknownFilterField = "UNKNOWN_FILTER_FIELD"
	CodeUnknownSortField   = "UNKNOWN_SORT_FIELD"
)

type kind struct {
	code string
	typ  errx.Type
}

var (
	kindDuplicate   = kind{CodeDuplicateKey, errx.T_Conflict}
	kindIntegrity   = kind{CodeIntegrityViolation, errx.T_Validation}
	kindInvalidData = kind{CodeInvalidData, errx.T_Validation}
	kindOperational = kind{CodeOperationalFailure, errx.T_Internal}
	kindProgramming = kind{CodeProgrammingError, errx.T_Internal}
	kindUnsupported = kind{CodeUnsupportedOperation, errx.T_Validation}
)

// sqlStateClasses maps two-character SQLSTATE classes onto the taxonomy.
// 23505 is matched before this table.
var sqlStateClasses = map[string]kind{ //nolint:gochecknoglobals // lookup table
	"23": kindIntegrity,
	"22": kindInvalidData,
	"08": kindOperational,
	"40": kindOperational,
	"53": kindOperational,
	"57": kindOperational,
	"58": kindOperational,
	"25": kindProgramming,
	"42": kindProgramming,
	"0A": kindUnsupported,
}

// sqliteMessages is checked in order; the first matching fragment wins.
var sqliteMessages = []struct { //nolint:gochecknoglobals // lookup table
	fragment string
	kind     kind
}{
	{"UNIQUE constraint failed", kindDuplicate},
	{"constraint failed", kindIntegrity},
	{"datatype mismatch", kindInvalidData},
	{"no such table", kindProgramming},
	{"no such column", kindProgramming},
	{"syntax error", kindProgramming},
	{"database is locked", kindOperational},
	{"disk I/O error", kindOperational},
}

// Classify translates a storage error into the repository taxonomy. op and
// entity name the failed action for the message; query, when non-nil, is
// attached to the details. Errors outside the taxonomy are wrapped unchanged.
func Classify(err error, op, entity string, query fmt.Stringer) error {
	if err == nil {
		return nil
	}

	details := pg.GetPgErrorDetails(err, query)

	k, ok := kindOf(err)
	if !ok {
		return errx.Wrap(err, errx.WithDetails(details))
	}

	return errx.Wrap(
		fmt.Errorf("%s %s: %w", op, entity, err),
		errx.WithCode(k.code),
		errx.WithType(k.typ),
		errx.WithDetails(details),
	)
}

func kindOf(err error) (kind, bool) {
	if state := pg.SQLState(err); state != "" {
		if pg.IsConflict(err) {
			return kindDuplicate, true
		}
		if len(state) >= 2 { //nolint:mnd // class prefix
			k, ok := sqlStateClasses[state[:2]]
			return k, ok
		}
	}

	switch {
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return kindOperational, true
	case errors.Is(err, sql.ErrTxDone):
		return kindProgramming, true
	}

	msg := err.Error()
	for _, m := range sqliteMessages {
		if strings.Contains(msg, m.fragment) {
			return m.kind, true
		}
	}

	return kind{}, false
}

func unknownFieldError(code, param, field, entity string) error {
	return errx.New(
		fmt.Sprintf("%s has no field %q", entity, field),
		errx.WithCode(code),
		errx.WithType(errx.T_Validation),
		errx.WithFields(errx.M{param: fmt.Sprintf("unknown field %q", field)}),
	)
}

// UnknownFilterError reports a filter key that entity cannot be filtered by.
func UnknownFilterError(field, entity string) error {
	return unknownFieldError(CodeUnknownFilterField, field, field, entity)
}
