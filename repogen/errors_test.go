package repogen_test

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/tabletop/repogen"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantType errx.Type
	}{
		{"pg unique", &pgconn.PgError{Code: "23505"}, repogen.CodeDuplicateKey, errx.T_Conflict},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, repogen.CodeIntegrityViolation, errx.T_Validation},
		{"pg bad text", &pgconn.PgError{Code: "22P02"}, repogen.CodeInvalidData, errx.T_Validation},
		{"pg admin shutdown", &pgconn.PgError{Code: "57P01"}, repogen.CodeOperationalFailure, errx.T_Internal},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, repogen.CodeOperationalFailure, errx.T_Internal},
		{"pg undefined column", &pgconn.PgError{Code: "42703"}, repogen.CodeProgrammingError, errx.T_Internal},
		{"pg unsupported", &pgconn.PgError{Code: "0A000"}, repogen.CodeUnsupportedOperation, errx.T_Validation},
		{
			"sqlite unique",
			errors.New("constraint failed: UNIQUE constraint failed: spells.name (2067)"),
			repogen.CodeDuplicateKey,
			errx.T_Conflict,
		},
		{
			"sqlite not null",
			errors.New("constraint failed: NOT NULL constraint failed: spells.name (1299)"),
			repogen.CodeIntegrityViolation,
			errx.T_Validation,
		},
		{"sqlite missing table", errors.New("SQL logic error: no such table: main.spells (1)"), repogen.CodeProgrammingError, errx.T_Internal},
		{"sqlite locked", errors.New("database is locked (5)"), repogen.CodeOperationalFailure, errx.T_Internal},
		{"bad conn", driver.ErrBadConn, repogen.CodeOperationalFailure, errx.T_Internal},
		{"tx done", sql.ErrTxDone, repogen.CodeProgrammingError, errx.T_Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repogen.Classify(tt.err, "create", "spell", nil)
			require.Error(t, err)

			e := errx.AsErrorX(err)
			assert.Equal(t, tt.wantCode, e.Code())
			assert.Equal(t, tt.wantType, e.Type())
		})
	}
}

func TestClassify_OutsideTaxonomy(t *testing.T) {
	assert.NoError(t, repogen.Classify(nil, "read", "spell", nil))

	cause := errors.New("boom")
	err := repogen.Classify(cause, "read", "spell", nil)
	require.Error(t, err)

	code := errx.AsErrorX(err).Code()
	for _, c := range []string{repogen.CodeDuplicateKey, repogen.CodeIntegrityViolation, repogen.CodeOperationalFailure} {
		assert.NotEqual(t, c, code)
	}
}
