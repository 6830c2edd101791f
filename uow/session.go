// Package uow groups repository calls into units of work. A unit of work owns
// exactly one session from Begin to Close: it commits when the work returns
// nil, rolls back on error or panic, and always closes the session once.
package uow

import (
	"context"
	"database/sql"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
)

// Session is the storage handle a unit of work owns.
type Session interface {
	// DB is the handle repositories are bound to.
	DB() bun.IDB
	// Commit makes the work durable. The session is inactive afterwards.
	Commit() error
	// Rollback discards the work. The session is inactive afterwards.
	Rollback() error
	// Close rolls back if still active and releases the connection. Only the first call has effect.
	Close() error
	// Active reports whether the session still has an open transaction.
	Active() bool

	// Savepoint, RollbackTo and Release manage nested rollback points inside the transaction.
	Savepoint(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error
	Release(ctx context.Context, name string) error
}

// Opener starts a new session.
type Opener func(ctx context.Context) (Session, error)

var _ Session = (*TxSession)(nil)

// TxSession is a transaction on a dedicated connection taken from a bun DB.
type TxSession struct {
	conn   bun.Conn
	tx     bun.Tx
	active bool
	closed bool
}

// Begin takes a connection from db and starts a transaction on it.
func Begin(ctx context.Context, db *bun.DB, opts *sql.TxOptions) (*TxSession, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeBeginFailed), errx.WithType(errx.T_Internal))
	}

	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		_ = conn.Close()
		return nil, errx.Wrap(err, errx.WithCode(CodeBeginFailed), errx.WithType(errx.T_Internal))
	}

	return &TxSession{conn: conn, tx: tx, active: true}, nil
}

// TxOpener returns an Opener that begins a TxSession on db.
func TxOpener(db *bun.DB, opts *sql.TxOptions) Opener {
	return func(ctx context.Context) (Session, error) {
		return Begin(ctx, db, opts)
	}
}

func (s *TxSession) DB() bun.IDB {
	return s.tx
}

func (s *TxSession) Active() bool {
	return s.active
}

func (s *TxSession) Commit() error {
	if !s.active {
		return errInactive("commit")
	}
	s.active = false
	return errx.Wrap(s.tx.Commit(), errx.WithCode(CodeCommitFailed))
}

func (s *TxSession) Rollback() error {
	if !s.active {
		return errInactive("rollback")
	}
	s.active = false
	return errx.Wrap(s.tx.Rollback())
}

func (s *TxSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var rbErr error
	if s.active {
		rbErr = s.Rollback()
	}

	err := s.conn.Close()
	if err != nil {
		return errx.Wrap(err)
	}
	return rbErr
}

func (s *TxSession) Savepoint(ctx context.Context, name string) error {
	_, err := s.tx.ExecContext(ctx, "SAVEPOINT ?", bun.Ident(name))
	return errx.Wrap(err)
}

func (s *TxSession) RollbackTo(ctx context.Context, name string) error {
	_, err := s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT ?", bun.Ident(name))
	return errx.Wrap(err)
}

func (s *TxSession) Release(ctx context.Context, name string) error {
	_, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT ?", bun.Ident(name))
	return errx.Wrap(err)
}

var _ Session = (*DBSession)(nil)

// DBSession runs statements directly on a database without a transaction.
// It serves read-only work such as list endpoints on a replica; Commit and
// Rollback are no-ops and savepoints are not supported.
type DBSession struct {
	db bun.IDB
}

// ReadOpener returns an Opener for DBSessions on db.
func ReadOpener(db bun.IDB) Opener {
	return func(context.Context) (Session, error) {
		return &DBSession{db: db}, nil
	}
}

func (s *DBSession) DB() bun.IDB { return s.db }
func (s *DBSession) Active() bool { return false }

func (s *DBSession) Commit() error { return nil }
func (s *DBSession) Rollback() error { return nil }
func (s *DBSession) Close() error { return nil }

func (s *DBSession) Savepoint(context.Context, string) error { return errNoTx() }
func (s *DBSession) RollbackTo(context.Context, string) error { return errNoTx() }
func (s *DBSession) Release(context.Context, string) error { return errNoTx() }
