package uow

import (
	"context"
	"fmt"

	"github.com/code19m/errx"
)

const (
	CodeBeginFailed     = "UOW_BEGIN_FAILED"
	CodeCommitFailed    = "UOW_COMMIT_FAILED"
	CodeSessionInactive = "UOW_SESSION_INACTIVE"
)

// Run opens a session, runs fn with it and finishes the session: commit when
// fn returns nil and the session is still active, rollback when fn fails or
// panics. The session is closed exactly once on every path.
func Run(ctx context.Context, open Opener, fn func(ctx context.Context, s Session) error) (err error) {
	s, err := open(ctx)
	if err != nil {
		return errx.Wrap(err)
	}

	defer func() {
		closeErr := s.Close()
		if err == nil && closeErr != nil {
			err = errx.Wrap(closeErr)
		}
	}()

	defer func() {
		if p := recover(); p != nil {
			if s.Active() {
				_ = s.Rollback()
			}
			panic(p)
		}
	}()

	err = fn(ctx, s)
	if err != nil {
		if s.Active() {
			_ = s.Rollback()
		}
		return err
	}

	if s.Active() {
		return s.Commit()
	}
	return nil
}

// Factory builds units of work of type U, each binding its repositories to a fresh session.
type Factory[U any] struct {
	open Opener
	bind func(Session) U
}

// NewFactory creates a Factory. bind constructs the unit's named repositories on a session.
func NewFactory[U any](open Opener, bind func(Session) U) *Factory[U] {
	return &Factory[U]{open: open, bind: bind}
}

// Do runs fn inside a new unit of work. See Run for the commit rules.
func (f *Factory[U]) Do(ctx context.Context, fn func(ctx context.Context, u U) error) error {
	return Run(ctx, f.open, func(ctx context.Context, s Session) error {
		return fn(ctx, f.bind(s))
	})
}

func errInactive(op string) error {
	return errx.New(
		fmt.Sprintf("cannot %s: session is no longer active", op),
		errx.WithCode(CodeSessionInactive),
		errx.WithType(errx.T_Internal),
	)
}

func errNoTx() error {
	return errx.New(
		"savepoints need a transactional session",
		errx.WithCode(CodeSessionInactive),
		errx.WithType(errx.T_Internal),
	)
}
