package uow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/sqlitedb"
	"github.com/rise-and-shine/tabletop/sqlitedb/sqlitedbtest"
	"github.com/rise-and-shine/tabletop/uow"
)

type fakeSession struct {
	active    bool
	commits   int
	rollbacks int
	closes    int
}

func (f *fakeSession) DB() bun.IDB { return nil }
func (f *fakeSession) Active() bool { return f.active }

func (f *fakeSession) Commit() error {
	f.commits++
	f.active = false
	return nil
}

func (f *fakeSession) Rollback() error {
	f.rollbacks++
	f.active = false
	return nil
}

func (f *fakeSession) Close() error {
	f.closes++
	return nil
}

func (f *fakeSession) Savepoint(context.Context, string) error { return nil }
func (f *fakeSession) RollbackTo(context.Context, string) error { return nil }
func (f *fakeSession) Release(context.Context, string) error { return nil }

func opener(s *fakeSession) uow.Opener {
	return func(context.Context) (uow.Session, error) {
		s.active = true
		return s, nil
	}
}

func TestRun_ClosesExactlyOnce(t *testing.T) {
	errWork := errors.New("work failed")

	tests := []struct {
		name          string
		work          func(ctx context.Context, s uow.Session) error
		wantErr       error
		wantPanic     bool
		wantCommits   int
		wantRollbacks int
	}{
		{
			name:        "normal exit commits",
			work:        func(context.Context, uow.Session) error { return nil },
			wantCommits: 1,
		},
		{
			name:          "error rolls back",
			work:          func(context.Context, uow.Session) error { return errWork },
			wantErr:       errWork,
			wantRollbacks: 1,
		},
		{
			name:          "panic rolls back",
			work:          func(context.Context, uow.Session) error { panic("boom") },
			wantPanic:     true,
			wantRollbacks: 1,
		},
		{
			name: "explicit commit is not repeated",
			work: func(_ context.Context, s uow.Session) error {
				return s.Commit()
			},
			wantCommits: 1,
		},
		{
			name: "explicit rollback then success does not commit",
			work: func(_ context.Context, s uow.Session) error {
				return s.Rollback()
			},
			wantRollbacks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSession{}
			run := func() error { return uow.Run(t.Context(), opener(s), tt.work) }

			if tt.wantPanic {
				assert.Panics(t, func() { _ = run() })
			} else {
				err := run()
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.NoError(t, err)
				}
			}

			assert.Equal(t, 1, s.closes)
			assert.Equal(t, tt.wantCommits, s.commits)
			assert.Equal(t, tt.wantRollbacks, s.rollbacks)
		})
	}
}

func TestRun_OpenFailure(t *testing.T) {
	called := false
	err := uow.Run(t.Context(), func(context.Context) (uow.Session, error) {
		return nil, errors.New("no connection")
	}, func(context.Context, uow.Session) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

type Note struct {
	bun.BaseModel `bun:"table:notes,alias:note"`

	ID   uuid.UUID `bun:"id,pk,type:uuid"    json:"id"`
	Text string    `bun:"text,notnull,unique" json:"text"`
}

type noteCreate string

func (n noteCreate) NewEntity() *Note {
	return &Note{ID: uuid.New(), Text: string(n)}
}

type notesUnit struct {
	uow.Session
	Notes *repogen.Repo[Note, uuid.UUID]
}

func newFactory(t *testing.T) (*uow.Factory[notesUnit], *repogen.Repo[Note, uuid.UUID]) {
	t.Helper()

	db := sqlitedbtest.New(t, (*Note)(nil))
	bind := func(s uow.Session) notesUnit {
		return notesUnit{
			Session: s,
			Notes:   repogen.NewBuilder[Note, uuid.UUID](s.DB()).WithSchemaName(sqlitedb.Schema).Build(),
		}
	}
	direct := repogen.NewBuilder[Note, uuid.UUID](db).WithSchemaName(sqlitedb.Schema).Build()

	return uow.NewFactory(uow.TxOpener(db, nil), bind), direct
}

func count(t *testing.T, repo *repogen.Repo[Note, uuid.UUID]) int {
	t.Helper()
	_, total, err := repo.Query(t.Context(), repogen.FilterMap{}, repogen.QueryOpts{})
	require.NoError(t, err)
	return total
}

func TestFactory_CommitAndRollback(t *testing.T) {
	factory, direct := newFactory(t)
	ctx := t.Context()

	err := factory.Do(ctx, func(ctx context.Context, u notesUnit) error {
		_, err := u.Notes.Create(ctx, noteCreate("kept"), false)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count(t, direct))

	errAbort := errors.New("abort")
	err = factory.Do(ctx, func(ctx context.Context, u notesUnit) error {
		_, err := u.Notes.Create(ctx, noteCreate("discarded"), false)
		require.NoError(t, err)
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)
	assert.Equal(t, 1, count(t, direct))
}

func TestFactory_Savepoint(t *testing.T) {
	factory, direct := newFactory(t)
	ctx := t.Context()

	err := factory.Do(ctx, func(ctx context.Context, u notesUnit) error {
		_, err := u.Notes.Create(ctx, noteCreate("first"), false)
		require.NoError(t, err)

		require.NoError(t, u.Savepoint(ctx, "row"))
		_, err = u.Notes.Create(ctx, noteCreate("first"), false)
		require.Error(t, err)
		require.NoError(t, u.RollbackTo(ctx, "row"))
		require.NoError(t, u.Release(ctx, "row"))

		_, err = u.Notes.Create(ctx, noteCreate("second"), false)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count(t, direct))
}

func TestTxSession_NotReusable(t *testing.T) {
	factory, _ := newFactory(t)
	ctx := t.Context()

	err := factory.Do(ctx, func(ctx context.Context, u notesUnit) error {
		require.NoError(t, u.Commit())
		assert.False(t, u.Active())
		assert.Error(t, u.Commit())

		_, err := u.Notes.Create(ctx, noteCreate("late"), false)
		assert.Error(t, err)
		return nil
	})
	require.NoError(t, err)
}
