// Package events plans game sessions: game systems, sessions run by a game
// master, the players known to the service and who joined which session.
package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/uow"
)

// Unit is a unit of work over the event planning tables.
type Unit struct {
	uow.Session

	GameSystems  *repogen.Repo[GameSystem, uuid.UUID]
	GameSessions *repogen.Repo[GameSession, uuid.UUID]
	Users        *repogen.Repo[User, string]
	Memberships  *repogen.Repo[Membership, uuid.UUID]
}

// Binder returns the function binding the event planning repositories of schema to a session.
func Binder(schema string) func(uow.Session) Unit {
	return func(s uow.Session) Unit {
		idb := s.DB()
		return Unit{
			Session: s,
			GameSystems: repogen.NewBuilder[GameSystem, uuid.UUID](idb).
				WithSchemaName(schema).
				WithEntityName("game system").
				Build(),
			GameSessions: repogen.NewBuilder[GameSession, uuid.UUID](idb).
				WithSchemaName(schema).
				WithEntityName("game session").
				Build(),
			Users: repogen.NewBuilder[User, string](idb).
				WithSchemaName(schema).
				WithEntityName("user").
				Build(),
			Memberships: repogen.NewBuilder[Membership, uuid.UUID](idb).
				WithSchemaName(schema).
				WithEntityName("membership").
				Build(),
		}
	}
}

// Migrate creates the event planning schema and its tables when they are missing.
// Game masters are not declared as foreign keys: users are only recorded once
// they call the service, which can be after their first session was planned.
func Migrate(ctx context.Context, idb bun.IDB, schema string) error {
	err := repogen.CreateSchema(ctx, idb, schema)
	if err != nil {
		return err
	}

	tables := []struct {
		model any
		fks   []repogen.ForeignKey
	}{
		{model: (*GameSystem)(nil)},
		{model: (*User)(nil)},
		{
			model: (*GameSession)(nil),
			fks:   []repogen.ForeignKey{{Column: "game_system_id", RefTable: "game_systems", OnDelete: "RESTRICT"}},
		},
		{
			model: (*Membership)(nil),
			fks: []repogen.ForeignKey{
				{Column: "user_id", RefTable: "users"},
				{Column: "game_session_id", RefTable: "game_sessions"},
			},
		},
	}

	for _, t := range tables {
		err = repogen.CreateTable(ctx, idb, schema, t.model, t.fks...)
		if err != nil {
			return err
		}
	}
	return nil
}
