// Package dnd is the D&D reference catalog: sources, spells, classes and the
// links saying which class can learn which spell.
package dnd

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/uow"
)

// Unit is a unit of work over the catalog tables.
type Unit struct {
	uow.Session

	Sources      *repogen.Repo[Source, uuid.UUID]
	Spells       *repogen.Repo[Spell, uuid.UUID]
	Classes      *repogen.Repo[Class, uuid.UUID]
	SpellClasses *repogen.Repo[SpellToClass, uuid.UUID]
}

// Binder returns the function binding the catalog repositories of schema to a session.
func Binder(schema string) func(uow.Session) Unit {
	return func(s uow.Session) Unit {
		idb := s.DB()
		return Unit{
			Session: s,
			Sources: repogen.NewBuilder[Source, uuid.UUID](idb).
				WithSchemaName(schema).
				WithEntityName("source").
				Build(),
			Spells: repogen.NewBuilder[Spell, uuid.UUID](idb).
				WithSchemaName(schema).
				WithEntityName("spell").
				Build(),
			Classes: repogen.NewBuilder[Class, uuid.UUID](idb).
				WithSchemaName(schema).
				WithEntityName("class").
				Build(),
			SpellClasses: repogen.NewBuilder[SpellToClass, uuid.UUID](idb).
				WithSchemaName(schema).
				WithEntityName("spell_to_class").
				Build(),
		}
	}
}

// Migrate creates the catalog schema and its tables when they are missing.
func Migrate(ctx context.Context, idb bun.IDB, schema string) error {
	err := repogen.CreateSchema(ctx, idb, schema)
	if err != nil {
		return err
	}

	tables := []struct {
		model any
		fks   []repogen.ForeignKey
	}{
		{model: (*Source)(nil)},
		{model: (*Class)(nil)},
		{
			model: (*Spell)(nil),
			fks:   []repogen.ForeignKey{{Column: "source_id", RefTable: "sources"}},
		},
		{
			model: (*SpellToClass)(nil),
			fks: []repogen.ForeignKey{
				{Column: "spell_id", RefTable: "spells"},
				{Column: "dnd_class_id", RefTable: "classes"},
				{Column: "source_id", RefTable: "sources"},
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
