package repogen

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// ForeignKey declares a column referencing another table's id in the same schema.
type ForeignKey struct {
	Column   string
	RefTable string
	OnDelete string
}

// CreateSchema creates schemaName when the dialect has schemas to create.
func CreateSchema(ctx context.Context, idb bun.IDB, schemaName string) error {
	if idb.Dialect().Name() != dialect.PG {
		return nil
	}
	_, err := idb.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS ?", bun.Ident(schemaName))
	return Classify(err, "create schema", schemaName, nil)
}

// CreateTable creates the table of model inside schemaName if it is missing.
// Foreign keys are only declared on PostgreSQL, because SQLite cannot
// reference a schema-qualified table.
func CreateTable(ctx context.Context, idb bun.IDB, schemaName string, model any, fks ...ForeignKey) error {
	q := idb.NewCreateTable().Model(model).IfNotExists()
	table := tableOf(q)
	q = q.ModelTableExpr("?.?", bun.Ident(schemaName), bun.Ident(table.Name))

	if idb.Dialect().Name() == dialect.PG {
		for _, fk := range fks {
			onDelete := fk.OnDelete
			if onDelete == "" {
				onDelete = "CASCADE"
			}
			q = q.ForeignKey(
				"(?) REFERENCES ?.? (?) ON DELETE "+onDelete,
				bun.Ident(fk.Column),
				bun.Ident(schemaName),
				bun.Ident(fk.RefTable),
				bun.Ident(idColumn),
			)
		}
	}

	_, err := q.Exec(ctx)
	if err != nil {
		return Classify(err, "create table", table.Name, q)
	}
	return nil
}
