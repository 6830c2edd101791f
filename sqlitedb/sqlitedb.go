// Package sqlitedb opens an embedded SQLite database for bun. It backs local
// development and the storage tests; every table lives in the "main" schema.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/rise-and-shine/tabletop/pg"
)

// Schema is the schema name SQLite gives the primary database file.
const Schema = "main"

const driverName = "sqlite"

// Open creates a bun database over a SQLite file, creating parent directories as needed.
// The pool is limited to a single connection so transactions never race each other for the file lock.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	if cfg.Path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750) //nolint:mnd // rwxr-x---
		if err != nil {
			return nil, errx.Wrap(err, errx.WithCode(pg.CodeConnectFailed))
		}
	}

	sqldb, err := sql.Open(driverName, dsn(cfg))
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(pg.CodeConnectFailed))
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	pg.ApplyHooks(db, cfg.Debug)
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.FromEnv("BUNDEBUG")))

	err = pg.Ping(ctx, db, 1, 0)
	if err != nil {
		_ = db.Close()
		return nil, errx.Wrap(err)
	}

	return db, nil
}

func dsn(cfg Config) string {
	return fmt.Sprintf(
		"%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_txlock=immediate",
		cfg.Path,
		cfg.BusyTimeout.Milliseconds(),
	)
}
