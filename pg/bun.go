// Package pg opens PostgreSQL connections for bun and carries the pieces of
// PostgreSQL handling shared by every repository: bookkeeping columns, error
// details and query hooks.
package pg

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bunotel"

	"github.com/rise-and-shine/tabletop/pg/hooks"
)

// NewBunDB creates a bun database over a pgx pool and waits until the server answers a ping.
func NewBunDB(ctx context.Context, cfg Config) (*bun.DB, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	bunDB := bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New())
	ApplyHooks(bunDB, cfg.Debug)

	err = Ping(ctx, bunDB, cfg.ConnectAttempts, cfg.ConnectRetryDelay)
	if err != nil {
		_ = bunDB.Close()
		return nil, errx.Wrap(err)
	}

	return bunDB, nil
}

// ApplyHooks installs the query debug hook (active only when debug is set)
// and the OpenTelemetry hook.
func ApplyHooks(db *bun.DB, debug bool) {
	db.AddQueryHook(
		hooks.NewDebugHook(
			hooks.WithEnabled(debug),
			hooks.WithVerbose(true),
		),
	)
	db.AddQueryHook(bunotel.NewQueryHook(bunotel.WithFormattedQueries(true)))
}

// Ping retries db.PingContext until it succeeds or attempts run out.
func Ping(ctx context.Context, db *bun.DB, attempts uint, delay time.Duration) error {
	err := retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(max(attempts, 1)),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return nil
	}
	return errx.Wrap(err, errx.WithCode(CodeConnectFailed), errx.WithType(errx.T_Internal))
}
