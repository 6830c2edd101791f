package pg

import (
	"context"

	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rise-and-shine/tabletop/meta"
)

// NewPool opens a pgx pool. Connections are established lazily; NewBunDB pings.
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeConnectFailed))
	}
	return pool, nil
}

// PoolConfig translates cfg into pgxpool settings. Sessions are tagged with
// the service name so they can be told apart in pg_stat_activity.
func PoolConfig(cfg Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeConnectFailed))
	}

	pc.MaxConns = cfg.PoolMaxConns
	pc.MinConns = min(cfg.PoolMinConns, cfg.PoolMaxConns)
	pc.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	pc.MaxConnLifetime = cfg.PoolMaxConnLifetime

	if name := meta.Service().Name; name != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = name
	}
	return pc, nil
}
