// Package app composes the service: storage, feature modules, the HTTP
// server and the seed loader, all driven by one Config.
package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/filestore"
	"github.com/rise-and-shine/tabletop/http/server"
	"github.com/rise-and-shine/tabletop/http/server/middleware"
	"github.com/rise-and-shine/tabletop/internal/dnd"
	"github.com/rise-and-shine/tabletop/internal/events"
	"github.com/rise-and-shine/tabletop/meta"
	"github.com/rise-and-shine/tabletop/observability/logger"
	"github.com/rise-and-shine/tabletop/pg"
	"github.com/rise-and-shine/tabletop/rediswr"
	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/sqlitedb"
	"github.com/rise-and-shine/tabletop/token"
	"github.com/rise-and-shine/tabletop/ucdef"
	"github.com/rise-and-shine/tabletop/uow"
)

// APIPrefix is where the feature routes are mounted.
const APIPrefix = "/api/v1"

// App is a composed service instance.
type App struct {
	cfg Config
	log logger.Logger

	primary *bun.DB
	replica *bun.DB
	closers []func() error

	Catalog *dnd.Module
	Events  *events.Module

	srv *server.HTTPServer
}

// New opens storage and builds every module. Close releases what New opened.
func New(ctx context.Context, cfg Config, log logger.Logger) (*App, error) {
	meta.SetServiceInfo(cfg.Service.Name, cfg.Service.Version)
	server.MapCodeToStatus(repogen.CodeInvalidData, http.StatusUnprocessableEntity)

	a := &App{cfg: cfg, log: log}

	err := a.openDatabases(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	locker, err := a.newLocker(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	read, write := uow.ReadOpener(a.replica), uow.TxOpener(a.primary, nil)
	schemas := cfg.schemas()

	a.Catalog = dnd.New(dnd.Deps{Read: read, Write: write, Schema: schemas.DnD, Locker: locker})
	a.Events = events.New(events.Deps{Read: read, Write: write, Schema: schemas.EventPlanning, Locker: locker})

	a.srv, err = a.newHTTPServer()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) openDatabases(ctx context.Context) error {
	switch a.cfg.Database.Driver {
	case DriverPostgres:
		primary, err := pg.NewBunDB(ctx, *a.cfg.Database.Postgres)
		if err != nil {
			return errx.Wrap(err)
		}
		a.primary, a.replica = primary, primary
		a.closers = append(a.closers, primary.Close)

		if a.cfg.Database.Replica != nil {
			replica, err := pg.NewBunDB(ctx, *a.cfg.Database.Replica)
			if err != nil {
				return errx.Wrap(err)
			}
			a.replica = replica
			a.closers = append(a.closers, replica.Close)
		}
	default:
		db, err := sqlitedb.Open(ctx, a.cfg.Database.SQLite)
		if err != nil {
			return errx.Wrap(err)
		}
		a.primary, a.replica = db, db
		a.closers = append(a.closers, db.Close)
	}
	return nil
}

func (a *App) newLocker(ctx context.Context) (bulkload.Locker, error) {
	if a.cfg.Redis == nil {
		return bulkload.NewLocalLocker(), nil
	}

	client := rediswr.New(*a.cfg.Redis)
	a.closers = append(a.closers, client.Close)

	err := rediswr.Ping(ctx, client)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return rediswr.NewLocker(client, *a.cfg.Redis), nil
}

func (a *App) newHTTPServer() (*server.HTTPServer, error) {
	verifier, err := token.NewVerifier(a.cfg.Auth)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	srv := server.NewHTTPServer(a.cfg.HTTP, []server.Middleware{
		middleware.NewRecoveryMW(a.log),
		middleware.NewTracingMW(),
		middleware.NewTimeoutMW(a.cfg.HTTP.HandleTimeout),
		middleware.NewMetaInjectMW(a.cfg.Service.Name, a.cfg.Service.Version),
		middleware.NewLoggerMW(a.log),
		middleware.NewErrorHandlerMW(a.cfg.HTTP.HideErrorDetails),
		middleware.NewAuthMW(verifier),
	})

	srv.RegisterRouter(func(r fiber.Router) {
		r.Get("/health", a.health)

		api := r.Group(APIPrefix)
		a.Catalog.Register(api)
		a.Events.Register(api)
	})

	return srv, nil
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (a *App) health(c *fiber.Ctx) error {
	resp := healthResponse{Status: "ok", Database: "up"}
	if err := a.primary.PingContext(c.UserContext()); err != nil {
		resp.Database = "down"
	}
	return c.JSON(resp)
}

// Migrate creates the schemas and tables of both features when they are missing.
func (a *App) Migrate(ctx context.Context) error {
	schemas := a.cfg.schemas()

	err := dnd.Migrate(ctx, a.primary, schemas.DnD)
	if err != nil {
		return errx.Wrap(err)
	}
	err = events.Migrate(ctx, a.primary, schemas.EventPlanning)
	if err != nil {
		return errx.Wrap(err)
	}

	logger.WithContext(ctx).
		With("driver", a.cfg.Database.Driver, "schemas", schemas).
		Info("[app]: schema is up to date")
	return nil
}

// MigrateCommand wraps Migrate for the CLI.
func (a *App) MigrateCommand() ucdef.ManualCommand[struct{}] {
	return ucdef.NewManualCommand("app.migrate", func(ctx context.Context, _ struct{}) error {
		return a.Migrate(ctx)
	})
}

// SeedCommand wraps Seed for the CLI, reporting to out.
func (a *App) SeedCommand(out io.Writer) ucdef.ManualCommand[filestore.FileStore] {
	return ucdef.NewManualCommand("app.seed", func(ctx context.Context, store filestore.FileStore) error {
		_, err := a.Seed(ctx, store, out)
		return err
	})
}

// HTTP returns the HTTP server.
func (a *App) HTTP() *server.HTTPServer {
	return a.srv
}

// Serve runs the HTTP server until ctx is done, then shuts it down.
func (a *App) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("[app]: listening on %s", a.cfg.HTTP.Address())
		errCh <- a.srv.Start()
	}()

	select {
	case err := <-errCh:
		return errx.Wrap(err)
	case <-ctx.Done():
	}

	a.log.Info("[app]: shutting down")
	return errx.Wrap(a.srv.Stop())
}

// Close releases storage connections in reverse opening order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
