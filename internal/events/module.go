package events

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/http/server/forward"
	"github.com/rise-and-shine/tabletop/http/server/middleware"
	"github.com/rise-and-shine/tabletop/internal/crud"
	"github.com/rise-and-shine/tabletop/pagination"
	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/uow"
)

// Deps are the collaborators of event planning.
type Deps struct {
	// Read opens sessions for read endpoints; it may point at a replica.
	Read  uow.Opener
	Write uow.Opener
	// Schema holds the event planning tables.
	Schema string
	Locker bulkload.Locker
	Paging []pagination.Option
}

// Module wires the event planning resources.
type Module struct {
	GameSystems  *crud.Resource[Unit, GameSystem, uuid.UUID, GameSystemFilters, GameSystemCreate, *GameSystemCreate]
	GameSessions *crud.Resource[Unit, GameSession, uuid.UUID, GameSessionFilters, GameSessionCreate, *GameSessionCreate]
	Players      *Players
}

// New creates the event planning module.
func New(d Deps) *Module {
	if d.Locker == nil {
		d.Locker = bulkload.NewLocalLocker()
	}

	bind := Binder(d.Schema)
	read := uow.NewFactory(d.Read, bind)
	write := uow.NewFactory(d.Write, bind)

	return &Module{
		GameSystems: crud.New[Unit, GameSystem, uuid.UUID, GameSystemFilters, GameSystemCreate](crud.Config[Unit, GameSystem, uuid.UUID]{
			Name:     "game-systems",
			Entity:   "Game System",
			KeyField: "name",
			Read:     read,
			Write:    write,
			Repo:     func(u Unit) *repogen.Repo[GameSystem, uuid.UUID] { return u.GameSystems },
			ParseID:  uuid.Parse,
			Locker:   d.Locker,
			Paging:   d.Paging,
		}),
		GameSessions: crud.New[Unit, GameSession, uuid.UUID, GameSessionFilters, GameSessionCreate](crud.Config[Unit, GameSession, uuid.UUID]{
			Name:     "game-sessions",
			Entity:   "Game Session",
			KeyField: "title",
			Read:     read,
			Write:    write,
			Repo:     func(u Unit) *repogen.Repo[GameSession, uuid.UUID] { return u.GameSessions },
			ParseID:  uuid.Parse,
			Locker:   d.Locker,
			Paging:   d.Paging,
		}),
		Players: NewPlayers(write),
	}
}

// SetClock replaces the clock of every resource.
func (m *Module) SetClock(now func() time.Time) {
	m.GameSystems.SetClock(now)
	m.GameSessions.SetClock(now)
	m.Players.SetClock(now)
}

// Register mounts the event planning routes.
func (m *Module) Register(router fiber.Router) {
	m.GameSystems.Register(router)
	m.GameSessions.Register(router)

	router.Get("/users/me", middleware.RequireActor(), forward.ToUserAction(m.Players.Me()))
	router.Post("/game-sessions/:id/join-session", middleware.RequireActor(), forward.ToUserAction(m.Players.Join()))
	router.Post("/game-sessions/:id/leave-session", middleware.RequireActor(), forward.ToUserAction(m.Players.Leave()))
}

// Loaders returns the bulk loaders in the order their files must be seeded.
func (m *Module) Loaders() []crud.Loader {
	return []crud.Loader{
		m.GameSystems.Loader(),
		m.GameSessions.Loader(),
	}
}
