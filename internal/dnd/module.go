package dnd

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/internal/crud"
	"github.com/rise-and-shine/tabletop/pagination"
	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/uow"
)

// Deps are the collaborators of the catalog.
type Deps struct {
	// Read opens sessions for read endpoints; it may point at a replica.
	Read  uow.Opener
	Write uow.Opener
	// Schema holds the catalog tables.
	Schema string
	Locker bulkload.Locker
	Paging []pagination.Option
}

// Module wires the catalog resources.
type Module struct {
	Sources *crud.Resource[Unit, Source, uuid.UUID, SourceFilters, SourceCreate, *SourceCreate]
	Spells  *crud.Resource[Unit, Spell, uuid.UUID, SpellFilters, SpellCreate, *SpellCreate]
	Classes *crud.Resource[Unit, Class, uuid.UUID, ClassFilters, ClassCreate, *ClassCreate]
	Links   *Linker

	// SpellClasses serves the links one by one; its bulk upload is Links.Bulk.
	SpellClasses *crud.Resource[Unit, SpellToClass, uuid.UUID, SpellToClassFilters, SpellToClassCreate, *SpellToClassCreate]
}

// New creates the catalog module.
func New(d Deps) *Module {
	if d.Locker == nil {
		d.Locker = bulkload.NewLocalLocker()
	}

	bind := Binder(d.Schema)
	read := uow.NewFactory(d.Read, bind)
	write := uow.NewFactory(d.Write, bind)

	links := NewLinker(write, d.Locker)

	return &Module{
		Sources: crud.New[Unit, Source, uuid.UUID, SourceFilters, SourceCreate](crud.Config[Unit, Source, uuid.UUID]{
			Name:     "sources",
			Entity:   "Source",
			KeyField: "name",
			Read:     read,
			Write:    write,
			Repo:     func(u Unit) *repogen.Repo[Source, uuid.UUID] { return u.Sources },
			ParseID:  uuid.Parse,
			Locker:   d.Locker,
			Paging:   d.Paging,
		}),
		Spells: crud.New[Unit, Spell, uuid.UUID, SpellFilters, SpellCreate](crud.Config[Unit, Spell, uuid.UUID]{
			Name:      "spells",
			Entity:    "Spell",
			KeyField:  "name",
			Read:      read,
			Write:     write,
			Repo:      func(u Unit) *repogen.Repo[Spell, uuid.UUID] { return u.Spells },
			ParseID:   uuid.Parse,
			Locker:    d.Locker,
			Normalize: NormalizeSpellRow,
			Paging:    d.Paging,
		}),
		Classes: crud.New[Unit, Class, uuid.UUID, ClassFilters, ClassCreate](crud.Config[Unit, Class, uuid.UUID]{
			Name:     "classes",
			Entity:   "Class",
			KeyField: "name",
			Read:     read,
			Write:    write,
			Repo:     func(u Unit) *repogen.Repo[Class, uuid.UUID] { return u.Classes },
			ParseID:  uuid.Parse,
			Locker:   d.Locker,
			Paging:   d.Paging,
		}),
		Links: links,
		SpellClasses: crud.New[Unit, SpellToClass, uuid.UUID, SpellToClassFilters, SpellToClassCreate](
			crud.Config[Unit, SpellToClass, uuid.UUID]{
				Name:    "spell-to-class",
				Entity:  "Spell to class link",
				Read:    read,
				Write:   write,
				Repo:    func(u Unit) *repogen.Repo[SpellToClass, uuid.UUID] { return u.SpellClasses },
				ParseID: uuid.Parse,
				Locker:  d.Locker,
				Paging:  d.Paging,
				Bulk:    links.Bulk(),
			}),
	}
}

// SetClock replaces the clock of every resource.
func (m *Module) SetClock(now func() time.Time) {
	m.Sources.SetClock(now)
	m.Spells.SetClock(now)
	m.Classes.SetClock(now)
	m.Links.SetClock(now)
	m.SpellClasses.SetClock(now)
}

// Register mounts the catalog routes.
func (m *Module) Register(router fiber.Router) {
	m.Sources.Register(router)
	m.Spells.Register(router)
	m.Classes.Register(router)
	m.SpellClasses.Register(router)
}

// Loaders returns the bulk loaders in the order their files must be seeded.
func (m *Module) Loaders() []crud.Loader {
	return []crud.Loader{
		m.Sources.Loader(),
		m.Classes.Loader(),
		m.Spells.Loader(),
		m.SpellClasses.Loader(),
	}
}
