// Package crud exposes catalog entities over HTTP with a shared set of use
// cases: paged listing, filtered query, read, create, partial update, delete
// and bulk upload.
package crud

import (
	"time"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/pagination"
	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/ucdef"
	"github.com/rise-and-shine/tabletop/uow"
)

// Config describes one catalog entity.
type Config[U uow.Session, E any, K comparable] struct {
	// Name is the route segment and operation prefix, e.g. "spells".
	Name string
	// Entity is the display name used in bulk load messages, e.g. "Spell".
	Entity string
	// KeyField is the natural key column bulk loads dedup on.
	KeyField string

	// Read opens units of work for read endpoints; Write for everything else.
	Read  *uow.Factory[U]
	Write *uow.Factory[U]
	// Repo picks the entity repository out of a unit of work.
	Repo func(U) *repogen.Repo[E, K]
	// ParseID converts the :id route param.
	ParseID func(string) (K, error)

	// Locker serializes bulk loads of this entity.
	Locker bulkload.Locker
	// Normalize fixes entity specific row quirks before decoding. Optional.
	Normalize func(values map[string]any)
	// Bulk replaces the reconciler for entities whose upload rows are not
	// create payloads. Optional.
	Bulk ucdef.UserAction[*BulkRequest, *bulkload.Report]

	Paging []pagination.Option
}

// Resource serves entity E stored under key K. F is the filter struct of the
// query endpoint and C the create payload, used for both POST and bulk rows.
type Resource[U uow.Session, E any, K comparable, F any, C any, PC interface {
	*C
	bulkload.Candidate[E]
}] struct {
	cfg        Config[U, E, K]
	rec        *bulkload.Reconciler[E, C, PC]
	filterKeys map[string]struct{}
	now        func() time.Time
}

// New creates a Resource.
func New[U uow.Session, E any, K comparable, F any, C any, PC interface {
	*C
	bulkload.Candidate[E]
}](cfg Config[U, E, K]) *Resource[U, E, K, F, C, PC] {
	if cfg.Locker == nil {
		cfg.Locker = bulkload.NewLocalLocker()
	}

	keys := make(map[string]struct{})
	for _, k := range append(repogen.FilterKeys(new(F)), reservedQueryKeys...) {
		keys[k] = struct{}{}
	}

	return &Resource[U, E, K, F, C, PC]{
		cfg: cfg,
		rec: bulkload.New[E, C, PC](bulkload.Config{
			Entity:    cfg.Entity,
			KeyField:  cfg.KeyField,
			Normalize: cfg.Normalize,
		}),
		filterKeys: keys,
		now:        time.Now,
	}
}

// SetClock replaces the clock used for audit timestamps.
func (r *Resource[U, E, K, F, C, PC]) SetClock(now func() time.Time) {
	r.now = now
	r.rec.SetClock(now)
}

// Name returns the route segment of the resource.
func (r *Resource[U, E, K, F, C, PC]) Name() string {
	return r.cfg.Name
}

// Loader names a bulk load use case, so that loaders of several entities can
// be run in dependency order outside of HTTP.
type Loader struct {
	Name string
	Bulk ucdef.UserAction[*BulkRequest, *bulkload.Report]
}

// Loader returns the bulk load use case of the resource.
func (r *Resource[U, E, K, F, C, PC]) Loader() Loader {
	return Loader{Name: r.cfg.Name, Bulk: r.Bulk()}
}
