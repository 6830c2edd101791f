// Package bulkload reconciles uploaded rows against a repository: each row is
// normalized, validated and checked for an existing entity with the same
// natural key before it is created. Row failures are collected in a Report
// instead of aborting the batch; the caller commits only an error-free batch.
package bulkload

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cast"

	"github.com/rise-and-shine/tabletop/observability/logger"
	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/val"
)

const rowSavepoint = "bulk_row"

// Candidate is a create payload built from one row.
type Candidate[E any] interface {
	repogen.Creatable[E]
	// Stamp sets the audit columns.
	Stamp(actor string, at time.Time)
	// NaturalKey returns the human meaningful unique value used for dedup.
	NaturalKey() string
}

// Target is the repository surface the reconciler writes through.
type Target[E any] interface {
	Query(ctx context.Context, filters repogen.FilterMap, opts repogen.QueryOpts) ([]E, int, error)
	Create(ctx context.Context, in repogen.Creatable[E], returnProjection bool) (*E, error)
}

// Savepointer isolates the statements of one row inside the batch transaction.
type Savepointer interface {
	Savepoint(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error
	Release(ctx context.Context, name string) error
}

// Config describes one bulk loadable entity.
type Config struct {
	// Entity is the display name used in warnings, e.g. "Spell".
	Entity string
	// KeyField is the natural key column, e.g. "name".
	KeyField string
	// Normalize fixes entity specific quirks of a row before decoding. Optional.
	Normalize func(values map[string]any)
}

// Reconciler loads rows into candidates of type C and creates entities of type E.
// Candidate methods are called on *C.
type Reconciler[E any, C any, PC interface {
	*C
	Candidate[E]
}] struct {
	cfg Config
	now func() time.Time
}

// SetClock replaces the clock batch timestamps are taken from.
func (r *Reconciler[E, C, PC]) SetClock(now func() time.Time) {
	r.now = now
}

// New creates a Reconciler.
func New[E any, C any, PC interface {
	*C
	Candidate[E]
}](cfg Config) *Reconciler[E, C, PC] {
	return &Reconciler[E, C, PC]{cfg: cfg, now: time.Now}
}

// Reconcile processes rows in order and records each outcome in report. Every
// row runs inside its own savepoint, so a failed statement leaves the batch
// transaction usable. Totals are updated before returning.
func (r *Reconciler[E, C, PC]) Reconcile(
	ctx context.Context,
	sp Savepointer,
	target Target[E],
	rows []Row,
	actor string,
	report *Report,
) {
	batchTime := r.now().UTC()

	for _, row := range rows {
		r.processRow(ctx, sp, target, row, actor, batchTime, report)
	}

	report.UpdateTotals()

	logger.WithContext(ctx).
		With("entity", r.cfg.Entity, "filename", report.Filename, "totals", report.Totals).
		Infof("[bulkload]: processed %d %s rows", len(rows), r.cfg.Entity)
}

func (r *Reconciler[E, C, PC]) processRow(
	ctx context.Context,
	sp Savepointer,
	target Target[E],
	row Row,
	actor string,
	batchTime time.Time,
	report *Report,
) {
	var key string
	fail := func(err error) {
		label := key
		if label == "" {
			label = cast.ToString(row.Values[r.cfg.KeyField])
		}
		report.AddError(fmt.Sprintf("row %d [%s]: %s", row.Index, label, val.Summary(err)))
	}

	values := normalize(row.Values)
	if r.cfg.Normalize != nil {
		r.cfg.Normalize(values)
	}

	c := PC(new(C))
	err := decodeInto(values, c)
	if err != nil {
		fail(err)
		return
	}

	c.Stamp(actor, batchTime)
	err = val.ValidateSchema(c)
	if err != nil {
		fail(err)
		return
	}
	key = c.NaturalKey()

	err = sp.Savepoint(ctx, rowSavepoint)
	if err != nil {
		fail(err)
		return
	}

	created, err := r.dedupAndCreate(ctx, target, c)
	if err != nil {
		_ = sp.RollbackTo(ctx, rowSavepoint)
		_ = sp.Release(ctx, rowSavepoint)
		fail(err)
		return
	}

	err = sp.Release(ctx, rowSavepoint)
	if err != nil {
		fail(err)
		return
	}

	if created {
		report.AddCreated(key)
	} else {
		report.AddWarning(fmt.Sprintf("%s with %s '%s' already exists, skipping.", r.cfg.Entity, r.cfg.KeyField, key))
	}
}

func (r *Reconciler[E, C, PC]) dedupAndCreate(ctx context.Context, target Target[E], c PC) (bool, error) {
	filters := repogen.FilterMap{r.cfg.KeyField: repogen.Scalar(c.NaturalKey())}
	_, total, err := target.Query(ctx, filters, repogen.QueryOpts{Limit: 1, Exact: true})
	if err != nil {
		return false, err
	}
	if total > 0 {
		return false, nil
	}

	_, err = target.Create(ctx, c, false)
	if err != nil {
		return false, err
	}
	return true, nil
}
