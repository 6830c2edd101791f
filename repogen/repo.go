// Package repogen provides a generic bun repository shared by every catalog
// entity, together with the filter engine its list queries are built from and
// the taxonomy storage failures are reported in.
package repogen

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/code19m/errx"
	"github.com/samber/lo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/rise-and-shine/tabletop/sorter"
)

const idColumn = "id"

// Creatable is a validated create payload that knows how to build its entity.
type Creatable[E any] interface {
	NewEntity() *E
}

// QueryOpts controls paging, ordering and matching of Query. Zero Offset and
// Limit mean "everything"; without OrderBy results are ordered by id.
type QueryOpts struct {
	Offset  int
	Limit   int
	Exact   bool
	OrderBy sorter.SortOpts
}

// Repo provides read, filtered query, create, update and delete operations for
// entity E keyed by K. It holds a non-owning handle: bind it to a transaction
// or a database, never keep it past the unit of work that created it.
type Repo[E any, K comparable] struct {
	idb          bun.IDB
	schemaName   string
	entityName   string
	notFoundCode string
}

// Builder is a builder for Repo with sensible defaults.
type Builder[E any, K comparable] struct {
	repo Repo[E, K]
}

// NewBuilder creates a builder for idb with schema "public" and the entity
// name taken from the Go type name.
func NewBuilder[E any, K comparable](idb bun.IDB) *Builder[E, K] {
	name := strings.ToLower(reflect.TypeFor[E]().Name())
	return &Builder[E, K]{repo: Repo[E, K]{
		idb:          idb,
		schemaName:   "public",
		entityName:   name,
		notFoundCode: notFoundCodeFor(name),
	}}
}

// WithSchemaName sets the schema every statement is qualified with.
func (b *Builder[E, K]) WithSchemaName(name string) *Builder[E, K] {
	b.repo.schemaName = name
	return b
}

// WithEntityName sets the name used in messages and the default not-found code.
func (b *Builder[E, K]) WithEntityName(name string) *Builder[E, K] {
	b.repo.entityName = name
	b.repo.notFoundCode = notFoundCodeFor(name)
	return b
}

// WithNotFoundCode sets the error code for missing rows.
func (b *Builder[E, K]) WithNotFoundCode(code string) *Builder[E, K] {
	b.repo.notFoundCode = code
	return b
}

// Build creates the Repo.
func (b *Builder[E, K]) Build() *Repo[E, K] {
	r := b.repo
	return &r
}

// EntityName returns the human readable entity name.
func (r *Repo[E, K]) EntityName() string {
	return r.entityName
}

// NotFoundCode returns the code ReadByID reports missing rows with.
func (r *Repo[E, K]) NotFoundCode() string {
	return r.notFoundCode
}

// ReadByID returns the entity with the given id or a T_NotFound error.
func (r *Repo[E, K]) ReadByID(ctx context.Context, id K) (*E, error) {
	entities := make([]E, 0, 1)
	q := r.selectQuery(&entities).
		Where("?TableAlias.? = ?", bun.Ident(idColumn), id).
		OrderExpr("?TableAlias.? ASC", bun.Ident(idColumn)).
		Limit(1)

	err := q.Scan(ctx)
	if err != nil {
		return nil, Classify(err, "read", r.entityName, q)
	}

	if len(entities) == 0 {
		return nil, errx.New(
			fmt.Sprintf("no %s found with id %v", r.entityName, id),
			errx.WithCode(r.notFoundCode),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"id": id}),
		)
	}

	return &entities[0], nil
}

// ReadMulti returns one unfiltered page ordered by id. A zero limit returns every row.
func (r *Repo[E, K]) ReadMulti(ctx context.Context, offset, limit int) ([]E, error) {
	entities := make([]E, 0)
	q := r.selectQuery(&entities).OrderExpr("?TableAlias.? ASC", bun.Ident(idColumn))
	q = window(q, offset, limit)

	err := q.Scan(ctx)
	if err != nil {
		return nil, Classify(err, "read", r.entityName, q)
	}

	return entities, nil
}

// Query returns the entities matching filters and the number of matches before paging.
// The count is a separate statement run only when a page window is requested;
// otherwise it is the length of the result.
func (r *Repo[E, K]) Query(ctx context.Context, filters FilterMap, opts QueryOpts) ([]E, int, error) {
	entities := make([]E, 0)
	q := r.selectQuery(&entities)
	table := tableOf(q)

	q, err := applyFilters(q, table, r.entityName, filters, opts.Exact)
	if err != nil {
		return nil, 0, err
	}

	q, err = r.applyOrder(q, table, opts.OrderBy)
	if err != nil {
		return nil, 0, err
	}

	total := -1
	if opts.Offset != 0 || opts.Limit != 0 {
		total, err = q.Count(ctx)
		if err != nil {
			return nil, 0, Classify(err, "count", r.entityName, q)
		}
	}

	q = window(q, opts.Offset, opts.Limit)
	err = q.Scan(ctx)
	if err != nil {
		return nil, 0, Classify(err, "query", r.entityName, q)
	}

	if total < 0 {
		total = len(entities)
	}

	return entities, total, nil
}

// Create inserts the entity built from in. With returnProjection the stored
// row, generated columns included, is returned; relations are never loaded.
// Without it nothing is read back and the result is nil.
func (r *Repo[E, K]) Create(ctx context.Context, in Creatable[E], returnProjection bool) (*E, error) {
	entity := in.NewEntity()

	q := r.idb.NewInsert().Model(entity)
	q = q.ModelTableExpr(r.tableExpr(tableOf(q)))
	if returnProjection && r.idb.Dialect().Features().Has(feature.InsertReturning) {
		q = q.Returning("*")
	}

	_, err := q.Exec(ctx)
	if err != nil {
		return nil, Classify(err, "create", r.entityName, q)
	}

	if !returnProjection {
		return nil, nil //nolint:nilnil // nothing is read back by request
	}
	return entity, nil
}

// Update overlays patch onto existing and stores it. Only keys that are both
// columns of the entity and present in patch change; absent keys are left
// untouched, explicit nulls clear the field. Primary key columns are ignored.
func (r *Repo[E, K]) Update(ctx context.Context, existing *E, patch map[string]json.RawMessage) (*E, error) {
	q := r.idb.NewUpdate().Model(existing)
	table := tableOf(q)

	overlay := lo.PickBy(patch, func(key string, _ json.RawMessage) bool {
		field, ok := table.FieldMap[key]
		return ok && !field.IsPK
	})

	if len(overlay) > 0 {
		raw, err := json.Marshal(overlay)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		err = json.Unmarshal(raw, existing)
		if err != nil {
			return nil, errx.New(
				fmt.Sprintf("cannot apply update to %s: %s", r.entityName, err.Error()),
				errx.WithCode(CodeInvalidData),
				errx.WithType(errx.T_Validation),
			)
		}
	}

	q = q.ModelTableExpr(r.tableExpr(table)).WherePK()
	_, err := q.Exec(ctx)
	if err != nil {
		return nil, Classify(err, "update", r.entityName, q)
	}

	return existing, nil
}

// Delete removes the entity with the given id and returns the id, or nil when
// no such entity exists.
func (r *Repo[E, K]) Delete(ctx context.Context, id K) (*K, error) {
	q := r.idb.NewDelete().Model((*E)(nil))
	q = q.ModelTableExpr(r.tableExpr(tableOf(q))).
		Where("?TableAlias.? = ?", bun.Ident(idColumn), id)

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, Classify(err, "delete", r.entityName, q)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, Classify(err, "delete", r.entityName, q)
	}
	if affected == 0 {
		return nil, nil //nolint:nilnil // absence is reported as nil, the caller decides
	}

	return &id, nil
}

func (r *Repo[E, K]) selectQuery(dest *[]E) *bun.SelectQuery {
	q := r.idb.NewSelect().Model(dest)
	return q.ModelTableExpr(r.tableExpr(tableOf(q)))
}

func (r *Repo[E, K]) applyOrder(q *bun.SelectQuery, table *schema.Table, opts sorter.SortOpts) (*bun.SelectQuery, error) {
	if len(opts) == 0 {
		return q.OrderExpr("?TableAlias.? ASC", bun.Ident(idColumn)), nil
	}

	for _, o := range opts {
		column := columnOf(o.F)
		if !table.HasField(column) {
			return nil, unknownFieldError(CodeUnknownSortField, "order_by", o.F, r.entityName)
		}
		q = q.OrderExpr("?TableAlias.? "+o.Keyword(), bun.Ident(column))
	}

	return q, nil
}

// tableExpr qualifies the model table with the repository schema.
func (r *Repo[E, K]) tableExpr(table *schema.Table) (string, bun.Ident, bun.Ident, bun.Ident) {
	return "?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias)
}

// window pages q. A non-positive limit means no limit; SQLite only accepts
// OFFSET after a LIMIT, where -1 stands for unlimited.
func window(q *bun.SelectQuery, offset, limit int) *bun.SelectQuery {
	if offset > 0 {
		q = q.Offset(offset)
		if limit <= 0 && q.Dialect().Name() == dialect.SQLite {
			q = q.Limit(-1)
		}
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func tableOf(q bun.Query) *schema.Table {
	return q.GetModel().(bun.TableModel).Table() //nolint:errcheck,forcetypeassert // struct models always have a table
}

func notFoundCodeFor(entity string) string {
	return strings.ToUpper(strings.ReplaceAll(entity, " ", "_")) + "_NOT_FOUND"
}
