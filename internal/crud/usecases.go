package crud

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/meta"
	"github.com/rise-and-shine/tabletop/pagination"
	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/sorter"
	"github.com/rise-and-shine/tabletop/ucdef"
)

const (
	CodeInvalidID      = "INVALID_ID"
	CodeMissingActor   = "MISSING_ACTOR"
	CodeInvalidPayload = "INVALID_PAYLOAD"
)

// auditColumns may never be set by a caller.
var auditColumns = []string{"created_at", "created_by", "updated_at", "updated_by"} //nolint:gochecknoglobals // fixed list

// IDRequest addresses one entity by its :id route param.
type IDRequest struct {
	ID string `params:"id" json:"id" validate:"required"`
}

// QueryParams are the non-filter parameters of the query endpoint.
type QueryParams struct {
	Offset  int    `query:"offset"   json:"offset"   validate:"gte=0"`
	Limit   *int   `query:"limit"    json:"limit"    validate:"omitempty,gte=0"`
	OrderBy string `query:"order_by" json:"order_by"`
	Exact   bool   `query:"exact"    json:"exact"`
}

var reservedQueryKeys = []string{"offset", "limit", "order_by", "exact"} //nolint:gochecknoglobals // fixed list

// QueryRequest is the decoded query endpoint input.
type QueryRequest[F any] struct {
	Params  QueryParams
	Filters F
}

// UpdateRequest carries a partial update: only the keys present in Patch change.
type UpdateRequest struct {
	ID    string                     `json:"id" validate:"required"`
	Patch map[string]json.RawMessage `json:"patch"`
}

// DeleteResponse echoes the id of the removed entity.
type DeleteResponse[K comparable] struct {
	ID K `json:"id"`
}

// BulkRequest is an uploaded file already split into rows.
type BulkRequest struct {
	Filename string          `json:"filename"`
	Rows     []bulkload.Row `json:"-"`
}

// ReadMulti lists one unfiltered page ordered by id.
func (r *Resource[U, E, K, F, C, PC]) ReadMulti() ucdef.UserAction[*pagination.Request, []E] {
	return ucdef.NewUserAction(r.cfg.Name+".read_multi", func(ctx context.Context, in *pagination.Request) ([]E, error) {
		offset, limit := in.Window(r.cfg.Paging...)

		var items []E
		err := r.cfg.Read.Do(ctx, func(ctx context.Context, u U) error {
			var err error
			items, err = r.cfg.Repo(u).ReadMulti(ctx, offset, limit)
			return err
		})
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return items, nil
	})
}

// Query lists the entities matching the request filters together with the total match count.
func (r *Resource[U, E, K, F, C, PC]) Query() ucdef.UserAction[*QueryRequest[F], *pagination.ListResponse[E]] {
	return ucdef.NewUserAction(r.cfg.Name+".query", func(ctx context.Context, in *QueryRequest[F]) (*pagination.ListResponse[E], error) {
		orderBy, err := sorter.Parse(in.Params.OrderBy)
		if err != nil {
			return nil, errx.Wrap(err)
		}

		offset, limit := pagination.Request{Offset: in.Params.Offset, Limit: in.Params.Limit}.Window(r.cfg.Paging...)
		filters := repogen.FilterMapFromStruct(&in.Filters)

		var (
			items []E
			total int
		)
		err = r.cfg.Read.Do(ctx, func(ctx context.Context, u U) error {
			var err error
			items, total, err = r.cfg.Repo(u).Query(ctx, filters, repogen.QueryOpts{
				Offset:  offset,
				Limit:   limit,
				Exact:   in.Params.Exact,
				OrderBy: orderBy,
			})
			return err
		})
		if err != nil {
			return nil, errx.Wrap(err)
		}

		resp := pagination.NewListResponse(items, total, offset, limit, filters.Echo())
		return &resp, nil
	})
}

// ReadByID returns one entity or a not found error.
func (r *Resource[U, E, K, F, C, PC]) ReadByID() ucdef.UserAction[*IDRequest, *E] {
	return ucdef.NewUserAction(r.cfg.Name+".read_by_id", func(ctx context.Context, in *IDRequest) (*E, error) {
		id, err := r.parseID(in.ID)
		if err != nil {
			return nil, err
		}

		var entity *E
		err = r.cfg.Read.Do(ctx, func(ctx context.Context, u U) error {
			var err error
			entity, err = r.cfg.Repo(u).ReadByID(ctx, id)
			return err
		})
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return entity, nil
	})
}

// Create stores a new entity stamped with the caller and returns it.
func (r *Resource[U, E, K, F, C, PC]) Create() ucdef.UserAction[*C, *E] {
	return ucdef.NewUserAction(r.cfg.Name+".create", func(ctx context.Context, in *C) (*E, error) {
		actor, err := actorOf(ctx)
		if err != nil {
			return nil, err
		}

		candidate := PC(in)
		candidate.Stamp(actor, r.now().UTC())

		var entity *E
		err = r.cfg.Write.Do(ctx, func(ctx context.Context, u U) error {
			var err error
			entity, err = r.cfg.Repo(u).Create(ctx, candidate, true)
			return err
		})
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return entity, nil
	})
}

// Update applies a partial update. Audit columns in the patch are ignored and
// the caller is recorded as the last updater.
func (r *Resource[U, E, K, F, C, PC]) Update() ucdef.UserAction[*UpdateRequest, *E] {
	return ucdef.NewUserAction(r.cfg.Name+".update", func(ctx context.Context, in *UpdateRequest) (*E, error) {
		actor, err := actorOf(ctx)
		if err != nil {
			return nil, err
		}
		id, err := r.parseID(in.ID)
		if err != nil {
			return nil, err
		}

		patch := make(map[string]json.RawMessage, len(in.Patch)+1)
		for k, v := range in.Patch {
			patch[k] = v
		}
		for _, col := range auditColumns {
			delete(patch, col)
		}
		updatedBy, err := json.Marshal(actor)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		patch["updated_by"] = updatedBy

		var entity *E
		err = r.cfg.Write.Do(ctx, func(ctx context.Context, u U) error {
			repo := r.cfg.Repo(u)
			existing, err := repo.ReadByID(ctx, id)
			if err != nil {
				return err
			}
			entity, err = repo.Update(ctx, existing, patch)
			return err
		})
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return entity, nil
	})
}

// Delete removes one entity. A missing entity is a not found error.
func (r *Resource[U, E, K, F, C, PC]) Delete() ucdef.UserAction[*IDRequest, *DeleteResponse[K]] {
	return ucdef.NewUserAction(r.cfg.Name+".delete", func(ctx context.Context, in *IDRequest) (*DeleteResponse[K], error) {
		id, err := r.parseID(in.ID)
		if err != nil {
			return nil, err
		}

		var (
			removed  *K
			notFound string
		)
		err = r.cfg.Write.Do(ctx, func(ctx context.Context, u U) error {
			repo := r.cfg.Repo(u)
			notFound = repo.NotFoundCode()

			var err error
			removed, err = repo.Delete(ctx, id)
			return err
		})
		if err != nil {
			return nil, errx.Wrap(err)
		}

		if removed == nil {
			return nil, errx.New(
				fmt.Sprintf("no %s found with id %v", r.cfg.Entity, id),
				errx.WithCode(notFound),
				errx.WithType(errx.T_NotFound),
				errx.WithDetails(errx.D{"id": in.ID}),
			)
		}
		return &DeleteResponse[K]{ID: *removed}, nil
	})
}

// Bulk reconciles uploaded rows inside one unit of work. The batch is
// committed only when no row failed; the report is returned either way.
// A Bulk set in Config is returned instead.
func (r *Resource[U, E, K, F, C, PC]) Bulk() ucdef.UserAction[*BulkRequest, *bulkload.Report] {
	if r.cfg.Bulk != nil {
		return r.cfg.Bulk
	}
	return ucdef.NewUserAction(r.cfg.Name+".bulk", func(ctx context.Context, in *BulkRequest) (*bulkload.Report, error) {
		actor, err := actorOf(ctx)
		if err != nil {
			return nil, err
		}

		unlock, err := r.cfg.Locker.TryLock(ctx, r.cfg.Name)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		defer unlock()

		report := bulkload.NewReport(in.Filename)
		err = r.cfg.Write.Do(ctx, func(ctx context.Context, u U) error {
			r.rec.Reconcile(ctx, u, r.cfg.Repo(u), in.Rows, actor, report)
			if report.HasErrors() {
				return u.Rollback()
			}
			return nil
		})
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return report, nil
	})
}

func (r *Resource[U, E, K, F, C, PC]) parseID(raw string) (K, error) {
	id, err := r.cfg.ParseID(raw)
	if err != nil {
		return id, errx.New(
			fmt.Sprintf("invalid %s id %q", r.cfg.Entity, raw),
			errx.WithCode(CodeInvalidID),
			errx.WithType(errx.T_Validation),
		)
	}
	return id, nil
}

func actorOf(ctx context.Context) (string, error) {
	id, _, ok := meta.Actor(ctx)
	if !ok {
		return "", errx.New(
			"operation requires an authenticated caller",
			errx.WithCode(CodeMissingActor),
			errx.WithType(errx.T_Authentication),
		)
	}
	return id, nil
}
