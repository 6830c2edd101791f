package dnd

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/code19m/errx"
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/internal/crud"
	"github.com/rise-and-shine/tabletop/meta"
	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/ucdef"
	"github.com/rise-and-shine/tabletop/uow"
	"github.com/rise-and-shine/tabletop/val"
)

const (
	linkSavepoint = "bulk_link"
	linksLockKey  = "spell-to-class"
)

// LinkRow lists, per spell level, the spells of one source a class can learn.
type LinkRow struct {
	SourceName string              `json:"source_name" validate:"required"`
	ClassName  string              `json:"class_name"  validate:"required"`
	Spells     map[string][]string `json:"spells"`
}

// Linker loads spell-to-class link files.
type Linker struct {
	write  *uow.Factory[Unit]
	locker bulkload.Locker
	now    func() time.Time
}

// NewLinker creates a Linker writing through write.
func NewLinker(write *uow.Factory[Unit], locker bulkload.Locker) *Linker {
	if locker == nil {
		locker = bulkload.NewLocalLocker()
	}
	return &Linker{write: write, locker: locker, now: time.Now}
}

// SetClock replaces the clock audit timestamps are taken from.
func (l *Linker) SetClock(now func() time.Time) {
	l.now = now
}

// Bulk links every listed spell to its class. Unknown sources, classes and
// spells are reported as errors and existing links as warnings. Like the
// entity loaders, the batch is committed only when no row failed.
func (l *Linker) Bulk() ucdef.UserAction[*crud.BulkRequest, *bulkload.Report] {
	return ucdef.NewUserAction("spell_to_class.bulk", func(ctx context.Context, in *crud.BulkRequest) (*bulkload.Report, error) {
		actor, _, ok := meta.Actor(ctx)
		if !ok {
			return nil, errx.New(
				"operation requires an authenticated caller",
				errx.WithCode(crud.CodeMissingActor),
				errx.WithType(errx.T_Authentication),
			)
		}

		unlock, err := l.locker.TryLock(ctx, linksLockKey)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		defer unlock()

		report := bulkload.NewReport(in.Filename)
		batchTime := l.now().UTC()

		err = l.write.Do(ctx, func(ctx context.Context, u Unit) error {
			for _, row := range in.Rows {
				l.linkRow(ctx, u, row, actor, batchTime, report)
			}
			report.UpdateTotals()
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

func (l *Linker) linkRow(ctx context.Context, u Unit, row bulkload.Row, actor string, at time.Time, report *bulkload.Report) {
	var link LinkRow
	label := cast.ToString(row.Values["class_name"])
	fail := func(msg string) {
		report.AddError(fmt.Sprintf("row %d [%s]: %s", row.Index, label, msg))
	}

	raw, err := json.Marshal(row.Values)
	if err == nil {
		err = json.Unmarshal(raw, &link)
	}
	if err != nil {
		fail(val.Summary(err))
		return
	}
	err = val.ValidateSchema(&link)
	if err != nil {
		fail(val.Summary(err))
		return
	}

	source, err := findOne(ctx, u.Sources, repogen.FilterMap{"name": repogen.Scalar(link.SourceName)})
	if err != nil {
		fail(val.Summary(err))
		return
	}
	if source == nil {
		fail(fmt.Sprintf("Source with name '%s' not found!", link.SourceName))
		return
	}

	class, err := findOne(ctx, u.Classes, repogen.FilterMap{"name": repogen.Scalar(link.ClassName)})
	if err != nil {
		fail(val.Summary(err))
		return
	}
	if class == nil {
		fail(fmt.Sprintf("Class with name '%s' not found!", link.ClassName))
		return
	}

	levels := lo.Keys(link.Spells)
	slices.SortFunc(levels, func(a, b string) int { return cast.ToInt(a) - cast.ToInt(b) })

	for _, level := range levels {
		for _, name := range link.Spells[level] {
			spell, err := findOne(ctx, u.Spells, repogen.FilterMap{
				"name":      repogen.Scalar(name),
				"source_id": repogen.Scalar(source.ID),
			})
			if err != nil {
				fail(val.Summary(err))
				continue
			}
			if spell == nil {
				fail(fmt.Sprintf("Spell with name '%s' (level %s) not found in source '%s'!", name, level, source.Name))
				continue
			}

			created, err := l.link(ctx, u, spell, class, source, actor, at)
			switch {
			case err != nil:
				fail(val.Summary(err))
			case created:
				report.AddCreated(fmt.Sprintf("Linked source '%s', class '%s' spell '%s'", source.Name, class.Name, spell.Name))
			default:
				report.AddWarning(fmt.Sprintf("Link source '%s', class '%s' spell '%s' already exists, skipping.", source.Name, class.Name, spell.Name))
			}
		}
	}
}

func (l *Linker) link(ctx context.Context, u Unit, spell *Spell, class *Class, source *Source, actor string, at time.Time) (bool, error) {
	existing, err := findOne(ctx, u.SpellClasses, repogen.FilterMap{
		"spell_id":     repogen.Scalar(spell.ID),
		"dnd_class_id": repogen.Scalar(class.ID),
		"source_id":    repogen.Scalar(source.ID),
	})
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	err = u.Savepoint(ctx, linkSavepoint)
	if err != nil {
		return false, err
	}

	in := &SpellToClassCreate{SpellID: spell.ID, DndClassID: class.ID, SourceID: source.ID}
	in.Stamp(actor, at)

	_, err = u.SpellClasses.Create(ctx, in, false)
	if err != nil {
		_ = u.RollbackTo(ctx, linkSavepoint)
		_ = u.Release(ctx, linkSavepoint)
		return false, err
	}
	return true, u.Release(ctx, linkSavepoint)
}

func findOne[E any, K comparable](ctx context.Context, repo *repogen.Repo[E, K], filters repogen.FilterMap) (*E, error) {
	items, _, err := repo.Query(ctx, filters, repogen.QueryOpts{Limit: 1, Exact: true})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil //nolint:nilnil // absence is not an error here
	}
	return &items[0], nil
}
