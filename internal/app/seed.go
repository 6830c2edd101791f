package app

import (
	"context"
	"fmt"
	"io"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/filestore"
	"github.com/rise-and-shine/tabletop/internal/crud"
	"github.com/rise-and-shine/tabletop/meta"
)

// SystemActor is recorded as creator of seeded rows.
const SystemActor = "system"

const CodeSeedFailed = "SEED_FAILED"

var seedExtensions = []string{".json", ".csv"} //nolint:gochecknoglobals // lookup order

// Seed bulk loads the seed files of every entity in dependency order. For a
// loader named "spells" it reads spells.json or spells.csv from store; missing
// files are skipped. Per-file totals and row errors are written to out.
func (a *App) Seed(ctx context.Context, store filestore.FileStore, out io.Writer) (bulkload.Totals, error) {
	ctx = meta.WithActor(ctx, SystemActor, SystemActor)

	loaders := append(a.Catalog.Loaders(), a.Events.Loaders()...)

	var grand bulkload.Totals
	for _, l := range loaders {
		report, err := a.seedOne(ctx, store, l)
		if err != nil {
			return grand, err
		}
		if report == nil {
			continue
		}

		grand = grand.Add(report.Totals)
		fmt.Fprintf(out, "%-24s created=%d warnings=%d errors=%d\n",
			report.Filename, report.Totals.Created, report.Totals.Warning, report.Totals.Errored)
		for _, msg := range report.Errors {
			fmt.Fprintf(out, "  %s\n", msg)
		}
	}
	fmt.Fprintf(out, "%-24s created=%d warnings=%d errors=%d\n", "total", grand.Created, grand.Warning, grand.Errored)

	if grand.Errored > 0 {
		return grand, errx.New(
			fmt.Sprintf("%d seed rows failed", grand.Errored),
			errx.WithCode(CodeSeedFailed),
			errx.WithType(errx.T_Validation),
		)
	}
	return grand, nil
}

func (a *App) seedOne(ctx context.Context, store filestore.FileStore, l crud.Loader) (*bulkload.Report, error) {
	for _, ext := range seedExtensions {
		path := l.Name + ext

		ok, err := store.Exists(ctx, path)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		if !ok {
			continue
		}

		f, err := store.Get(ctx, path)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		defer f.Content.Close()

		rows, err := bulkload.Decode(f.Content, f.Info.ContentType, path)
		if err != nil {
			return nil, errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
		}

		report, err := l.Bulk.Execute(ctx, &crud.BulkRequest{Filename: path, Rows: rows})
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return report, nil
	}

	a.log.Infof("[app]: no seed file for %s, skipping", l.Name)
	return nil, nil //nolint:nilnil // nothing to seed
}
