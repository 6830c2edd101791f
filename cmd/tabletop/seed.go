package main

import (
	"github.com/code19m/errx"
	"github.com/spf13/cobra"

	"github.com/rise-and-shine/tabletop/filestore"
	"github.com/rise-and-shine/tabletop/filestore/miniowr"
)

const codeMissingSeedBucket = "MISSING_SEED_BUCKET"

type seedOptions struct {
	dir    string
	bucket bool
}

func newSeedCmd(root *rootOptions) *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Bulk load seed files: sources, classes, spells, spell-to-class links, game systems and sessions",
		Long: `Seed reads <entity>.json or <entity>.csv for every entity, in dependency order,
and loads it through the same reconciler as the bulk upload endpoints. Rows that
already exist are reported as warnings. The command fails when any row errored.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, cfg, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			err = a.MigrateCommand().Execute(ctx, struct{}{})
			if err != nil {
				return err
			}

			var store filestore.FileStore
			switch {
			case opts.bucket:
				if cfg.Seeds.Minio == nil {
					return errx.New("seeds.minio is not configured", errx.WithCode(codeMissingSeedBucket))
				}
				store, err = miniowr.New(*cfg.Seeds.Minio)
				if err != nil {
					return errx.Wrap(err)
				}
			case opts.dir != "":
				store = filestore.NewDir(opts.dir)
			default:
				store = filestore.NewDir(cfg.Seeds.Dir)
			}

			return a.SeedCommand(cmd.OutOrStdout()).Execute(ctx, store)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "Directory with seed files (default: seeds.dir)")
	cmd.Flags().BoolVar(&opts.bucket, "bucket", false, "Read seed files from the seeds.minio bucket")
	cmd.MarkFlagsMutuallyExclusive("dir", "bucket")

	return cmd
}
