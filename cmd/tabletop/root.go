package main

import (
	"io"

	"github.com/code19m/errx"
	"github.com/spf13/cobra"

	"github.com/rise-and-shine/tabletop/cfgloader"
	"github.com/rise-and-shine/tabletop/internal/app"
	"github.com/rise-and-shine/tabletop/observability/logger"
)

type rootOptions struct {
	configDir string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "tabletop",
		Short:         "D&D catalog and game session planning service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", "./config",
		"Directory holding ${ENVIRONMENT}.yaml")

	cmd.AddCommand(
		newServeCmd(&opts),
		newMigrateCmd(&opts),
		newSeedCmd(&opts),
		newTokenCmd(&opts),
	)
	return cmd
}

// load reads the config. Unless silent, the masked config is printed to out.
func (o *rootOptions) load(out io.Writer, silent bool) (app.Config, error) {
	loadOpts := []cfgloader.Option{cfgloader.WithConfigDir(o.configDir), cfgloader.WithOutput(out)}
	if silent {
		loadOpts = append(loadOpts, cfgloader.WithSilent())
	}
	return cfgloader.Load[app.Config](loadOpts...)
}

// open loads the config, sets up logging and composes the service.
func (o *rootOptions) open(cmd *cobra.Command) (*app.App, app.Config, error) {
	cfg, err := o.load(cmd.ErrOrStderr(), false)
	if err != nil {
		return nil, cfg, err
	}

	logger.SetGlobal(cfg.Logger)
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, cfg, errx.Wrap(err)
	}

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return nil, cfg, errx.Wrap(err)
	}
	return a, cfg, nil
}
