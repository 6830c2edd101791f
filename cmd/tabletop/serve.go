package main

import (
	"os/signal"
	"syscall"

	"github.com/code19m/errx"
	"github.com/spf13/cobra"

	"github.com/rise-and-shine/tabletop/observability/logger"
	"github.com/rise-and-shine/tabletop/observability/tracing"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, cfg, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			defer func() { _ = logger.Sync() }()

			shutdownTracer, err := tracing.InitGlobalTracer(cfg.Tracing)
			if err != nil {
				return errx.Wrap(err)
			}
			defer func() { _ = shutdownTracer() }()

			return a.Serve(ctx)
		},
	}
}
