package main

import (
	"fmt"
	"time"

	"github.com/code19m/errx"
	"github.com/spf13/cobra"

	"github.com/rise-and-shine/tabletop/token"
)

type tokenOptions struct {
	sub      string
	username string
	ttl      time.Duration
}

func newTokenCmd(root *rootOptions) *cobra.Command {
	var opts tokenOptions

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 bearer token for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load(cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			if cfg.Auth.HMACSecret == "" {
				return errx.New("auth.hmac_secret is not configured", errx.WithCode(token.CodeInvalidConfig))
			}

			maker, err := token.NewMaker(cfg.Auth.HMACSecret, cfg.Auth.Issuer)
			if err != nil {
				return errx.Wrap(err)
			}

			signed, _, err := maker.CreateToken(opts.sub, opts.username, opts.ttl)
			if err != nil {
				return errx.Wrap(err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), signed)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.sub, "sub", "", "Subject, the user id (required)")
	cmd.Flags().StringVar(&opts.username, "username", "", "preferred_username claim")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}
