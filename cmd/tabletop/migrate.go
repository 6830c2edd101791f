package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schemas and tables that are missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			return a.MigrateCommand().Execute(cmd.Context(), struct{}{})
		},
	}
}
