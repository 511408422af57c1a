package main

import (
	"github.com/spf13/cobra"

	"prepdaily/repository"
)

func newIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)
			return repository.SetupIndexes(ctx, a.db, a.collections())
		},
	}
}
