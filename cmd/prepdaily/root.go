package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "prepdaily",
		Short:         "Daily prep tracker: recurring tasks, day plans and spaced review",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newIndexesCmd(), newResolveCmd())
	return root
}
