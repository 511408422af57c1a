package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"prepdaily/calendar"
)

func newResolveCmd() *cobra.Command {
	var userID, date string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print a user's day plan as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			day := calendar.Today(time.Now())
			if date != "" {
				d, err := calendar.ParseDate(date)
				if err != nil {
					return err
				}
				day = d
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			plan, err := a.daily.ResolveDay(ctx, userID, day)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&date, "date", "", "day to resolve, YYYY-MM-DD (default today)")
	return cmd
}
