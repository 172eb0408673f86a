package main

import (
	"fmt"

	"github.com/Veraticus/lng-shipment-tracker/internal/cli"
	"github.com/Veraticus/lng-shipment-tracker/internal/config"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs from the local run log",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()

			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings.DatabasePath)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); err == nil {
					err = closeErr
				}
			}()

			runs, err := store.RecentRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No runs recorded yet"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRuns(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")

	return cmd
}
