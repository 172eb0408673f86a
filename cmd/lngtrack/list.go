package main

import (
	"fmt"

	"github.com/Veraticus/lng-shipment-tracker/internal/cli"
	"github.com/Veraticus/lng-shipment-tracker/internal/ledger"
	"github.com/Veraticus/lng-shipment-tracker/internal/model"
	"github.com/spf13/cobra"
)

type listFilter struct {
	enRoute bool
	flagged bool
}

func (f listFilter) apply(records []model.ShipmentRecord) []model.ShipmentRecord {
	filtered := make([]model.ShipmentRecord, 0, len(records))
	for _, r := range records {
		if f.enRoute && !r.EnRoute() {
			continue
		}
		if f.flagged && !r.Flagged {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func listCmd() *cobra.Command {
	var filter listFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the shipments in the ledger",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()

			env, err := openEnvironment(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := env.Close(); err == nil {
					err = closeErr
				}
			}()

			records, err := ledger.New(env.table, nil).Records(ctx)
			if err != nil {
				return err
			}

			records = filter.apply(records)
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No shipments match"))
				return nil
			}
			fmt.Fprintln(out, cli.RenderShipments(records))
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d shipments", len(records))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&filter.enRoute, "en-route", false, "only shipments without an actual arrival")
	cmd.Flags().BoolVar(&filter.flagged, "flagged", false, "only shipments flagged for review")

	return cmd
}
