package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/lng-shipment-tracker/internal/cli"
	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/ledger"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger as CSV for the dashboard",
		Long: `Export every ledger row as CSV. Columns follow the ledger's own header
order, so the file matches what the dashboard reads from the sheet.`,
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

			snap, err := env.table.Read(ctx)
			if err != nil {
				return fmt.Errorf("failed to read ledger: %w", err)
			}

			if output == "" || output == "-" {
				return writeCSV(cmd.OutOrStdout(), snap)
			}

			f, err := os.Create(output) // #nosec G304
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := writeCSV(f, snap); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", output, err)
			}

			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Exported %d shipments to %s", len(snap.Rows), output)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

// writeCSV writes the header and every row, padding short rows to the header
// width.
func writeCSV(w io.Writer, snap ledger.Snapshot) error {
	if len(snap.Header) == 0 {
		return fmt.Errorf("cannot export: %w", common.ErrNoHeader)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(snap.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range snap.Rows {
		record := make([]string, len(snap.Header))
		copy(record, row)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
