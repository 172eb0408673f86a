package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/lng-shipment-tracker/internal/cli"
	"github.com/Veraticus/lng-shipment-tracker/internal/ledger"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default header to an empty ledger",
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

			message, err := initLedger(ctx, ledger.New(env.table, nil))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

func initLedger(ctx context.Context, l *ledger.Ledger) (string, error) {
	created, err := l.Init(ctx)
	if err != nil {
		return "", err
	}
	if !created {
		return cli.FormatInfo("Ledger already has a header; nothing to do"), nil
	}
	return cli.FormatSuccess("Ledger initialized with the default header"), nil
}
