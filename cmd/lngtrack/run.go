package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/lng-shipment-tracker/internal/cli"
	"github.com/Veraticus/lng-shipment-tracker/internal/tracker"
	"github.com/spf13/cobra"
)

type runOptions struct {
	skipScrape   bool
	skipArrivals bool
	dryRun       bool
	noProgress   bool
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape departures, update the ledger and check arrivals",
		Long: `Run one tracker cycle:

1. Fetch the port listing and find departed LNG tankers
2. Fetch each vessel's detail page
3. Append shipments the ledger does not have yet
4. Check every en-route shipment for arrival`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCycle(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.skipScrape, "skip-scrape", false, "only check arrivals")
	cmd.Flags().BoolVar(&opts.skipArrivals, "skip-arrivals", false, "only scrape and merge departures")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "work on an in-memory copy of the ledger")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")

	return cmd
}

func arrivalsCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "arrivals",
		Short: "Check en-route shipments for arrival",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.skipScrape = true
			return runCycle(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "work on an in-memory copy of the ledger")

	return cmd
}

func runCycle(cmd *cobra.Command, opts runOptions) (err error) {
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

	runner, err := newRunner(env)
	if err != nil {
		return err
	}

	trackerOpts := tracker.Options{
		SkipScrape:   opts.skipScrape,
		SkipArrivals: opts.skipArrivals,
		DryRun:       opts.dryRun,
	}
	if !opts.noProgress {
		trackerOpts.Progress = cli.DetailProgress(os.Stderr)
	}

	summary, err := runner.Run(ctx, trackerOpts)
	if err != nil {
		return fmt.Errorf("run %s failed: %w", summary.RunID, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSummary(summary))
	return nil
}
