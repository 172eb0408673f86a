// Package tracker runs one scrape, merge and arrival-check cycle against the
// shipment ledger.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/ledger"
	"github.com/Veraticus/lng-shipment-tracker/internal/model"
	"github.com/Veraticus/lng-shipment-tracker/internal/scrape"
	"github.com/google/uuid"
)

// VesselSource produces the departed vessels of one listing scrape.
type VesselSource interface {
	DepartedVessels(ctx context.Context, progress scrape.Progress) (scrape.Result, error)
}

// RunLog records run summaries.
type RunLog interface {
	SaveRun(ctx context.Context, run model.RunRecord) error
}

// Options select the stages of one run.
type Options struct {
	Progress     scrape.Progress
	SkipScrape   bool
	SkipArrivals bool
	DryRun       bool
}

// Summary reports the outcome of one run.
type Summary struct {
	Sections        map[model.SectionLabel]int
	RunID           string
	Found           int
	Added           int
	Skipped         int
	Total           int
	ManualEntry     int
	ArrivalsChecked int
	ArrivalsUpdated int
	ArrivalsFlagged int
	ArrivalsFailed  int
	Duration        time.Duration
	DryRun          bool
}

// Config wires a Runner.
type Config struct {
	Source         VesselSource
	Table          ledger.Table
	Detector       ledger.ArrivalDetector
	RunLog         RunLog
	Logger         *slog.Logger
	Now            func() time.Time
	LedgerName     string
	LockPath       string
	LockStaleAfter time.Duration
	ArrivalDelay   time.Duration
}

// Runner executes tracker cycles.
type Runner struct {
	source         VesselSource
	table          ledger.Table
	detector       ledger.ArrivalDetector
	runLog         RunLog
	logger         *slog.Logger
	now            func() time.Time
	ledgerName     string
	lockPath       string
	lockStaleAfter time.Duration
	arrivalDelay   time.Duration
}

// NewRunner creates a runner. Only the ledger table is required; a missing
// source or detector disables the matching stage.
func NewRunner(config Config) (*Runner, error) {
	if config.Table == nil {
		return nil, errors.New("tracker requires a ledger table")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.LockStaleAfter == 0 {
		config.LockStaleAfter = DefaultLockStaleAfter
	}
	if config.ArrivalDelay < 0 {
		config.ArrivalDelay = 0
	}

	return &Runner{
		source:         config.Source,
		table:          config.Table,
		detector:       config.Detector,
		runLog:         config.RunLog,
		logger:         config.Logger,
		now:            config.Now,
		ledgerName:     config.LedgerName,
		lockPath:       config.LockPath,
		lockStaleAfter: config.LockStaleAfter,
		arrivalDelay:   config.ArrivalDelay,
	}, nil
}

// Run executes one cycle: scrape the listing, merge new departures into the
// ledger, then check en-route shipments for arrival. Listing, ledger read and
// append failures end the run; per-vessel failures do not. Dry runs work on
// an in-memory copy of the ledger.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	started := r.now()
	summary := Summary{RunID: uuid.NewString(), DryRun: opts.DryRun}
	logger := r.logger.With("run_id", summary.RunID)

	if r.lockPath != "" {
		lock, err := AcquireLock(r.lockPath, r.lockStaleAfter)
		if err != nil {
			return summary, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("failed to release run lock", "error", err)
			}
		}()
	}

	runErr := r.cycle(ctx, opts, &summary, logger)
	summary.Duration = r.now().Sub(started)

	if runErr != nil {
		common.LogError(logger, runErr, "run failed", common.Fields{"duration": summary.Duration})
	} else {
		logger.Info("run completed",
			"found", summary.Found,
			"added", summary.Added,
			"skipped", summary.Skipped,
			"total", summary.Total,
			"arrivals_updated", summary.ArrivalsUpdated,
			"duration", summary.Duration)
	}

	r.record(ctx, started, summary, runErr, logger)
	return summary, runErr
}

func (r *Runner) cycle(ctx context.Context, opts Options, summary *Summary, logger *slog.Logger) error {
	table := r.table
	if opts.DryRun {
		snap, err := table.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read ledger: %w", err)
		}
		table = ledger.NewMemoryTableFrom(snap)
		logger.Info("dry run: changes stay in memory")
	}
	l := ledger.New(table, logger)

	if !opts.SkipScrape && r.source != nil {
		result, err := r.source.DepartedVessels(ctx, opts.Progress)
		if err != nil {
			return fmt.Errorf("scrape failed: %w", err)
		}
		summary.Sections = result.Sections
		summary.Found = len(result.Vessels)
		summary.ManualEntry = result.ManualEntry

		merged, err := l.Merge(ctx, result.Vessels)
		if err != nil {
			return err
		}
		summary.Added = merged.Added
		summary.Skipped = merged.Skipped
		summary.Total = merged.Total
	} else {
		records, err := l.Records(ctx)
		if err != nil {
			return err
		}
		summary.Total = len(records)
	}

	if opts.SkipArrivals || r.detector == nil {
		return nil
	}

	arrivals, err := ledger.NewArrivalTracker(l, r.detector, r.arrivalDelay, logger).Run(ctx)
	summary.ArrivalsChecked = arrivals.Checked
	summary.ArrivalsUpdated = arrivals.Updated
	summary.ArrivalsFlagged = arrivals.Flagged
	summary.ArrivalsFailed = arrivals.Failed
	return err
}

// record saves the run to the run log. Failing to record never fails the run.
func (r *Runner) record(ctx context.Context, started time.Time, summary Summary, runErr error, logger *slog.Logger) {
	if r.runLog == nil {
		return
	}

	run := model.RunRecord{
		ID:              summary.RunID,
		StartedAt:       started,
		FinishedAt:      started.Add(summary.Duration),
		Ledger:          r.ledgerName,
		Found:           summary.Found,
		Added:           summary.Added,
		Skipped:         summary.Skipped,
		Total:           summary.Total,
		ManualEntry:     summary.ManualEntry,
		ArrivalsChecked: summary.ArrivalsChecked,
		ArrivalsUpdated: summary.ArrivalsUpdated,
		ArrivalsFlagged: summary.ArrivalsFlagged,
		ArrivalsFailed:  summary.ArrivalsFailed,
		DryRun:          summary.DryRun,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	// A canceled run is still worth recording.
	if err := r.runLog.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("failed to record run", "error", err)
	}
}
