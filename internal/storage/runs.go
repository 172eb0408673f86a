package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

// SaveRun records a run summary.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run model.RunRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(run.ID, "run.ID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, started_at, finished_at, ledger, found, added, skipped, total,
			manual_entry, arrivals_checked, arrivals_updated, arrivals_flagged,
			arrivals_failed, dry_run, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Ledger,
		run.Found, run.Added, run.Skipped, run.Total, run.ManualEntry,
		run.ArrivalsChecked, run.ArrivalsUpdated, run.ArrivalsFlagged,
		run.ArrivalsFailed, run.DryRun, run.Error)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteStorage) RecentRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, ledger, found, added, skipped, total,
			manual_entry, arrivals_checked, arrivals_updated, arrivals_flagged,
			arrivals_failed, dry_run, error
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.RunRecord
	for rows.Next() {
		var r model.RunRecord
		if err := rows.Scan(
			&r.ID, &r.StartedAt, &r.FinishedAt, &r.Ledger,
			&r.Found, &r.Added, &r.Skipped, &r.Total, &r.ManualEntry,
			&r.ArrivalsChecked, &r.ArrivalsUpdated, &r.ArrivalsFlagged,
			&r.ArrivalsFailed, &r.DryRun, &r.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
