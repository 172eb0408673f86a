package model

import "time"

// RunRecord summarises one scrape-merge-arrivals cycle for the local run log.
type RunRecord struct {
	StartedAt       time.Time
	FinishedAt      time.Time
	ID              string
	Ledger          string
	Error           string
	Found           int
	Added           int
	Skipped         int
	Total           int
	ManualEntry     int
	ArrivalsChecked int
	ArrivalsUpdated int
	ArrivalsFlagged int
	ArrivalsFailed  int
	DryRun          bool
}

// Duration is how long the run took.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the run completed without a fatal error.
func (r RunRecord) Succeeded() bool {
	return r.Error == ""
}
