package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/model"
	"github.com/Veraticus/lng-shipment-tracker/internal/tracker"
	"github.com/stretchr/testify/assert"
)

func TestRenderSummary(t *testing.T) {
	tests := []struct {
		name     string
		contains []string
		absent   []string
		summary  tracker.Summary
	}{
		{
			name:     "scrape only",
			summary:  tracker.Summary{RunID: "run-1", Found: 3, Added: 1, Skipped: 2, Total: 9},
			contains: []string{"found: 3", "Added: 1", "Skipped (duplicates): 2", "ledger: 9", "run-1"},
			absent:   []string{"Arrivals checked", "dry run", "manual"},
		},
		{
			name: "arrivals and flags",
			summary: tracker.Summary{
				RunID: "run-2", ManualEntry: 1, DryRun: true,
				ArrivalsChecked: 4, ArrivalsUpdated: 2, ArrivalsFlagged: 1, ArrivalsFailed: 1,
			},
			contains: []string{"manual completion: 1", "Arrivals checked: 4", "recorded: 2", "review: 1", "failed: 1", "dry run"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderSummary(tt.summary)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRenderShipments(t *testing.T) {
	records := []model.ShipmentRecord{
		{
			VesselName:      "Arctic Voyager",
			IMONumber:       "9123456",
			DepartureDate:   model.Some(time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)),
			DestinationPort: "Tokyo, Japan",
			ActualArrival:   model.Some(time.Date(2025, 1, 20, 6, 0, 0, 0, time.UTC)),
			Flagged:         true,
		},
		{VesselName: "Unnamed Tanker"},
	}

	out := RenderShipments(records)

	assert.Contains(t, out, "Vessel")
	assert.Contains(t, out, "Arctic Voyager")
	assert.Contains(t, out, "2025-01-10")
	assert.Contains(t, out, "2025-01-20T06:00:00Z")
	assert.Contains(t, out, FlagIcon)
	assert.Contains(t, out, "Unnamed Tanker")
}

func TestRenderRuns(t *testing.T) {
	start := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	runs := []model.RunRecord{
		{ID: "a", StartedAt: start, FinishedAt: start.Add(time.Minute), Ledger: "sheets", Found: 2, Added: 1, ArrivalsChecked: 3, ArrivalsUpdated: 1},
		{ID: "b", StartedAt: start, FinishedAt: start, Ledger: "sqlite", DryRun: true, Error: errors.New("listing fetch failed").Error()},
	}

	out := RenderRuns(runs)

	assert.Contains(t, out, "1/3")
	assert.Contains(t, out, "1m0s")
	assert.Contains(t, out, "sqlite (dry)")
	assert.Contains(t, out, "listing fetch failed")
}

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("done"), SuccessIcon)
	assert.Contains(t, FormatError("bad"), ErrorIcon)
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatTitle("Ledger"), ShipIcon)
	assert.Contains(t, RenderBox("Title", "body"), "body")
}
