package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

// DefaultArrivalDelay separates consecutive vessel checks.
const DefaultArrivalDelay = 2 * time.Second

// ArrivalDetector decides whether a shipment has reached its destination.
type ArrivalDetector interface {
	CheckArrival(ctx context.Context, record model.ShipmentRecord) (model.ArrivalSignal, error)
}

// ArrivalDetectorFunc adapts a function to ArrivalDetector.
type ArrivalDetectorFunc func(ctx context.Context, record model.ShipmentRecord) (model.ArrivalSignal, error)

// CheckArrival calls f.
func (f ArrivalDetectorFunc) CheckArrival(ctx context.Context, record model.ShipmentRecord) (model.ArrivalSignal, error) {
	return f(ctx, record)
}

// ArrivalResult counts what one arrival pass did. Failed covers detector
// errors, missing rows and rejected writes.
type ArrivalResult struct {
	Checked int
	Arrived int
	Updated int
	Flagged int
	Failed  int
}

// ArrivalTracker moves en-route shipments to arrived.
type ArrivalTracker struct {
	ledger   *Ledger
	detector ArrivalDetector
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
	delay    time.Duration
}

// NewArrivalTracker creates a tracker that waits delay between vessels.
func NewArrivalTracker(ledger *Ledger, detector ArrivalDetector, delay time.Duration, logger *slog.Logger) *ArrivalTracker {
	if delay < 0 {
		delay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArrivalTracker{
		ledger:   ledger,
		detector: detector,
		logger:   logger,
		sleep:    sleepContext,
		delay:    delay,
	}
}

// Pending returns the records awaiting arrival: no actual arrival yet and a
// known IMO number.
func Pending(records []model.ShipmentRecord) []model.ShipmentRecord {
	pending := make([]model.ShipmentRecord, 0)
	for _, r := range records {
		if r.EnRoute() && r.IMONumber != "" {
			pending = append(pending, r)
		}
	}
	return pending
}

// Run checks every pending shipment once. Per-vessel failures are logged and
// counted; only a failure to read the ledger or cancellation is returned.
func (t *ArrivalTracker) Run(ctx context.Context) (ArrivalResult, error) {
	var result ArrivalResult

	records, err := t.ledger.Records(ctx)
	if err != nil {
		return result, err
	}

	pending := Pending(records)
	t.logger.Info("checking arrivals", "en_route", len(pending))

	for i, record := range pending {
		if i > 0 {
			if err := t.sleep(ctx, t.delay); err != nil {
				return result, err
			}
		}
		result.Checked++

		signal, err := t.detector.CheckArrival(ctx, record)
		if err != nil {
			t.logger.Warn("arrival check failed",
				"vessel", record.VesselName,
				"imo", record.IMONumber,
				"error", err)
			result.Failed++
			continue
		}
		if !signal.HasArrived {
			t.logger.Debug("still en route", "vessel", record.VesselName, "imo", record.IMONumber)
			continue
		}
		result.Arrived++

		flagged, err := t.ledger.UpdateArrival(ctx, record.Key(), signal)
		if err != nil {
			t.logger.Warn("could not record arrival",
				"vessel", record.VesselName,
				"imo", record.IMONumber,
				"error", err)
			result.Failed++
			continue
		}

		result.Updated++
		if flagged {
			result.Flagged++
		}
		t.logger.Info("recorded arrival",
			"vessel", record.VesselName,
			"imo", record.IMONumber,
			"actual_arrival", FormatTimestamp(signal.ActualArrival.OrElse(time.Time{})),
			"flagged", flagged,
			"reason", signal.Reason)
	}

	return result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("arrival check canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
