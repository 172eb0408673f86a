package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/dom"
	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

// DefaultMinVoyage is the shortest plausible laden voyage out of the port;
// arrivals recorded sooner than this after departure are flagged for review.
const DefaultMinVoyage = 48 * time.Hour

// VoyageStatus is what a vessel detail page currently says about its voyage.
type VoyageStatus struct {
	ETA              model.Optional[time.Time]
	ATA              model.Optional[time.Time]
	Destination      model.Optional[string]
	NavigationStatus model.Optional[string]
}

// ExtractVoyageStatus reads destination, navigation status, ETA and ATA.
func ExtractVoyageStatus(page dom.Node, now time.Time, loc *time.Location) VoyageStatus {
	status := VoyageStatus{Destination: destinationFromLabel(page)}
	status.NavigationStatus = labelValue(page, func(label string) bool {
		l := strings.ToLower(label)
		return l == "navigation status" || l == "status"
	})
	if eta, ok := etaFromBanner(page).Get(); ok {
		status.ETA = ParseVoyageTime(eta, now, loc)
	}
	if ata, ok := bannerValue(page, "ATA:").Get(); ok {
		status.ATA = ParseVoyageTime(ata, now, loc)
	}
	return status
}

// ArrivalPredicate decides whether a voyage has ended. The source page does
// not state this directly, so the rule is replaceable.
type ArrivalPredicate func(status VoyageStatus, record model.ShipmentRecord, now time.Time) bool

// DefaultArrivalPredicate treats a vessel as arrived when it reports an actual
// arrival time, or when it is moored or at anchor and its ETA has passed.
func DefaultArrivalPredicate(status VoyageStatus, _ model.ShipmentRecord, now time.Time) bool {
	if status.ATA.Present() {
		return true
	}
	nav := strings.ToLower(status.NavigationStatus.OrElse(""))
	stopped := strings.Contains(nav, "moored") || strings.Contains(nav, "at anchor")
	if !stopped {
		return false
	}
	eta, ok := status.ETA.Get()
	return ok && !eta.After(now)
}

// PageArrivalDetector re-checks ledger entries against their vessel pages.
type PageArrivalDetector struct {
	client    *Client
	predicate ArrivalPredicate
	now       func() time.Time
	logger    *slog.Logger
	config    Config
	minVoyage time.Duration
}

// NewPageArrivalDetector creates a detector. A nil predicate uses
// DefaultArrivalPredicate.
func NewPageArrivalDetector(client *Client, config Config, predicate ArrivalPredicate, minVoyage time.Duration, now func() time.Time, logger *slog.Logger) *PageArrivalDetector {
	if predicate == nil {
		predicate = DefaultArrivalPredicate
	}
	if minVoyage <= 0 {
		minVoyage = DefaultMinVoyage
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PageArrivalDetector{
		client:    client,
		predicate: predicate,
		now:       now,
		logger:    logger,
		config:    config,
		minVoyage: minVoyage,
	}
}

// CheckArrival fetches the vessel page for the record's IMO and evaluates the
// arrival predicate.
func (d *PageArrivalDetector) CheckArrival(ctx context.Context, record model.ShipmentRecord) (model.ArrivalSignal, error) {
	if record.IMONumber == "" {
		return model.ArrivalSignal{}, fmt.Errorf("cannot check arrival of %q without an IMO number", record.VesselName)
	}

	page, err := d.client.Fetch(ctx, d.config.DetailURLForIMO(record.IMONumber), d.config.DetailTimeout)
	if err != nil {
		return model.ArrivalSignal{}, err
	}

	now := d.now()
	status := ExtractVoyageStatus(page, now, d.config.Location)
	d.logger.Debug("voyage status",
		"vessel", record.VesselName,
		"imo", record.IMONumber,
		"navigation_status", status.NavigationStatus.OrElse(""),
		"destination", status.Destination.OrElse(""))

	if !d.predicate(status, record, now) {
		return model.ArrivalSignal{}, nil
	}

	return Signal(record, arrivalTime(status, now), d.minVoyage), nil
}

// arrivalTime prefers the reported ATA, then a past ETA, then now.
func arrivalTime(status VoyageStatus, now time.Time) time.Time {
	if ata, ok := status.ATA.Get(); ok {
		return ata
	}
	if eta, ok := status.ETA.Get(); ok && !eta.After(now) {
		return eta
	}
	return now
}

// Signal builds an arrival signal, flagging arrivals that precede departure or
// follow it implausibly quickly.
func Signal(record model.ShipmentRecord, arrived time.Time, minVoyage time.Duration) model.ArrivalSignal {
	signal := model.ArrivalSignal{
		HasArrived:    true,
		ActualArrival: model.Some(arrived),
	}

	departed, ok := record.DepartureDate.Get()
	if !ok {
		return signal
	}

	switch voyage := arrived.Sub(departed); {
	case voyage < 0:
		signal.ShouldFlag = true
		signal.Reason = "arrival recorded before departure"
	case voyage < minVoyage:
		signal.ShouldFlag = true
		signal.Reason = fmt.Sprintf("voyage of %s is shorter than %s", voyage.Round(time.Hour), minVoyage)
	}
	return signal
}
