package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

// MergeResult reports the outcome of one merge.
type MergeResult struct {
	Added   int
	Skipped int
	Total   int
}

// RecordFromVessel converts a scraped departure into a ledger record. Absent
// text fields become empty strings.
func RecordFromVessel(v model.DepartedVessel) model.ShipmentRecord {
	d := v.Detail
	return model.ShipmentRecord{
		VesselName:         d.Name,
		IMONumber:          d.IMO.OrElse(""),
		MMSI:               d.MMSI.OrElse(""),
		CapacityCBM:        d.CapacityCBM,
		DepartureDate:      v.DepartureDate,
		DestinationPort:    d.DestinationPort.OrElse(""),
		DestinationCountry: d.DestinationCountry.OrElse(""),
		EstimatedArrival:   d.EstimatedArrival.OrElse(""),
		Notes:              v.Notes,
	}
}

// Merge appends the incoming departures that are not already in the ledger.
//
// A departure is a duplicate when its (IMO, departure day) key matches an
// existing row or an earlier departure in the same batch. Departures without
// an IMO number are matched against existing rows that also lack one by
// (vessel name, departure day); within a batch they never match each other.
// Accepted records are written in input order with a single append.
func (l *Ledger) Merge(ctx context.Context, incoming []model.DepartedVessel) (MergeResult, error) {
	view, err := l.Load(ctx)
	if err != nil {
		return MergeResult{}, err
	}

	seen := make(map[model.IdentityKey]bool, len(view.Records)+len(incoming))
	unidentified := make(map[string]bool)
	for _, r := range view.Records {
		if key := r.Key(); key.HasIdentifier() {
			seen[key] = true
		} else {
			unidentified[unidentifiedKey(r)] = true
		}
	}

	rows := make([][]string, 0, len(incoming))
	skipped := 0
	for _, v := range incoming {
		record := RecordFromVessel(v)
		key := record.Key()
		if key.HasIdentifier() {
			if seen[key] {
				l.logger.Debug("skipping duplicate shipment", "vessel", record.VesselName, "key", key.String())
				skipped++
				continue
			}
			seen[key] = true
		} else if unidentified[unidentifiedKey(record)] {
			l.logger.Debug("skipping shipment already awaiting manual completion", "vessel", record.VesselName, "key", key.String())
			skipped++
			continue
		}
		l.logger.Debug("adding shipment", "vessel", record.VesselName, "key", key.String())
		rows = append(rows, view.Schema.Encode(record))
	}

	if len(rows) > 0 {
		if err := l.table.Append(ctx, rows); err != nil {
			return MergeResult{}, fmt.Errorf("failed to append %d shipments: %w", len(rows), err)
		}
	}

	result := MergeResult{
		Added:   len(rows),
		Skipped: skipped,
		Total:   len(view.Records) + len(rows),
	}
	l.logger.Info("merged departures into ledger",
		"added", result.Added,
		"skipped", result.Skipped,
		"total", result.Total)
	return result, nil
}

// unidentifiedKey stands in for the identity key of a record without an IMO
// number: its normalized vessel name plus the departure day.
func unidentifiedKey(r model.ShipmentRecord) string {
	return strings.ToLower(model.NormalizeName(r.VesselName)) + ":" + r.Key().Day
}
