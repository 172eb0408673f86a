package model

import (
	"strings"
	"time"
)

// ShipmentRecord is one row of the shipment ledger.
type ShipmentRecord struct {
	DepartureDate      Optional[time.Time]
	ActualArrival      Optional[time.Time]
	CapacityCBM        Optional[int]
	VesselName         string
	IMONumber          string
	MMSI               string
	CERReportedPayload string
	DestinationPort    string
	DestinationCountry string
	EstimatedArrival   string
	Notes              string
	Flagged            bool
}

// EnRoute reports whether the shipment has no recorded arrival yet.
func (r ShipmentRecord) EnRoute() bool {
	return !r.ActualArrival.Present()
}

// Key returns the identity key of the record.
func (r ShipmentRecord) Key() IdentityKey {
	return NewIdentityKey(r.IMONumber, r.DepartureDate)
}

// IdentityKey deduplicates shipments: IMO number plus the calendar day of departure.
type IdentityKey struct {
	IMO string
	Day string
}

// NewIdentityKey builds a key from an IMO and an optional departure time.
// The day is the UTC calendar date, so two departures on the same day at
// different times share a key.
func NewIdentityKey(imo string, departure Optional[time.Time]) IdentityKey {
	key := IdentityKey{IMO: strings.TrimSpace(imo)}
	if t, ok := departure.Get(); ok {
		key.Day = CalendarDay(t)
	}
	return key
}

// CalendarDay formats t as its UTC calendar date.
func CalendarDay(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func (k IdentityKey) String() string {
	return k.IMO + ":" + k.Day
}

// HasIdentifier reports whether the key carries an IMO number. Keys without one
// never match each other.
func (k IdentityKey) HasIdentifier() bool {
	return k.IMO != ""
}

// ArrivalSignal is the result of re-checking one vessel's voyage status.
type ArrivalSignal struct {
	ActualArrival Optional[time.Time]
	HasArrived    bool
	ShouldFlag    bool
	Reason        string
}
