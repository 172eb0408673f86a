// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"
	"time"
)

// SectionLabel is the port-listing section a row was found in.
type SectionLabel int

// Section labels, in the order a listing page usually presents them.
const (
	SectionUnclassified SectionLabel = iota
	SectionInPort
	SectionArrivals
	SectionDepartures
)

func (s SectionLabel) String() string {
	switch s {
	case SectionInPort:
		return "in_port"
	case SectionArrivals:
		return "arrivals"
	case SectionDepartures:
		return "departures"
	default:
		return "unclassified"
	}
}

// VesselTypeLNGTanker is the only vessel type this tracker records.
const VesselTypeLNGTanker = "LNG Tanker"

// VesselStub is a minimally parsed vessel reference from the port listing.
type VesselStub struct {
	DepartureDate Optional[time.Time]
	Name          string
	VesselType    string
	DetailURL     string
	Section       SectionLabel
}

// VesselDetail holds the fields extracted from a vessel detail page.
// Any field may be absent when the page layout did not yield it.
type VesselDetail struct {
	Name               string
	VesselType         string
	IMO                Optional[string]
	MMSI               Optional[string]
	CapacityCBM        Optional[int]
	DestinationPort    Optional[string]
	DestinationCountry Optional[string]
	EstimatedArrival   Optional[string]
}

// NeedsManualEntry reports whether the detail lacks an IMO number and must be
// completed by hand in the ledger.
func (d VesselDetail) NeedsManualEntry() bool {
	return !d.IMO.Present()
}

// DepartedVessel is an enriched departure ready to be merged into the ledger.
type DepartedVessel struct {
	DepartureDate Optional[time.Time]
	Notes         string
	Detail        VesselDetail
}

// BasicDetail builds a detail from listing data alone, used when the detail page
// yielded nothing usable.
func BasicDetail(stub VesselStub) VesselDetail {
	return VesselDetail{
		Name:       stub.Name,
		VesselType: stub.VesselType,
	}
}

// NormalizeName trims and collapses internal whitespace in a vessel name.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
