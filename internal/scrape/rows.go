package scrape

import (
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/dom"
	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

// RowExtractor turns departure rows into vessel stubs.
type RowExtractor struct {
	base     *url.URL
	location *time.Location
	now      func() time.Time
}

// NewRowExtractor creates an extractor resolving relative links against baseURL.
func NewRowExtractor(baseURL string, loc *time.Location, now func() time.Time) (*RowExtractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &RowExtractor{base: base, location: loc, now: now}, nil
}

// Departures extracts stubs from rows classified as Departures, deduplicated
// by cleaned name with the first occurrence kept.
func (e *RowExtractor) Departures(rows []ClassifiedRow) []model.VesselStub {
	seen := make(map[string]bool)
	stubs := make([]model.VesselStub, 0)

	for _, row := range rows {
		if row.Section != model.SectionDepartures {
			continue
		}
		stub, ok := e.extract(row)
		if !ok || seen[stub.Name] {
			continue
		}
		seen[stub.Name] = true
		stubs = append(stubs, stub)
	}

	return stubs
}

// extract applies the name, type and date rules to a single row.
func (e *RowExtractor) extract(classified ClassifiedRow) (model.VesselStub, bool) {
	row, anchor := classified.Node, classified.Anchor
	if anchor == nil {
		anchor = firstVesselLink(row)
	}
	if anchor == nil {
		return model.VesselStub{}, false
	}

	name := CleanVesselName(anchor.Text())
	if !plausibleName(name) || !isLNGRow(row.Text()) {
		return model.VesselStub{}, false
	}

	href, _ := anchor.Attr("href")
	return model.VesselStub{
		Name:          name,
		VesselType:    model.VesselTypeLNGTanker,
		DetailURL:     e.resolve(href),
		Section:       model.SectionDepartures,
		DepartureDate: e.departureDate(row),
	}, true
}

// departureDate returns the date in the first cell that holds a valid one.
func (e *RowExtractor) departureDate(row dom.Node) model.Optional[time.Time] {
	now := e.now()
	for _, cell := range row.Find("td") {
		if d := ParseListingDate(cell.Text(), now, e.location); d.Present() {
			return d
		}
	}
	return model.None[time.Time]()
}

func (e *RowExtractor) resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return e.base.ResolveReference(ref).String()
}

func firstVesselLink(row dom.Node) dom.Node {
	for _, a := range row.Find("a[href]") {
		if isVesselLink(a) {
			return a
		}
	}
	return nil
}
