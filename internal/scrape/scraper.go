// Package scrape extracts departed LNG tankers from VesselFinder port and
// vessel pages.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

// Notes written to the ledger for vessels that need manual completion.
const (
	NoteNoIdentifier  = "needs manual completion: no IMO found on detail page"
	NoteDetailMissing = "needs manual completion: detail page unavailable"
)

const (
	defaultBaseURL     = "https://www.vesselfinder.com"
	defaultPortCode    = "CAKTM001"
	defaultRequestGap  = 2 * time.Second
	defaultListingWait = 15 * time.Second
	defaultDetailWait  = 10 * time.Second
)

// Config holds the scraping settings for the single tracked port.
type Config struct {
	Location       *time.Location
	BaseURL        string
	PortCode       string
	UserAgent      string
	RequestDelay   time.Duration
	ListingTimeout time.Duration
	DetailTimeout  time.Duration
	ListingRetries int
}

// DefaultConfig returns the Kitimat defaults.
func DefaultConfig() Config {
	return Config{
		Location:       time.UTC,
		BaseURL:        defaultBaseURL,
		PortCode:       defaultPortCode,
		UserAgent:      DefaultUserAgent,
		RequestDelay:   defaultRequestGap,
		ListingTimeout: defaultListingWait,
		DetailTimeout:  defaultDetailWait,
		ListingRetries: 3,
	}
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: scrape base url is required", common.ErrMissingConfig)
	}
	if c.PortCode == "" {
		return fmt.Errorf("%w: port code is required", common.ErrMissingConfig)
	}
	if c.RequestDelay < 0 || c.ListingTimeout < 0 || c.DetailTimeout < 0 {
		return fmt.Errorf("%w: delays and timeouts cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

// ListingURL is the port page listing in-port, arriving and departed vessels.
func (c Config) ListingURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/ports/" + c.PortCode
}

// DetailURLForIMO is the vessel page addressed by IMO number.
func (c Config) DetailURLForIMO(imo string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/vessels/details/" + imo
}

// Progress is called after each detail page has been processed.
type Progress func(done, total int, vessel string)

// Result is the outcome of one listing scrape.
type Result struct {
	Sections    map[model.SectionLabel]int
	Vessels     []model.DepartedVessel
	ManualEntry int
}

// Scraper runs the listing → stubs → details pipeline.
type Scraper struct {
	client *Client
	rows   *RowExtractor
	logger *slog.Logger
	config Config
}

// NewScraper creates a scraper.
func NewScraper(client *Client, config Config, now func() time.Time, logger *slog.Logger) (*Scraper, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	rows, err := NewRowExtractor(config.BaseURL, config.Location, now)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %w", common.ErrInvalidConfig, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		client: client,
		rows:   rows,
		logger: logger,
		config: config,
	}, nil
}

// DepartedVessels scrapes the port listing and enriches each departed LNG
// tanker from its detail page. Only a failure to fetch the listing itself is
// returned as an error; per-vessel failures degrade to basic records.
func (s *Scraper) DepartedVessels(ctx context.Context, progress Progress) (Result, error) {
	stubs, sections, err := s.Departures(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Sections: sections,
		Vessels:  make([]model.DepartedVessel, 0, len(stubs)),
	}

	for i, stub := range stubs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		vessel := s.enrich(ctx, stub)
		if vessel.Detail.NeedsManualEntry() {
			result.ManualEntry++
		}
		result.Vessels = append(result.Vessels, vessel)

		if progress != nil {
			progress(i+1, len(stubs), stub.Name)
		}
	}

	return result, nil
}

// Departures fetches and classifies the listing page and returns the
// departed-vessel stubs with per-section row counts.
func (s *Scraper) Departures(ctx context.Context) ([]model.VesselStub, map[model.SectionLabel]int, error) {
	listingURL := s.config.ListingURL()
	s.logger.Info("scraping port listing", "url", listingURL)

	var rows []ClassifiedRow
	err := common.WithRetry(ctx, func() error {
		page, fetchErr := s.client.Fetch(ctx, listingURL, s.config.ListingTimeout)
		if fetchErr != nil {
			return fetchErr
		}
		rows = ClassifyRows(page)
		return nil
	}, common.RetryOptions{
		MaxAttempts:  s.config.ListingRetries,
		InitialDelay: s.config.RequestDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch port listing: %w", err)
	}

	sections := make(map[model.SectionLabel]int)
	for _, row := range rows {
		sections[row.Section]++
	}

	stubs := s.rows.Departures(rows)
	s.logger.Info("classified port listing",
		"in_port_rows", sections[model.SectionInPort],
		"arrival_rows", sections[model.SectionArrivals],
		"departure_rows", sections[model.SectionDepartures],
		"unclassified_rows", sections[model.SectionUnclassified],
		"departed_lng_tankers", len(stubs))

	return stubs, sections, nil
}

// enrich fetches one vessel's detail page, falling back to listing data.
func (s *Scraper) enrich(ctx context.Context, stub model.VesselStub) model.DepartedVessel {
	detail, err := s.FetchDetail(ctx, stub)
	vessel := model.DepartedVessel{
		Detail:        detail,
		DepartureDate: stub.DepartureDate,
	}

	switch {
	case errors.Is(err, common.ErrNoIdentifier):
		s.logger.Warn("no IMO on detail page, recording for manual completion", "vessel", stub.Name)
		vessel.Notes = NoteNoIdentifier
	case err != nil:
		s.logger.Warn("could not fetch vessel details, recording basic info",
			"vessel", stub.Name,
			"error", err)
		vessel.Notes = NoteDetailMissing
	default:
		s.logger.Info("fetched vessel details",
			"vessel", detail.Name,
			"imo", detail.IMO.OrElse(""),
			"mmsi", detail.MMSI.OrElse(""))
	}

	return vessel
}

// FetchDetail fetches and extracts a vessel detail page. On fetch failure it
// returns the basic detail built from the stub together with the error; when
// the page has no IMO it returns the partial detail with ErrNoIdentifier.
func (s *Scraper) FetchDetail(ctx context.Context, stub model.VesselStub) (model.VesselDetail, error) {
	if stub.DetailURL == "" {
		return model.BasicDetail(stub), fmt.Errorf("%w: %s has no detail link", common.ErrFetchFailed, stub.Name)
	}

	page, err := s.client.Fetch(ctx, stub.DetailURL, s.config.DetailTimeout)
	if err != nil {
		return model.BasicDetail(stub), err
	}

	detail := ExtractDetail(page, stub)
	if detail.NeedsManualEntry() {
		return detail, common.ErrNoIdentifier
	}
	return detail, nil
}
