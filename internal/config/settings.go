package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/ledger"
	"github.com/Veraticus/lng-shipment-tracker/internal/scrape"
	"github.com/spf13/viper"
)

// Ledger backends.
const (
	LedgerSheets = "sheets"
	LedgerSQLite = "sqlite"
)

// Settings are the run-level options outside the scraper and sheets.
type Settings struct {
	Ledger         string
	DatabasePath   string
	LockPath       string
	ArrivalDelay   time.Duration
	MinVoyage      time.Duration
	LockStaleAfter time.Duration
}

// SetDefaults registers the default for every key lngtrack reads.
func SetDefaults() {
	defaults := scrape.DefaultConfig()

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	viper.SetDefault("ledger", LedgerSheets)
	viper.SetDefault("database.path", filepath.Join(DataDir(), "lngtrack.db"))
	viper.SetDefault("lock.path", filepath.Join(DataDir(), "run.lock"))
	viper.SetDefault("lock.stale_after", 6*time.Hour)

	viper.SetDefault("scrape.base_url", defaults.BaseURL)
	viper.SetDefault("scrape.port_code", defaults.PortCode)
	viper.SetDefault("scrape.user_agent", defaults.UserAgent)
	viper.SetDefault("scrape.request_delay", defaults.RequestDelay)
	viper.SetDefault("scrape.listing_timeout", defaults.ListingTimeout)
	viper.SetDefault("scrape.detail_timeout", defaults.DetailTimeout)
	viper.SetDefault("scrape.listing_retries", defaults.ListingRetries)
	viper.SetDefault("scrape.timezone", "UTC")

	viper.SetDefault("arrivals.delay", ledger.DefaultArrivalDelay)
	viper.SetDefault("arrivals.min_voyage", scrape.DefaultMinVoyage)
}

// LoadSettings reads the run-level options.
func LoadSettings() (Settings, error) {
	s := Settings{
		Ledger:         strings.ToLower(strings.TrimSpace(viper.GetString("ledger"))),
		DatabasePath:   ExpandPath(viper.GetString("database.path")),
		LockPath:       ExpandPath(viper.GetString("lock.path")),
		ArrivalDelay:   viper.GetDuration("arrivals.delay"),
		MinVoyage:      viper.GetDuration("arrivals.min_voyage"),
		LockStaleAfter: viper.GetDuration("lock.stale_after"),
	}

	switch s.Ledger {
	case LedgerSheets, LedgerSQLite:
	default:
		return Settings{}, fmt.Errorf("%w: ledger must be %q or %q, got %q",
			common.ErrInvalidConfig, LedgerSheets, LedgerSQLite, s.Ledger)
	}
	if s.DatabasePath == "" {
		return Settings{}, fmt.Errorf("%w: database.path is required", common.ErrMissingConfig)
	}
	if s.ArrivalDelay < 0 || s.MinVoyage < 0 {
		return Settings{}, fmt.Errorf("%w: arrival delay and minimum voyage cannot be negative", common.ErrInvalidConfig)
	}

	return s, nil
}

// LoadScrapeConfig reads the scraper options.
func LoadScrapeConfig() (scrape.Config, error) {
	config := scrape.DefaultConfig()

	if v := viper.GetString("scrape.base_url"); v != "" {
		config.BaseURL = v
	}
	if v := viper.GetString("scrape.port_code"); v != "" {
		config.PortCode = v
	}
	if v := viper.GetString("scrape.user_agent"); v != "" {
		config.UserAgent = v
	}
	if viper.IsSet("scrape.request_delay") {
		config.RequestDelay = viper.GetDuration("scrape.request_delay")
	}
	if viper.IsSet("scrape.listing_timeout") {
		config.ListingTimeout = viper.GetDuration("scrape.listing_timeout")
	}
	if viper.IsSet("scrape.detail_timeout") {
		config.DetailTimeout = viper.GetDuration("scrape.detail_timeout")
	}
	if viper.IsSet("scrape.listing_retries") {
		config.ListingRetries = viper.GetInt("scrape.listing_retries")
	}

	if tz := viper.GetString("scrape.timezone"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return scrape.Config{}, fmt.Errorf("%w: timezone %q: %w", common.ErrInvalidConfig, tz, err)
		}
		config.Location = loc
	}

	if err := config.Validate(); err != nil {
		return scrape.Config{}, err
	}
	return config, nil
}
