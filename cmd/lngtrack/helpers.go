package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/config"
	"github.com/Veraticus/lng-shipment-tracker/internal/ledger"
	"github.com/Veraticus/lng-shipment-tracker/internal/scrape"
	"github.com/Veraticus/lng-shipment-tracker/internal/sheets"
	"github.com/Veraticus/lng-shipment-tracker/internal/storage"
	"github.com/Veraticus/lng-shipment-tracker/internal/tracker"
)

// environment is everything a command needs, opened from configuration.
type environment struct {
	store    *storage.SQLiteStorage
	table    ledger.Table
	settings config.Settings
}

func (e *environment) Close() error {
	return e.store.Close()
}

// initStorage opens and migrates the local database.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to run migrations: %w", err), store.Close())
	}

	return store, nil
}

// openEnvironment resolves settings, the local database and the configured
// ledger. Ledger configuration errors surface here, before any fetch.
func openEnvironment(ctx context.Context) (*environment, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, settings.DatabasePath)
	if err != nil {
		return nil, err
	}
	env := &environment{store: store, settings: settings}

	switch settings.Ledger {
	case config.LedgerSQLite:
		env.table = store.Shipments()
	case config.LedgerSheets:
		sheetsConfig, err := config.LoadSheetsConfig()
		if err != nil {
			if errors.Is(err, common.ErrMissingConfig) {
				err = common.NewUserError("Google Sheets ledger is not configured (set GOOGLE_SHEET_ID and credentials, or use --ledger sqlite)", err)
			}
			return nil, errors.Join(err, store.Close())
		}
		table, err := sheets.NewTable(ctx, *sheetsConfig, slog.Default())
		if err != nil {
			return nil, errors.Join(err, store.Close())
		}
		env.table = table
	}

	slog.Debug("ledger opened", "ledger", settings.Ledger, "database", store.Path())
	return env, nil
}

// newRunner wires the scraper, arrival detector and run log around the ledger.
func newRunner(env *environment) (*tracker.Runner, error) {
	scrapeConfig, err := config.LoadScrapeConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	client := scrape.NewClient(
		&http.Client{},
		scrape.NewThrottle(scrapeConfig.RequestDelay),
		scrapeConfig.UserAgent,
		scrapeConfig.BaseURL,
		logger,
	)

	scraper, err := scrape.NewScraper(client, scrapeConfig, time.Now, logger)
	if err != nil {
		return nil, err
	}
	detector := scrape.NewPageArrivalDetector(client, scrapeConfig, nil, env.settings.MinVoyage, time.Now, logger)

	return tracker.NewRunner(tracker.Config{
		Source:         scraper,
		Table:          env.table,
		Detector:       detector,
		RunLog:         env.store,
		Logger:         logger,
		LedgerName:     env.settings.Ledger,
		LockPath:       env.settings.LockPath,
		LockStaleAfter: env.settings.LockStaleAfter,
		ArrivalDelay:   env.settings.ArrivalDelay,
	})
}
