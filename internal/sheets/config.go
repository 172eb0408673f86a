// Package sheets stores the shipment ledger in a Google Sheets spreadsheet.
package sheets

import (
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
)

// Config holds the configuration for the Google Sheets ledger.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	// ServiceAccountJSON is the key itself, as deployments that cannot mount
	// files pass it through the environment.
	ServiceAccountJSON string
	SpreadsheetID      string
	// SheetName selects the tab; empty means the first sheet.
	SheetName     string
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// LoadFromEnv fills unset fields from environment variables.
func (c *Config) LoadFromEnv() {
	setFromEnv(&c.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	setFromEnv(&c.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	setFromEnv(&c.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	setFromEnv(&c.ServiceAccountPath, "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")
	setFromEnv(&c.ServiceAccountJSON, "GOOGLE_SERVICE_ACCOUNT_KEY")
	setFromEnv(&c.SpreadsheetID, "GOOGLE_SHEET_ID")
	setFromEnv(&c.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	setFromEnv(&c.SheetName, "GOOGLE_SHEETS_SHEET_NAME")
}

func setFromEnv(field *string, key string) {
	if *field != "" {
		return
	}
	*field = os.Getenv(key)
}

// HasOAuth reports whether complete OAuth2 refresh-token credentials are set.
func (c *Config) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// HasServiceAccount reports whether a service account key is configured.
func (c *Config) HasServiceAccount() bool {
	return c.ServiceAccountPath != "" || c.ServiceAccountJSON != ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" {
		return fmt.Errorf("%w: spreadsheet id (GOOGLE_SHEET_ID) is required", common.ErrMissingConfig)
	}

	hasOAuth := c.HasOAuth()
	hasServiceAccount := c.HasServiceAccount()

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("%w: no authentication method configured", common.ErrMissingConfig)
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}

	if c.ServiceAccountPath != "" && c.ServiceAccountJSON != "" {
		return fmt.Errorf("%w: service account given both as a path and inline", common.ErrInvalidConfig)
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}

	return nil
}
