package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/lng-shipment-tracker/internal/sheets"
	"github.com/spf13/viper"
)

// TokenFile is the path the auth command saves the OAuth token to.
func TokenFile() string {
	if v := viper.GetString("sheets.token_file"); v != "" {
		return ExpandPath(v)
	}
	return filepath.Join(ConfigDir(), "token.json")
}

// LoadSheetsConfig loads Google Sheets configuration with this precedence:
//  1. Viper configuration (config file or LNGTRACK_ env vars)
//  2. Direct environment variables (GOOGLE_SHEET_ID, GOOGLE_SERVICE_ACCOUNT_KEY, GOOGLE_SHEETS_*)
//  3. The refresh token saved by the auth command
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	config.ServiceAccountJSON = viper.GetString("sheets.service_account_json")
	config.ClientID = viper.GetString("sheets.client_id")
	config.ClientSecret = viper.GetString("sheets.client_secret")
	config.RefreshToken = viper.GetString("sheets.refresh_token")
	config.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	config.SheetName = viper.GetString("sheets.sheet_name")
	if viper.IsSet("sheets.retry_attempts") {
		config.RetryAttempts = viper.GetInt("sheets.retry_attempts")
	}
	if viper.IsSet("sheets.retry_delay") {
		config.RetryDelay = viper.GetDuration("sheets.retry_delay")
	}

	config.LoadFromEnv()
	if config.ServiceAccountPath != "" {
		config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)
	}

	if config.RefreshToken == "" && config.ClientID != "" && !config.HasServiceAccount() {
		token, err := sheets.LoadToken(TokenFile())
		switch {
		case err == nil:
			config.RefreshToken = token.RefreshToken
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to load saved token: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
