package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/sheets"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var sheetsEnv = []string{
	"GOOGLE_SHEETS_CLIENT_ID",
	"GOOGLE_SHEETS_CLIENT_SECRET",
	"GOOGLE_SHEETS_REFRESH_TOKEN",
	"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
	"GOOGLE_SERVICE_ACCOUNT_KEY",
	"GOOGLE_SHEET_ID",
	"GOOGLE_SHEETS_SPREADSHEET_ID",
	"GOOGLE_SHEETS_SHEET_NAME",
}

func resetConfig(t *testing.T) {
	t.Helper()
	for _, key := range sheetsEnv {
		t.Setenv(key, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LNGTRACK_TEST_DIR", "/srv/ledger")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde", in: "~", want: home},
		{name: "tilde prefix", in: "~/data/x.db", want: filepath.Join(home, "data/x.db")},
		{name: "env var", in: "$LNGTRACK_TEST_DIR/x.db", want: "/srv/ledger/x.db"},
		{name: "absolute", in: "/tmp/x.db", want: "/tmp/x.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	resetConfig(t)

	s, err := LoadSettings()

	require.NoError(t, err)
	assert.Equal(t, LedgerSheets, s.Ledger)
	assert.Equal(t, filepath.Join(DataDir(), "lngtrack.db"), s.DatabasePath)
	assert.Equal(t, 2*time.Second, s.ArrivalDelay)
	assert.Equal(t, 48*time.Hour, s.MinVoyage)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		set     map[string]any
		wantErr error
		name    string
	}{
		{name: "unknown ledger", set: map[string]any{"ledger": "s3"}, wantErr: common.ErrInvalidConfig},
		{name: "negative delay", set: map[string]any{"arrivals.delay": "-1s"}, wantErr: common.ErrInvalidConfig},
		{name: "no database", set: map[string]any{"database.path": ""}, wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetConfig(t)
			for k, v := range tt.set {
				viper.Set(k, v)
			}

			_, err := LoadSettings()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadScrapeConfig(t *testing.T) {
	resetConfig(t)
	viper.Set("scrape.port_code", "CAPRR001")
	viper.Set("scrape.request_delay", "500ms")
	viper.Set("scrape.timezone", "America/Vancouver")

	config, err := LoadScrapeConfig()

	require.NoError(t, err)
	assert.Equal(t, "CAPRR001", config.PortCode)
	assert.Equal(t, 500*time.Millisecond, config.RequestDelay)
	assert.Equal(t, "America/Vancouver", config.Location.String())
	assert.Equal(t, "https://www.vesselfinder.com/ports/CAPRR001", config.ListingURL())
	assert.Equal(t, 15*time.Second, config.ListingTimeout)
}

func TestLoadScrapeConfig_BadTimezone(t *testing.T) {
	resetConfig(t)
	viper.Set("scrape.timezone", "Mars/Olympus")

	_, err := LoadScrapeConfig()

	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadSheetsConfig_ViperBeforeEnv(t *testing.T) {
	resetConfig(t)
	viper.Set("sheets.spreadsheet_id", "from-viper")
	viper.Set("sheets.service_account_path", "/keys/sa.json")
	t.Setenv("GOOGLE_SHEET_ID", "from-env")

	config, err := LoadSheetsConfig()

	require.NoError(t, err)
	assert.Equal(t, "from-viper", config.SpreadsheetID)
	assert.Equal(t, "/keys/sa.json", config.ServiceAccountPath)
}

func TestLoadSheetsConfig_OriginalDeploymentEnv(t *testing.T) {
	resetConfig(t)
	t.Setenv("GOOGLE_SHEET_ID", "sheet-123")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_KEY", `{"type":"service_account"}`)

	config, err := LoadSheetsConfig()

	require.NoError(t, err)
	assert.Equal(t, "sheet-123", config.SpreadsheetID)
	assert.True(t, config.HasServiceAccount())
}

func TestLoadSheetsConfig_SavedToken(t *testing.T) {
	resetConfig(t)
	viper.Set("sheets.spreadsheet_id", "sheet-123")
	viper.Set("sheets.client_id", "client")
	viper.Set("sheets.client_secret", "secret")
	require.NoError(t, sheets.SaveToken(TokenFile(), &oauth2.Token{RefreshToken: "saved-refresh"}))

	config, err := LoadSheetsConfig()

	require.NoError(t, err)
	assert.Equal(t, "saved-refresh", config.RefreshToken)
	assert.True(t, config.HasOAuth())
}

func TestLoadSheetsConfig_MissingID(t *testing.T) {
	resetConfig(t)
	viper.Set("sheets.service_account_path", "/keys/sa.json")

	_, err := LoadSheetsConfig()

	assert.ErrorIs(t, err, common.ErrMissingConfig)
}
