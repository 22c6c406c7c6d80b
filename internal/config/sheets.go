package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/Relton66/budgetapp/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration.
// Precedence: Viper configuration (config file or BUDGETAPP_ env vars),
// then direct GOOGLE_SHEETS_* environment variables.
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.Config{
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}

	if v := viper.GetString("sheets.spreadsheet_id"); v != "" {
		config.SpreadsheetID = v
	}
	if v := viper.GetString("sheets.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("sheets.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("sheets.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("sheets.refresh_token"); v != "" {
		config.RefreshToken = v
	}

	if config.SpreadsheetID == "" {
		config.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}
	if config.ServiceAccountPath == "" {
		config.ServiceAccountPath = ExpandPath(os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT"))
	}
	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
