// Package sheets exports budget reports to Google Sheets.
package sheets

import (
	"fmt"
	"time"

	"github.com/Relton66/budgetapp/internal/common"
)

// Config holds Google Sheets export configuration.
type Config struct {
	SpreadsheetID      string
	ServiceAccountPath string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	RetryAttempts      int
	RetryDelay         time.Duration
}

// Validate checks that the config carries a spreadsheet target and exactly
// enough credentials to reach it.
func (c Config) Validate() error {
	if c.SpreadsheetID == "" {
		return fmt.Errorf("%w: spreadsheet_id", common.ErrMissingConfig)
	}

	hasServiceAccount := c.ServiceAccountPath != ""
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""

	if !hasServiceAccount && !hasOAuth {
		return fmt.Errorf("%w: need a service account key or OAuth credentials", common.ErrMissingConfig)
	}
	if hasServiceAccount && hasOAuth {
		return fmt.Errorf("%w: configure either a service account or OAuth, not both", common.ErrInvalidConfig)
	}

	return nil
}

// withDefaults fills in retry settings left unset.
func (c Config) withDefaults() Config {
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	return c
}
