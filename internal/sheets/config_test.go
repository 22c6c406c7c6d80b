package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Relton66/budgetapp/internal/common"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "missing spreadsheet id",
			config:  Config{ServiceAccountPath: "/tmp/key.json"},
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "no credentials",
			config:  Config{SpreadsheetID: "abc123"},
			wantErr: common.ErrMissingConfig,
		},
		{
			name: "service account only",
			config: Config{
				SpreadsheetID:      "abc123",
				ServiceAccountPath: "/tmp/key.json",
			},
		},
		{
			name: "oauth only",
			config: Config{
				SpreadsheetID: "abc123",
				ClientID:      "id",
				ClientSecret:  "secret",
				RefreshToken:  "token",
			},
		},
		{
			name: "partial oauth",
			config: Config{
				SpreadsheetID: "abc123",
				ClientID:      "id",
			},
			wantErr: common.ErrMissingConfig,
		},
		{
			name: "both credential types",
			config: Config{
				SpreadsheetID:      "abc123",
				ServiceAccountPath: "/tmp/key.json",
				ClientID:           "id",
				ClientSecret:       "secret",
				RefreshToken:       "token",
			},
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
