package googlesheets

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents configuration specific to the Google Sheets store.
type Config struct {
	// SpreadsheetID identifies the spreadsheet whose tabs act as tables.
	SpreadsheetID string `yaml:"spreadsheet_id"`

	// CredentialsFile is the path to a service account JSON key. Empty
	// falls back to GOOGLE_APPLICATION_CREDENTIALS and then Application
	// Default Credentials.
	CredentialsFile string `yaml:"credentials_file"`

	// QPS throttles calls to the Sheets API on the client side. Zero
	// disables throttling. The Sheets API enforces per-minute quotas;
	// a QPS around 1 keeps a chatty caller under the default quota.
	QPS float64 `yaml:"qps"`
}

// LoadConfig reads a Config from a YAML file. SHEETORM_SPREADSHEET_ID
// overrides the spreadsheet from the environment.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if v := os.Getenv("SHEETORM_SPREADSHEET_ID"); v != "" {
		cfg.SpreadsheetID = v
	}
	return &cfg, nil
}
