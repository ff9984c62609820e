package excel

import "fmt"

// Config represents configuration specific to the Excel store.
type Config struct {
	// FilePath is the .xlsx workbook holding the tables, one per sheet.
	// The file is created on the first CreateTable if it does not exist.
	FilePath string `yaml:"file_path"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("file path is required")
	}
	return nil
}
