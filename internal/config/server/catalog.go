package server

import "fmt"

// CatalogServerConfig controls dataset identifiers and creation.
type CatalogServerConfig struct {
	IDPrefix      string `mapstructure:"id_prefix"      yaml:"id_prefix"`
	IDWidth       int    `mapstructure:"id_width"       yaml:"id_width"`
	CreateRetries int    `mapstructure:"create_retries" yaml:"create_retries"`
	DraftKey      string `mapstructure:"draft_key"      yaml:"draft_key"`
}

// SearchServerConfig controls how search input is turned into filter runs.
type SearchServerConfig struct {
	Debounce string `mapstructure:"debounce" yaml:"debounce"`
}

func (c CatalogServerConfig) Validate() error {
	if c.IDPrefix == "" {
		return fmt.Errorf("id_prefix must not be empty")
	}
	if c.IDWidth < 1 {
		return fmt.Errorf("id_width must be at least 1, got %d", c.IDWidth)
	}
	if c.CreateRetries < 0 {
		return fmt.Errorf("create_retries must not be negative, got %d", c.CreateRetries)
	}
	return nil
}
