package config

import "fmt"

// DataConfig locates the input files of a run.
type DataConfig struct {
	// Profiles is the hourly time-series CSV.
	Profiles string `json:"profiles"`
	// Forecast is the optional storage cost forecast CSV.
	Forecast string `json:"forecast"`
	// Scenarios is an optional YAML catalog replacing the inline scenarios.
	Scenarios string `json:"scenarios"`
}

// SetDefaults applies sane defaults.
func (c *DataConfig) SetDefaults() {
	if c.Profiles == "" {
		c.Profiles = "data/time_series.csv"
	}
}

// Validate checks mandatory fields.
func (c DataConfig) Validate() error {
	if c.Profiles == "" {
		return fmt.Errorf("profiles is required")
	}
	return nil
}

// OutputConfig defines where and how results are written.
type OutputConfig struct {
	Dir string `json:"dir"`
	// Currency labels monetary values in the summary.
	Currency string `json:"currency"`
	// Results and Summary are file names inside Dir.
	Results string `json:"results"`
	Summary string `json:"summary"`
	// Format of the summary: csv or json.
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "results"
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.Results == "" {
		c.Results = "results.csv"
	}
	if c.Format == "" {
		c.Format = "csv"
	}
	if c.Summary == "" {
		c.Summary = "summary." + c.Format
	}
}

// Validate checks mandatory fields.
func (c OutputConfig) Validate() error {
	if c.Format != "csv" && c.Format != "json" {
		return fmt.Errorf("unknown summary format %s", c.Format)
	}
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	return nil
}
