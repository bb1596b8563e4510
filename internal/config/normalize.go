package config

import (
	"os"
	"strings"
)

// normalize fills unset fields with defaults and trims string values. Load
// overlays the file onto Default(), so absent fields already carry defaults;
// explicit out-of-range numbers are left for Validate to reject.
func (c *Config) normalize() {
	c.normalizeOracle()
	c.normalizeLogging()
}

func (c *Config) normalizeOracle() {
	c.Oracle.BaseURL = strings.TrimSpace(c.Oracle.BaseURL)
	if c.Oracle.BaseURL == "" {
		c.Oracle.BaseURL = defaultOracleBaseURL
	}
	c.Oracle.Model = strings.TrimSpace(c.Oracle.Model)
	if c.Oracle.Model == "" {
		c.Oracle.Model = defaultOracleModel
	}
	c.Oracle.Referer = strings.TrimSpace(c.Oracle.Referer)
	c.Oracle.Title = strings.TrimSpace(c.Oracle.Title)
	if c.Oracle.Title == "" {
		c.Oracle.Title = defaultOracleTitle
	}
	c.Oracle.APIKey = strings.TrimSpace(c.Oracle.APIKey)
	if c.Oracle.APIKey == "" {
		if value := strings.TrimSpace(os.Getenv("LECTERN_API_KEY")); value != "" {
			c.Oracle.APIKey = value
		} else if value := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")); value != "" {
			c.Oracle.APIKey = value
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
