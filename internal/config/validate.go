package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. The oracle API key is not
// required here so that config and preflight commands work before credentials
// are set; the align run checks it before contacting the oracle.
func (c *Config) Validate() error {
	if err := c.validateOracle(); err != nil {
		return err
	}
	if err := c.validateSampling(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOracle() error {
	if strings.TrimSpace(c.Oracle.BaseURL) == "" {
		return errors.New("oracle.base_url must be set")
	}
	if strings.TrimSpace(c.Oracle.Model) == "" {
		return errors.New("oracle.model must be set")
	}
	if c.Oracle.TimeoutSeconds <= 0 {
		return errors.New("oracle.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSampling() error {
	return ensurePositiveMap(map[string]int{
		"sampling.max_frames":           c.Sampling.MaxFrames,
		"sampling.min_interval_seconds": c.Sampling.MinIntervalSeconds,
	})
}

func (c *Config) validateRender() error {
	if c.Render.Scale <= 0 {
		return errors.New("render.scale must be positive")
	}
	if c.Render.JPEGQuality < 1 || c.Render.JPEGQuality > 100 {
		return errors.New("render.jpeg_quality must be between 1 and 100")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
