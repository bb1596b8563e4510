package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lectern/internal/config"
)

func TestLoadDefaultConfigUsesEnvKey(t *testing.T) {
	t.Setenv("LECTERN_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Oracle.APIKey != "env-key" {
		t.Fatalf("expected oracle key from env, got %q", cfg.Oracle.APIKey)
	}
	if cfg.Oracle.BaseURL != config.Default().Oracle.BaseURL {
		t.Fatalf("unexpected oracle base url: %q", cfg.Oracle.BaseURL)
	}
	if cfg.Sampling.MaxFrames != 60 {
		t.Fatalf("unexpected max frames default: %d", cfg.Sampling.MaxFrames)
	}
	if cfg.Sampling.MinIntervalSeconds != 5 {
		t.Fatalf("unexpected min interval default: %d", cfg.Sampling.MinIntervalSeconds)
	}
	if cfg.Render.Scale != 1.5 {
		t.Fatalf("unexpected render scale default: %v", cfg.Render.Scale)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format default: %q", cfg.Logging.Format)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lectern.toml")

	type payload struct {
		Oracle struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
			Model   string `toml:"model"`
		} `toml:"oracle"`
		Sampling struct {
			MaxFrames int `toml:"max_frames"`
		} `toml:"sampling"`
	}
	custom := payload{}
	custom.Oracle.APIKey = "abc123"
	custom.Oracle.BaseURL = "https://example.com/llm"
	custom.Oracle.Model = "test/model"
	custom.Sampling.MaxFrames = 12
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Oracle.APIKey != "abc123" {
		t.Fatalf("unexpected api key: %q", cfg.Oracle.APIKey)
	}
	if cfg.Oracle.BaseURL != "https://example.com/llm" {
		t.Fatalf("unexpected base url: %q", cfg.Oracle.BaseURL)
	}
	if cfg.Sampling.MaxFrames != 12 {
		t.Fatalf("unexpected max frames: %d", cfg.Sampling.MaxFrames)
	}
	if cfg.Sampling.MinIntervalSeconds != 5 {
		t.Fatalf("expected defaulted min interval, got %d", cfg.Sampling.MinIntervalSeconds)
	}
}

func TestValidateRejectsBadRender(t *testing.T) {
	cfg := config.Default()
	cfg.Render.JPEGQuality = 250
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "render.jpeg_quality") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsNonPositiveSampling(t *testing.T) {
	cfg := config.Default()
	cfg.Sampling.MaxFrames = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[oracle]") {
		t.Fatalf("expected oracle section in sample, got %q", string(data))
	}
}

func TestGetOracleTrimsValues(t *testing.T) {
	cfg := config.Default()
	cfg.Oracle.APIKey = "  key  "
	cfg.Oracle.Model = " test/model "
	settings := cfg.GetOracle()
	if settings.APIKey != "key" {
		t.Fatalf("expected trimmed api key, got %q", settings.APIKey)
	}
	if settings.Model != "test/model" {
		t.Fatalf("expected trimmed model, got %q", settings.Model)
	}
}
