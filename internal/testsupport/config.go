package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"lectern/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config with test defaults: a fake oracle key so the
// pipeline can be constructed without touching the environment. Options
// apply on top.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfgVal := config.Default()
	cfgVal.Oracle.APIKey = "test-key"

	builder := &configBuilder{
		t:       t,
		baseDir: t.TempDir(),
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOracleEndpoint points the oracle at a test server.
func WithOracleEndpoint(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Oracle.BaseURL = baseURL
	}
}

// WithOracleKey sets the oracle API key on the test config.
func WithOracleKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Oracle.APIKey = key
	}
}

// WithSampling overrides the frame cap and interval floor.
func WithSampling(maxFrames, minIntervalSeconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sampling.MaxFrames = maxFrames
		b.cfg.Sampling.MinIntervalSeconds = minIntervalSeconds
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default lectern external
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffprobe", "ffmpeg", "pdfinfo", "pdftoppm"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}
