package config

const (
	defaultOracleBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultOracleModel          = "google/gemini-3-flash-preview"
	defaultOracleTitle          = "Lectern Slide Alignment"
	defaultOracleTimeoutSeconds = 300
	defaultMaxFrames            = 60
	defaultMinIntervalSeconds   = 5
	defaultRenderScale          = 1.5
	defaultJPEGQuality          = 80
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Oracle: Oracle{
			BaseURL:        defaultOracleBaseURL,
			Model:          defaultOracleModel,
			Title:          defaultOracleTitle,
			TimeoutSeconds: defaultOracleTimeoutSeconds,
		},
		Sampling: Sampling{
			MaxFrames:          defaultMaxFrames,
			MinIntervalSeconds: defaultMinIntervalSeconds,
		},
		Render: Render{
			Scale:       defaultRenderScale,
			JPEGQuality: defaultJPEGQuality,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
