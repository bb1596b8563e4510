// Package logging assembles structured slog loggers and formatting helpers
// used across lectern components.
//
// It owns the console/JSON handler selection, centralizes level plumbing, and
// exposes context-aware helpers so pipeline code can automatically tag log
// lines with run identifiers and phase names. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape as the rest of the system.
package logging
