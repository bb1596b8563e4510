// Package services defines shared utilities consumed by the alignment
// pipeline components and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and pipeline phases for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     (missing inputs, extraction, oracle, configuration) consistently.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across components.
package services
