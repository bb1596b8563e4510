// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no lectern-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties (codec, dimensions)
//   - Format: container-level metadata (duration, format name)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
package ffprobe
