// Package align orchestrates a full alignment run: concurrent extraction of
// deck pages and video frames, evidence assembly, a single oracle call, and
// normalization of the returned candidates into ordered transition events.
package align
