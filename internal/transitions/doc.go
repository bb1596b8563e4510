// Package transitions defines the transition event model and the normalizer
// that turns raw oracle candidates into a validated, time-ordered report.
package transitions
