// Package preflight provides readiness checks for the external tools and
// the oracle endpoint that an alignment run depends on. The CLI "lectern
// preflight" command runs them all so a missing binary or bad API key is
// caught before hours of source material are extracted.
package preflight
