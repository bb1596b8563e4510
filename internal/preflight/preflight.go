package preflight

import (
	"context"

	"lectern/internal/config"
	"lectern/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every readiness check an alignment run depends on: the
// external binaries and the oracle endpoint.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range deps.CheckBinaries(deps.DefaultRequirements()) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if result.Passed {
			result.Detail = "found"
		}
		results = append(results, result)
	}
	results = append(results, CheckOracle(ctx, cfg.GetOracle()))
	return results
}
