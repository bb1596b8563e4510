package preflight

import (
	"context"
	"errors"
	"net"
	"time"

	"lectern/internal/config"
	"lectern/internal/services/oracle"
)

// CheckOracle verifies that the alignment oracle is reachable and the key is
// valid. It uses a 30-second timeout and a single attempt.
func CheckOracle(ctx context.Context, settings config.OracleSettings) Result {
	const name = "Alignment oracle"

	if settings.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := oracle.NewClient(oracle.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Referer: settings.Referer,
		Title:   settings.Title,
		Timeout: 30 * time.Second,
	})
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeOracleError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// summarizeOracleError produces a human-readable summary for oracle health
// check failures.
func summarizeOracleError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (oracle API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (oracle API unreachable)"
	}
	return err.Error()
}
