package transitions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Confidence levels the oracle may assign to a transition.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// Candidate is a single transition as reported by the oracle. Untrusted:
// every field is validated during normalization.
type Candidate struct {
	Timestamp  string `json:"timestamp"`
	DeckID     int    `json:"deckId"`
	PageIndex  int    `json:"pageIndex"`
	Title      string `json:"title"`
	Reasoning  string `json:"reasoning"`
	Confidence string `json:"confidence"`
}

// Event is a validated first-appearance transition. Seconds is derived from
// the timestamp and used for ordering.
type Event struct {
	Timestamp  string `json:"timestamp"`
	Seconds    int    `json:"seconds"`
	DeckID     int    `json:"deckId"`
	PageIndex  int    `json:"pageIndex"`
	Title      string `json:"title"`
	Reasoning  string `json:"reasoning"`
	Confidence string `json:"confidence"`
}

// Report carries the normalized event list plus warnings for every invariant
// violation encountered. Violations never silently discard data: rows that
// cannot be interpreted are excluded and noted, ordering problems keep the
// rows and add a warning.
type Report struct {
	Events   []Event  `json:"events"`
	Warnings []string `json:"warnings,omitempty"`
}

// ParseTimestamp converts an elapsed-time string into whole seconds. The
// canonical format is zero-padded "MM:SS" where minutes may exceed 59;
// "HH:MM:SS" is accepted as well.
func ParseTimestamp(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, errors.New("empty timestamp")
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q: expected MM:SS", value)
	}
	numbers := make([]int, len(parts))
	for i, part := range parts {
		parsed, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, fmt.Errorf("timestamp %q: %w", value, err)
		}
		if parsed < 0 {
			return 0, fmt.Errorf("timestamp %q: negative component", value)
		}
		numbers[i] = parsed
	}
	if len(numbers) == 2 {
		if numbers[1] > 59 {
			return 0, fmt.Errorf("timestamp %q: seconds out of range", value)
		}
		return numbers[0]*60 + numbers[1], nil
	}
	if numbers[1] > 59 || numbers[2] > 59 {
		return 0, fmt.Errorf("timestamp %q: component out of range", value)
	}
	return numbers[0]*3600 + numbers[1]*60 + numbers[2], nil
}

// FormatTimestamp renders elapsed seconds as zero-padded "MM:SS". Minutes are
// computed by integer division and are not hour-aware, so durations of an
// hour or more produce minute values past 59 (65 minutes renders as "65:00").
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
