package transitions

import (
	"fmt"
	"sort"
	"strings"
)

// Normalize validates oracle candidates against the known deck sizes and
// produces the ordered event list. Rows with an unparseable timestamp, an
// unknown deck, or an out-of-range page are excluded and flagged. Repeated
// sightings of the same page keep only the earliest. Ordering invariants are
// checked after sorting; violations keep the data and add a warning.
func Normalize(candidates []Candidate, deck1Pages, deck2Pages int) Report {
	var report Report
	events := make([]Event, 0, len(candidates))
	for i, candidate := range candidates {
		seconds, err := ParseTimestamp(candidate.Timestamp)
		if err != nil {
			report.warnf("candidate %d dropped: %v", i+1, err)
			continue
		}
		if candidate.DeckID != 1 && candidate.DeckID != 2 {
			report.warnf("candidate %d dropped: deck %d is not a known deck", i+1, candidate.DeckID)
			continue
		}
		pageCount := deck1Pages
		if candidate.DeckID == 2 {
			pageCount = deck2Pages
		}
		if candidate.PageIndex < 1 || candidate.PageIndex > pageCount {
			report.warnf("candidate %d dropped: page %d outside deck %d range 1-%d", i+1, candidate.PageIndex, candidate.DeckID, pageCount)
			continue
		}
		confidence, known := canonicalConfidence(candidate.Confidence)
		if !known {
			report.warnf("candidate %d: unrecognized confidence %q", i+1, candidate.Confidence)
		}
		events = append(events, Event{
			Timestamp:  FormatTimestamp(seconds),
			Seconds:    seconds,
			DeckID:     candidate.DeckID,
			PageIndex:  candidate.PageIndex,
			Title:      strings.TrimSpace(candidate.Title),
			Reasoning:  strings.TrimSpace(candidate.Reasoning),
			Confidence: confidence,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Seconds < events[j].Seconds
	})
	events = dedupe(events)
	report.Events = events
	checkDeckOrdering(events, &report)
	return report
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func canonicalConfidence(value string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case strings.ToLower(ConfidenceHigh):
		return ConfidenceHigh, true
	case strings.ToLower(ConfidenceMedium):
		return ConfidenceMedium, true
	case strings.ToLower(ConfidenceLow):
		return ConfidenceLow, true
	}
	return strings.TrimSpace(value), false
}

// dedupe keeps the earliest event for each (deck, page) pair. Events must
// already be sorted by time.
func dedupe(events []Event) []Event {
	if len(events) < 2 {
		return events
	}
	type pageKey struct {
		deck int
		page int
	}
	seen := make(map[pageKey]bool, len(events))
	kept := events[:0]
	for _, event := range events {
		key := pageKey{deck: event.DeckID, page: event.PageIndex}
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, event)
	}
	return kept
}

// checkDeckOrdering enforces the single-transition shape: once deck 2
// appears the presentation never returns to deck 1, so the sorted deck
// sequence must be a run of 1s followed by a run of 2s.
func checkDeckOrdering(events []Event, report *Report) {
	sawDeck2At := -1
	for _, event := range events {
		if event.DeckID == 2 {
			if sawDeck2At == -1 {
				sawDeck2At = event.Seconds
			}
			continue
		}
		if sawDeck2At >= 0 {
			report.warnf("ordering violation: deck 1 page %d at %s follows deck 2 content starting at %s",
				event.PageIndex, event.Timestamp, FormatTimestamp(sawDeck2At))
		}
	}
}
