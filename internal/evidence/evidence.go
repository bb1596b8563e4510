package evidence

import (
	"fmt"

	"lectern/internal/deck"
	"lectern/internal/frames"
)

// EntryKind discriminates bundle entries.
type EntryKind string

const (
	KindDeckLabel    EntryKind = "deck_label"
	KindPage         EntryKind = "page"
	KindFrameLabel   EntryKind = "frame_label"
	KindFrame        EntryKind = "frame"
	KindInstructions EntryKind = "instructions"
)

// Entry is one element of the evidence sequence. Text carries the label,
// caption, or instruction block; Image is set for page and frame entries and
// its caption precedes the image when the bundle is serialized.
type Entry struct {
	Kind      EntryKind
	Text      string
	Image     []byte
	DeckID    int
	PageIndex int
	Timestamp string
}

// Bundle is the ordered evidence sequence sent to the oracle: deck 1 pages,
// deck 2 pages, frames in ascending time, instructions last. The order is
// the only channel carrying deck identity and sequencing, so it is fixed.
type Bundle struct {
	Entries    []Entry
	Deck1Pages int
	Deck2Pages int
	FrameCount int
}

// ImageCount reports the number of image entries in the bundle.
func (b *Bundle) ImageCount() int {
	if b == nil {
		return 0
	}
	return b.Deck1Pages + b.Deck2Pages + b.FrameCount
}

// Instructions is the fixed task description appended to every bundle. It
// restates the output contract the normalizer expects.
const Instructions = `You are aligning a recorded presentation against two slide decks.
The images above are, in order: every page of deck 1, every page of deck 2, then video frames sampled at the labeled times.
The presentation walks through deck 1 in order, then switches to deck 2 exactly once and never returns to deck 1.
Find the first video frame in which each slide page becomes visible.
Rules:
- Ignore frames that do not show a slide (speaker close-ups, desktops, transition blurs).
- Report each page at most once, at its first appearance.
- Match slides by title text first; when titles are missing or ambiguous, match by chart and layout shape.
- Use the deck and page numbers from the captions, and the timestamps from the frame captions.
Respond with JSON only, no prose, in exactly this shape:
{"transitions": [{"timestamp": "MM:SS", "deckId": 1, "pageIndex": 1, "title": "...", "reasoning": "...", "confidence": "High"}]}
deckId is 1 or 2, pageIndex is the 1-based page number within that deck, and confidence is High, Medium, or Low.`

// Assemble builds the bundle from rasterized decks and sampled frames. Pure:
// inputs are not copied or mutated, and no I/O happens here.
func Assemble(deck1, deck2 *deck.Deck, samples []frames.Sample) Bundle {
	bundle := Bundle{
		Deck1Pages: deck1.PageCount(),
		Deck2Pages: deck2.PageCount(),
		FrameCount: len(samples),
	}
	bundle.Entries = make([]Entry, 0, bundle.ImageCount()+3)
	appendDeck(&bundle, deck1)
	appendDeck(&bundle, deck2)
	bundle.Entries = append(bundle.Entries, Entry{
		Kind: KindFrameLabel,
		Text: fmt.Sprintf("Video frames sampled from the recording (%d frames):", len(samples)),
	})
	for _, sample := range samples {
		bundle.Entries = append(bundle.Entries, Entry{
			Kind:      KindFrame,
			Text:      fmt.Sprintf("Video frame at %s", sample.Timestamp),
			Image:     sample.Image,
			Timestamp: sample.Timestamp,
		})
	}
	bundle.Entries = append(bundle.Entries, Entry{Kind: KindInstructions, Text: Instructions})
	return bundle
}

func appendDeck(bundle *Bundle, d *deck.Deck) {
	bundle.Entries = append(bundle.Entries, Entry{
		Kind:   KindDeckLabel,
		Text:   fmt.Sprintf("Deck %d: %s (%d pages):", d.ID, d.Title, d.PageCount()),
		DeckID: d.ID,
	})
	for _, page := range d.Pages {
		bundle.Entries = append(bundle.Entries, Entry{
			Kind:      KindPage,
			Text:      fmt.Sprintf("Deck %d Page %d", d.ID, page.Index),
			Image:     page.Image,
			DeckID:    d.ID,
			PageIndex: page.Index,
		})
	}
}
