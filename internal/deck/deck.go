package deck

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Page is a single rasterized slide.
type Page struct {
	Index int
	Image []byte
}

// Deck holds every rasterized page of one source document in page order.
type Deck struct {
	ID    int
	Title string
	Path  string
	Pages []Page
}

// PageCount reports the number of rasterized pages.
func (d *Deck) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

func deriveTitle(sourcePath string) string {
	if sourcePath == "" {
		return "Untitled Deck"
	}
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		title = "Untitled Deck"
	}
	return cases.Title(language.Und).String(title)
}
