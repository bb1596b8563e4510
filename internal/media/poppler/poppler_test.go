package poppler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParsePageCount(t *testing.T) {
	output := []byte(`Title:          Intro Deck
Producer:       LibreOffice 7.6
Pages:          28
Encrypted:      no
Page size:      612 x 792 pts (letter)
`)
	pages, err := parsePageCount(output)
	if err != nil {
		t.Fatalf("parsePageCount returned error: %v", err)
	}
	if pages != 28 {
		t.Fatalf("expected 28 pages, got %d", pages)
	}
}

func TestParsePageCountMissingLine(t *testing.T) {
	if _, err := parsePageCount([]byte("Title: nothing useful\n")); err == nil {
		t.Fatal("expected error for missing Pages line")
	}
}

func TestParsePageCountRejectsZero(t *testing.T) {
	if _, err := parsePageCount([]byte("Pages: 0\n")); err == nil {
		t.Fatal("expected error for zero page count")
	}
}

func stubBinary(t *testing.T, name, script string) {
	t.Helper()
	binDir := filepath.Join(t.TempDir(), "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestPageCountRunsBinary(t *testing.T) {
	stubBinary(t, "pdfinfo", "#!/bin/sh\necho 'Pages:          3'\n")

	pages, err := PageCount(context.Background(), "pdfinfo", "/tmp/deck.pdf")
	if err != nil {
		t.Fatalf("PageCount returned error: %v", err)
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
}

func TestRenderPageReturnsStdout(t *testing.T) {
	stubBinary(t, "pdftoppm", "#!/bin/sh\nprintf 'jpegdata'\n")

	image, err := RenderPage(context.Background(), "pdftoppm", "/tmp/deck.pdf", 2, RenderOptions{DPI: 108, Quality: 80})
	if err != nil {
		t.Fatalf("RenderPage returned error: %v", err)
	}
	if string(image) != "jpegdata" {
		t.Fatalf("unexpected image payload: %q", image)
	}
}

func TestRenderPageFailureIncludesStderr(t *testing.T) {
	stubBinary(t, "pdftoppm", "#!/bin/sh\necho 'Syntax Error: broken xref' >&2\nexit 1\n")

	_, err := RenderPage(context.Background(), "pdftoppm", "/tmp/deck.pdf", 1, RenderOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "broken xref") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}
}

func TestRenderPageRejectsEmptyOutput(t *testing.T) {
	stubBinary(t, "pdftoppm", "#!/bin/sh\nexit 0\n")

	if _, err := RenderPage(context.Background(), "pdftoppm", "/tmp/deck.pdf", 1, RenderOptions{}); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func TestRenderPageRejectsInvalidPage(t *testing.T) {
	if _, err := RenderPage(context.Background(), "pdftoppm", "/tmp/deck.pdf", 0, RenderOptions{}); err == nil {
		t.Fatal("expected error for page 0")
	}
}
