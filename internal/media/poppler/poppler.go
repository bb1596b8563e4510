package poppler

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// RenderOptions controls how pdftoppm rasterizes a page.
type RenderOptions struct {
	DPI     int
	Quality int
}

const (
	defaultDPI     = 108
	defaultQuality = 80
)

// PageCount executes pdfinfo against the provided document and returns the
// number of pages it reports.
func PageCount(ctx context.Context, binary string, path string) (int, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "pdfinfo"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, errors.New("pdfinfo: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return parsePageCount(output)
}

func parsePageCount(output []byte) (int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, "Pages:"))
		pages, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("pdfinfo parse: pages value %q: %w", value, err)
		}
		if pages < 1 {
			return 0, fmt.Errorf("pdfinfo parse: non-positive page count %d", pages)
		}
		return pages, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("pdfinfo parse: %w", err)
	}
	return 0, errors.New("pdfinfo parse: no Pages line in output")
}

// RenderPage executes pdftoppm to rasterize a single 1-based page to an
// in-memory JPEG. One process is spawned per page so rendering resources are
// acquired and released within this call.
func RenderPage(ctx context.Context, binary string, path string, page int, opts RenderOptions) ([]byte, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "pdftoppm"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("pdftoppm: empty path")
	}
	if page < 1 {
		return nil, fmt.Errorf("pdftoppm: invalid page %d", page)
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}
	quality := opts.Quality
	if quality <= 0 {
		quality = defaultQuality
	}

	pageArg := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, binary,
		"-jpeg",
		"-jpegopt", "quality="+strconv.Itoa(quality),
		"-r", strconv.Itoa(dpi),
		"-f", pageArg,
		"-l", pageArg,
		"-singlefile",
		"--", path,
	)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("pdftoppm page %d: %w: %s", page, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("pdftoppm page %d: %w", page, err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("pdftoppm page %d: empty image output", page)
	}
	return output, nil
}
