package deck

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"log/slog"

	"lectern/internal/config"
	"lectern/internal/logging"
	"lectern/internal/media/poppler"
	"lectern/internal/services"
)

// Rasterizer renders slide documents into per-page JPEG images using the
// poppler utilities.
type Rasterizer struct {
	pdfinfo  string
	pdftoppm string
	options  poppler.RenderOptions
	logger   *slog.Logger
}

// NewRasterizer constructs a rasterizer from configuration. Render scale is
// applied against the 72 DPI PDF baseline.
func NewRasterizer(cfg *config.Config, logger *slog.Logger) *Rasterizer {
	return &Rasterizer{
		pdfinfo:  cfg.PdfinfoBinary(),
		pdftoppm: cfg.PdftoppmBinary(),
		options: poppler.RenderOptions{
			DPI:     int(math.Round(72 * cfg.Render.Scale)),
			Quality: cfg.Render.JPEGQuality,
		},
		logger: logging.NewComponentLogger(logger, "deck"),
	}
}

// Rasterize renders every page of the document at path. Page images carry
// 1-based indexes matching the document's own page numbering. Rendering stops
// at the first page that fails.
func (r *Rasterizer) Rasterize(ctx context.Context, id int, path string) (*Deck, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrInputMissing, "deck", "rasterize", "document path is required", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, services.Wrap(services.ErrInputMissing, "deck", "rasterize", fmt.Sprintf("deck %d document %s", id, path), err)
	}
	logger := logging.WithContext(ctx, r.logger)

	count, err := poppler.PageCount(ctx, r.pdfinfo, path)
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, "deck", "page count", fmt.Sprintf("deck %d document %s", id, path), err)
	}
	result := &Deck{
		ID:    id,
		Title: deriveTitle(path),
		Path:  path,
		Pages: make([]Page, 0, count),
	}
	for page := 1; page <= count; page++ {
		data, err := poppler.RenderPage(ctx, r.pdftoppm, path, page, r.options)
		if err != nil {
			return nil, services.Wrap(services.ErrExtraction, "deck", "render", fmt.Sprintf("deck %d page %d of %s", id, page, path), err)
		}
		result.Pages = append(result.Pages, Page{Index: page, Image: data})
	}
	logger.Info("rasterized deck",
		logging.Int("deck", id),
		logging.String("title", result.Title),
		logging.Int("pages", result.PageCount()),
		logging.Int("dpi", r.options.DPI))
	return result, nil
}
