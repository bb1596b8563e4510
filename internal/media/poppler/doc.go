// Package poppler provides typed wrappers around the Poppler PDF utilities.
//
// This package has no lectern-specific dependencies and could be extracted
// as a standalone library.
//
// Primary entry points:
//   - PageCount: executes pdfinfo and parses the reported page total
//   - RenderPage: executes pdftoppm to rasterize one page to an in-memory JPEG
//
// Pages are rendered to stdout one process at a time, so nothing is written
// to disk and each call owns its rendering resources for exactly one page.
package poppler
