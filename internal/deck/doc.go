// Package deck rasterizes slide documents into ordered page images.
package deck
