// Package evidence assembles rasterized pages and sampled frames into the
// ordered multimodal bundle consumed by the alignment oracle.
package evidence
