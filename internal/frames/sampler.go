package frames

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"log/slog"

	"lectern/internal/config"
	"lectern/internal/logging"
	"lectern/internal/media/ffprobe"
	"lectern/internal/services"
	"lectern/internal/transitions"
)

// Captured frames are scaled down before being sent to the oracle; slide
// content stays legible at this size while keeping payloads small.
const captureScale = "scale=480:270"

// Sample is one captured video frame with its elapsed-time label.
type Sample struct {
	Seconds   float64
	Timestamp string
	Image     []byte
}

// Sampler extracts evenly spaced frames from a recording. Duration comes
// from ffprobe; each frame is captured with a dedicated ffmpeg seek so no
// long-lived decode process is held across samples.
type Sampler struct {
	ffprobe     string
	ffmpeg      string
	maxFrames   int
	minInterval int
	logger      *slog.Logger
}

// NewSampler constructs a sampler from configuration.
func NewSampler(cfg *config.Config, logger *slog.Logger) *Sampler {
	return &Sampler{
		ffprobe:     cfg.FFprobeBinary(),
		ffmpeg:      cfg.FFmpegBinary(),
		maxFrames:   cfg.Sampling.MaxFrames,
		minInterval: cfg.Sampling.MinIntervalSeconds,
		logger:      logging.NewComponentLogger(logger, "frames"),
	}
}

// Extract captures the sampling plan for the recording at path. Captures run
// one at a time in ascending order; the first failure aborts the extraction.
func (s *Sampler) Extract(ctx context.Context, path string) ([]Sample, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrInputMissing, "frames", "extract", "video path is required", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, services.Wrap(services.ErrInputMissing, "frames", "extract", fmt.Sprintf("video %s", path), err)
	}
	logger := logging.WithContext(ctx, s.logger)

	probe, err := ffprobe.Inspect(ctx, s.ffprobe, path)
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, "frames", "probe", fmt.Sprintf("video %s", path), err)
	}
	if probe.VideoStreamCount() == 0 {
		return nil, services.Wrap(services.ErrExtraction, "frames", "probe", fmt.Sprintf("video %s has no video stream", path), nil)
	}
	duration := probe.DurationSeconds()
	if math.IsNaN(duration) || duration <= 0 {
		return nil, services.Wrap(services.ErrExtraction, "frames", "probe", fmt.Sprintf("video %s reported no usable duration", path), nil)
	}

	offsets := plan(duration, s.maxFrames, s.minInterval)
	samples := make([]Sample, 0, len(offsets))
	for _, offset := range offsets {
		label := transitions.FormatTimestamp(int(offset))
		data, err := s.capture(ctx, path, offset)
		if err != nil {
			return nil, services.Wrap(services.ErrExtraction, "frames", "capture", fmt.Sprintf("frame at %s from %s", label, path), err)
		}
		samples = append(samples, Sample{Seconds: offset, Timestamp: label, Image: data})
	}
	logger.Info("sampled video",
		logging.String("video", path),
		logging.Float64("duration_seconds", duration),
		logging.Int("samples", len(samples)))
	return samples, nil
}

// plan computes capture offsets: evenly spaced from 00:00, never closer than
// minInterval seconds apart, never more than maxFrames, always strictly
// before the end of the recording.
func plan(duration float64, maxFrames, minInterval int) []float64 {
	if duration <= 0 || maxFrames < 1 {
		return nil
	}
	step := float64(minInterval)
	if even := duration / float64(maxFrames); even > step {
		step = even
	}
	if step <= 0 {
		step = 1
	}
	offsets := make([]float64, 0, maxFrames)
	for k := 0; len(offsets) < maxFrames; k++ {
		offset := float64(k) * step
		if offset >= duration {
			break
		}
		offsets = append(offsets, offset)
	}
	return offsets
}

func (s *Sampler) capture(ctx context.Context, path string, offset float64) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.ffmpeg,
		"-hide_banner",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(offset, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-vf", captureScale,
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1",
	)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	if len(output) == 0 {
		return nil, errors.New("ffmpeg produced no frame data")
	}
	return output, nil
}
