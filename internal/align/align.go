package align

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lectern/internal/config"
	"lectern/internal/deck"
	"lectern/internal/evidence"
	"lectern/internal/frames"
	"lectern/internal/logging"
	"lectern/internal/services"
	"lectern/internal/transitions"
)

// Phase identifies where a run currently is. Runs move through the phases in
// order and finish in either PhaseDone or PhaseFailed.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseExtracting     Phase = "extracting"
	PhaseAssembling     Phase = "assembling"
	PhaseAwaitingOracle Phase = "awaiting-oracle"
	PhaseNormalizing    Phase = "normalizing"
	PhaseDone           Phase = "done"
	PhaseFailed         Phase = "failed"
)

// Update is one progress notification.
type Update struct {
	Phase   Phase
	Message string
}

// ProgressFunc receives run progress. Callbacks run on the pipeline
// goroutine and must return quickly.
type ProgressFunc func(Update)

// Aligner is the narrow oracle surface the pipeline depends on.
type Aligner interface {
	Align(ctx context.Context, bundle evidence.Bundle) ([]transitions.Candidate, error)
}

// Request names the three inputs of a run.
type Request struct {
	VideoPath string
	Deck1Path string
	Deck2Path string
}

// DeckSummary describes one rasterized deck without carrying its images.
type DeckSummary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Pages int    `json:"pages"`
}

// Result is the outcome of a completed run.
type Result struct {
	RunID    string              `json:"run_id"`
	Video    string              `json:"video"`
	Deck1    DeckSummary         `json:"deck1"`
	Deck2    DeckSummary         `json:"deck2"`
	Frames   int                 `json:"frames"`
	Events   []transitions.Event `json:"events"`
	Warnings []string            `json:"warnings,omitempty"`
	Elapsed  time.Duration       `json:"-"`
}

// Pipeline runs the full alignment: extraction fan-out, evidence assembly,
// one oracle call, normalization. Pipelines hold no per-run state and are
// safe for sequential reuse.
type Pipeline struct {
	rasterizer *deck.Rasterizer
	sampler    *frames.Sampler
	aligner    Aligner
	logger     *slog.Logger
	progress   ProgressFunc
}

// Option customizes the pipeline.
type Option func(*Pipeline)

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// New constructs a pipeline from configuration and an oracle client.
func New(cfg *config.Config, aligner Aligner, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		rasterizer: deck.NewRasterizer(cfg, logger),
		sampler:    frames.NewSampler(cfg, logger),
		aligner:    aligner,
		logger:     logging.NewComponentLogger(logger, "align"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one alignment end to end. The three extractions run
// concurrently; the first failure cancels the others and fails the run. No
// step retries internally, so a failed run is re-invoked from the start.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)

	if err := checkInputs(req); err != nil {
		return nil, p.fail(logger, err)
	}

	p.report(PhaseExtracting, "extracting deck pages and video frames")
	extractCtx := services.WithPhase(ctx, string(PhaseExtracting))
	var (
		deck1   *deck.Deck
		deck2   *deck.Deck
		samples []frames.Sample
	)
	group, groupCtx := errgroup.WithContext(extractCtx)
	group.Go(func() error {
		var err error
		deck1, err = p.rasterizer.Rasterize(groupCtx, 1, req.Deck1Path)
		return err
	})
	group.Go(func() error {
		var err error
		deck2, err = p.rasterizer.Rasterize(groupCtx, 2, req.Deck2Path)
		return err
	})
	group.Go(func() error {
		var err error
		samples, err = p.sampler.Extract(groupCtx, req.VideoPath)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, p.fail(logger, err)
	}
	p.report(PhaseExtracting, fmt.Sprintf("extracted %d + %d pages and %d frames",
		deck1.PageCount(), deck2.PageCount(), len(samples)))

	p.report(PhaseAssembling, "assembling evidence bundle")
	bundle := evidence.Assemble(deck1, deck2, samples)

	p.report(PhaseAwaitingOracle, fmt.Sprintf("submitting %d images for alignment", bundle.ImageCount()))
	oracleCtx := services.WithPhase(ctx, string(PhaseAwaitingOracle))
	candidates, err := p.aligner.Align(oracleCtx, bundle)
	if err != nil {
		return nil, p.fail(logger, services.Wrap(services.ErrOracle, "align", "oracle", "alignment request failed", err))
	}

	p.report(PhaseNormalizing, fmt.Sprintf("validating %d candidates", len(candidates)))
	report := transitions.Normalize(candidates, deck1.PageCount(), deck2.PageCount())

	result := &Result{
		RunID:    runID,
		Video:    req.VideoPath,
		Deck1:    DeckSummary{ID: deck1.ID, Title: deck1.Title, Pages: deck1.PageCount()},
		Deck2:    DeckSummary{ID: deck2.ID, Title: deck2.Title, Pages: deck2.PageCount()},
		Frames:   len(samples),
		Events:   report.Events,
		Warnings: report.Warnings,
		Elapsed:  time.Since(start),
	}
	p.report(PhaseDone, fmt.Sprintf("%d transitions, %d warnings", len(result.Events), len(result.Warnings)))
	logger.Info("alignment complete",
		logging.String("video", req.VideoPath),
		logging.Int("events", len(result.Events)),
		logging.Int("warnings", len(result.Warnings)),
		logging.Duration("elapsed", result.Elapsed))
	return result, nil
}

func (p *Pipeline) report(phase Phase, message string) {
	if p.progress != nil {
		p.progress(Update{Phase: phase, Message: message})
	}
}

func (p *Pipeline) fail(logger *slog.Logger, err error) error {
	p.report(PhaseFailed, err.Error())
	logging.ErrorWithContext(logger, "alignment failed", "alignment_failed", logging.Error(err))
	return err
}

// checkInputs verifies all three source files exist before any extraction
// starts.
func checkInputs(req Request) error {
	inputs := []struct {
		label string
		path  string
	}{
		{"video", req.VideoPath},
		{"deck 1", req.Deck1Path},
		{"deck 2", req.Deck2Path},
	}
	for _, input := range inputs {
		if strings.TrimSpace(input.path) == "" {
			return services.Wrap(services.ErrInputMissing, "align", "inputs", fmt.Sprintf("%s path is required", input.label), nil)
		}
		if _, err := os.Stat(input.path); err != nil {
			return services.Wrap(services.ErrInputMissing, "align", "inputs", fmt.Sprintf("%s %s", input.label, input.path), err)
		}
	}
	return nil
}
