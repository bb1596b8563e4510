package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lectern/internal/align"
	"lectern/internal/logging"
	"lectern/internal/services/oracle"
)

// Extraction of long recordings plus one large oracle request; generous but
// bounded.
const alignRunTimeout = 30 * time.Minute

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "align <video> <deck1> <deck2>",
		Short: "Align a recorded presentation against two slide decks",
		Long: `Align a recorded presentation against two sequential slide decks and report
when each slide first appears in the video.

The video and both documents are extracted locally (ffmpeg/poppler), bundled
into a single multimodal request, and sent to the configured oracle model.
The response is validated and printed as an ordered transition list.

Examples:
  lectern align talk.mp4 part-one.pdf part-two.pdf
  lectern align talk.mp4 part-one.pdf part-two.pdf --json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			settings := cfg.GetOracle()
			if settings.APIKey == "" {
				return fmt.Errorf("oracle api_key is not set; add it to the config file or export LECTERN_API_KEY")
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			out := cmd.OutOrStdout()
			req := align.Request{
				VideoPath: args[0],
				Deck1Path: args[1],
				Deck2Path: args[2],
			}
			if !jsonOutput {
				fmt.Fprintf(out, "🔍 Aligning recording: %s\n", req.VideoPath)
				fmt.Fprintf(out, "📚 Deck 1: %s\n", req.Deck1Path)
				fmt.Fprintf(out, "📚 Deck 2: %s\n\n", req.Deck2Path)
			}

			client := oracle.NewClient(oracle.Config{
				APIKey:  settings.APIKey,
				BaseURL: settings.BaseURL,
				Model:   settings.Model,
				Referer: settings.Referer,
				Title:   settings.Title,
				Timeout: time.Duration(settings.TimeoutSeconds) * time.Second,
			})

			var opts []align.Option
			if !jsonOutput {
				opts = append(opts, align.WithProgress(func(update align.Update) {
					fmt.Fprintf(out, "%s %s\n", phaseEmoji(update.Phase), update.Message)
				}))
			}
			pipeline := align.New(cfg, client, logger, opts...)

			runCtx, cancel := context.WithTimeout(cmd.Context(), alignRunTimeout)
			defer cancel()

			result, err := pipeline.Run(runCtx, req)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, result)
			}
			printResult(out, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the result as JSON")
	return cmd
}

func phaseEmoji(phase align.Phase) string {
	switch phase {
	case align.PhaseExtracting:
		return "🎞️"
	case align.PhaseAssembling:
		return "📦"
	case align.PhaseAwaitingOracle:
		return "🤖"
	case align.PhaseNormalizing:
		return "📊"
	case align.PhaseDone:
		return "✅"
	case align.PhaseFailed:
		return "❌"
	}
	return "•"
}

func printResult(out io.Writer, result *align.Result) {
	fmt.Fprintf(out, "\n📊 Alignment Results:\n")
	fmt.Fprintf(out, "  Deck 1: %s (%d pages)\n", result.Deck1.Title, result.Deck1.Pages)
	fmt.Fprintf(out, "  Deck 2: %s (%d pages)\n", result.Deck2.Title, result.Deck2.Pages)
	fmt.Fprintf(out, "  Frames sampled: %d\n\n", result.Frames)

	if len(result.Events) == 0 {
		fmt.Fprintln(out, "❌ No slide transitions detected.")
	} else {
		rows := make([][]string, 0, len(result.Events))
		for _, event := range result.Events {
			rows = append(rows, []string{
				event.Timestamp,
				strconv.Itoa(event.DeckID),
				strconv.Itoa(event.PageIndex),
				event.Title,
				event.Confidence,
			})
		}
		fmt.Fprintln(out, renderTable([]column{
			{title: "TIMESTAMP"},
			{title: "DECK", right: true},
			{title: "PAGE", right: true},
			{title: "TITLE"},
			{title: "CONFIDENCE"},
		}, rows))
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(out, "\n⚠️  Warnings:\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(out, "  - %s\n", warning)
		}
	}

	fmt.Fprintf(out, "\n✅ %d transition(s) in %s\n", len(result.Events), result.Elapsed.Round(time.Second))
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
