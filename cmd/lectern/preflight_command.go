package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lectern/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check external tools and oracle connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			results := preflight.RunAll(cmd.Context(), cfg)

			rows := make([][]string, 0, len(results))
			failed := 0
			for _, result := range results {
				status := "✅"
				if !result.Passed {
					status = "❌"
					failed++
				}
				rows = append(rows, []string{status, result.Name, result.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]column{
				{title: "STATUS"},
				{title: "CHECK"},
				{title: "DETAIL"},
			}, rows))

			if failed > 0 {
				return fmt.Errorf("%d preflight check(s) failed", failed)
			}
			fmt.Fprintln(out, "All checks passed.")
			return nil
		},
	}
}
