// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mindmap-pdf/internal/history"
	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent conversions",
	Long: `History lists conversions recorded by convert, watch and serve, most
recent first. Use --format yaml for a machine-readable listing that includes
every external command that was run.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if a.cfg.History.Disabled {
		return fmt.Errorf("history is disabled (history.disabled is set)")
	}
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	limit, _ := cmd.Flags().GetInt("limit")
	failedOnly, _ := cmd.Flags().GetBool("failed")
	opts := history.QueryOptions{Limit: limit}
	if failedOnly {
		opts.Status = types.ConversionFailed
	}

	outcomes, err := store.List(ctx, opts)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml":
		return history.WriteYAML(cmd.OutOrStdout(), outcomes)
	case "table":
		sum, err := store.Summarize(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(history.Markdown(outcomes, sum)))
		return nil
	default:
		return fmt.Errorf("unknown format %q: use table or yaml", format)
	}
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of conversions to list")
	historyCmd.Flags().Bool("failed", false, "list failed conversions only")
	historyCmd.Flags().String("format", "table", "output format: table or yaml")

	rootCmd.AddCommand(historyCmd)
}
