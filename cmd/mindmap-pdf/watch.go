// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mindmap-pdf/internal/watch"
	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file.puml>",
	Short: "Re-convert a mindmap every time the file changes",
	Long: `Watch converts the file once, then again after every save. The PDF is
written next to the source with a .pdf extension unless -o is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("output")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	st := newStatus(out)
	w, err := watch.New(args[0], a.pipeline(out),
		watch.WithOutput(outPath),
		watch.WithDebounce(a.cfg.Watch.Debounce),
		watch.WithLogger(a.logger),
		watch.WithNotify(func(o *types.Outcome, err error) {
			a.recordOutcome(ctx, o)
			st.reportOutcome(o, err)
		}),
	)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func init() {
	watchCmd.Flags().StringP("output", "o", "", "output PDF path (default: source path with .pdf extension)")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period after a change before converting")
	_ = viper.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))

	rootCmd.AddCommand(watchCmd)
}
