// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pdiddy/mindmap-pdf/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a PlantUML mindmap to PDF",
	Long: `Convert renders PlantUML mindmap text to PDF. The text is read from the
given file, or from standard input until a line containing only END.

Without -o the PDF is written to the base directory (or conversion.output_dir)
as output_mindmap_<YYYYMMDD_HHMMSS>.pdf.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		a.cfg.Conversion.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}
	outPath, _ := cmd.Flags().GetString("output")

	source, err := readConvertSource(cmd, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("no PlantUML text provided")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	outcome, convErr := a.pipeline(out).Convert(ctx, convert.Request{Source: source, OutputPath: outPath})
	a.recordOutcome(ctx, outcome)

	newStatus(out).reportOutcome(outcome, convErr)
	if convErr != nil {
		return errReported
	}
	return nil
}

// readConvertSource returns the file named by args[0], or standard input
// up to the END sentinel.
func readConvertSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		printPrompt(cmd.ErrOrStderr())
	}
	return convert.ReadSource(in, convert.EndSentinel)
}

func printPrompt(w io.Writer) {
	fmt.Fprintln(w, "📥 Paste your full PlantUML mindmap text below.")
	fmt.Fprintf(w, "👉 Type %s on a new line when you finish.\n\n", convert.EndSentinel)
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "output PDF path (default: timestamped name in the base directory)")
	convertCmd.Flags().Duration("timeout", convert.DefaultTimeout, "timeout for each external tool (0 disables)")

	rootCmd.AddCommand(convertCmd)
}
