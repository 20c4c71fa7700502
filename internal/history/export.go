// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

// ExportEntry is the flattened form of an outcome written by WriteYAML.
// Attempt output is omitted; only the commands and exit codes are kept.
type ExportEntry struct {
	ID         string          `json:"id" yaml:"id"`
	StartedAt  string          `json:"started_at" yaml:"started_at"`
	Duration   string          `json:"duration" yaml:"duration"`
	Status     string          `json:"status" yaml:"status"`
	OutputPath string          `json:"output_path" yaml:"output_path"`
	Strategy   string          `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	ErrorKind  string          `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	Attempts   []ExportAttempt `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// ExportAttempt summarizes one external invocation.
type ExportAttempt struct {
	Strategy string `json:"strategy" yaml:"strategy"`
	Command  string `json:"command" yaml:"command"`
	ExitCode int    `json:"exit_code" yaml:"exit_code"`
}

func exportEntries(outcomes []types.Outcome) []ExportEntry {
	entries := make([]ExportEntry, 0, len(outcomes))
	for _, o := range outcomes {
		e := ExportEntry{
			ID:         o.ID,
			StartedAt:  o.StartedAt.Local().Format(time.RFC3339),
			Duration:   o.Duration.Round(time.Millisecond).String(),
			Status:     string(o.Status),
			OutputPath: o.OutputPath,
			Strategy:   o.Strategy,
			ErrorKind:  o.ErrorKind,
			Error:      o.Error,
		}
		for _, a := range o.Attempts {
			e.Attempts = append(e.Attempts, ExportAttempt{
				Strategy: a.Strategy,
				Command:  strings.Join(a.Command, " "),
				ExitCode: a.ExitCode,
			})
		}
		entries = append(entries, e)
	}
	return entries
}

// WriteYAML writes outcomes to w as a YAML list.
func WriteYAML(w io.Writer, outcomes []types.Outcome) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(exportEntries(outcomes)); err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	return enc.Close()
}

// Markdown renders outcomes as a markdown table followed by sum's totals.
func Markdown(outcomes []types.Outcome, sum Summary) string {
	var b strings.Builder
	b.WriteString("# Conversion history\n\n")
	if len(outcomes) == 0 {
		b.WriteString("No conversions recorded yet.\n")
		return b.String()
	}

	b.WriteString("| Started | Status | Output | Strategy / Error | Took |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, e := range exportEntries(outcomes) {
		detail := e.Strategy
		if e.Status == string(types.ConversionFailed) {
			detail = e.ErrorKind
		}
		fmt.Fprintf(&b, "| %s | %s | `%s` | %s | %s |\n",
			e.StartedAt, e.Status, e.OutputPath, orDash(detail), e.Duration)
	}

	fmt.Fprintf(&b, "\n%d recorded: %d converted, %d failed.\n", sum.Total(), sum.Converted, sum.Failed)
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
