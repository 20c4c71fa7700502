// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/pdiddy/mindmap-pdf/internal/convert"
	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

// status prints coloured result lines. Colours are dropped automatically
// when w is not a terminal.
type status struct {
	out *termenv.Output
}

func newStatus(w io.Writer) *status {
	return &status{out: termenv.NewOutput(w)}
}

func (s *status) success(format string, args ...any) {
	msg := s.out.String("✅ " + fmt.Sprintf(format, args...)).Foreground(termenv.ANSIGreen)
	fmt.Fprintln(s.out, msg)
}

func (s *status) failure(format string, args ...any) {
	msg := s.out.String("❌ " + fmt.Sprintf(format, args...)).Foreground(termenv.ANSIRed)
	fmt.Fprintln(s.out, msg)
}

// reportOutcome prints the result of one conversion. For a PlantUML failure
// the transcript of its invocation is printed too; Batik transcripts are
// already printed by the pipeline.
func (s *status) reportOutcome(o *types.Outcome, err error) {
	if err == nil {
		s.success("PDF generated successfully: %s (%s)", o.OutputPath, o.Strategy)
		return
	}
	s.failure("Error: %v", err)

	var ce *convert.Error
	if errors.As(err, &ce) && ce.Tool == "plantuml" && ce.Kind == convert.KindToolFailed {
		convert.WriteTranscript(s.out, ce.Attempts)
	}
}

// renderMarkdown renders md for the terminal, or returns it unchanged when
// rendering fails.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// recordOutcome stores o in the history database unless history is
// disabled. Failures are logged and never fail the command.
func (a *app) recordOutcome(ctx context.Context, o *types.Outcome) {
	if o == nil {
		return
	}
	store, err := a.openHistory()
	if err != nil {
		a.logger.Warn("opening history", "error", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()
	if err := store.Record(context.WithoutCancel(ctx), o); err != nil {
		a.logger.Warn("recording conversion", "id", o.ID, "error", err)
	}
}
