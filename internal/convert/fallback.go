// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"

	"github.com/pdiddy/mindmap-pdf/internal/runner"
)

const binRSVGConvert = "rsvg-convert"

// Fallback converts SVG to PDF without Batik. The pipeline consults
// fallbacks in order only after every Batik strategy has failed.
type Fallback interface {
	// Name identifies the fallback in attempts and diagnostics.
	Name() string

	// Available reports whether the fallback can run in this environment.
	Available() bool

	// Convert writes a PDF rendering of svgPath to pdfPath. The returned
	// Command is recorded as an attempt.
	Convert(ctx context.Context, svgPath, pdfPath string) (runner.Command, runner.Result)
}

// RSVGFallback converts with librsvg's rsvg-convert command, found on PATH.
type RSVGFallback struct {
	exec runner.Executor
}

// NewRSVGFallback returns a fallback that runs rsvg-convert through exec.
func NewRSVGFallback(exec runner.Executor) *RSVGFallback {
	return &RSVGFallback{exec: exec}
}

func (f *RSVGFallback) Name() string { return binRSVGConvert }

func (f *RSVGFallback) Available() bool {
	_, err := f.exec.LookPath(binRSVGConvert)
	return err == nil
}

func (f *RSVGFallback) Convert(ctx context.Context, svgPath, pdfPath string) (runner.Command, runner.Result) {
	cmd := runner.Command{
		Name: binRSVGConvert,
		Args: []string{"-f", "pdf", "-o", pdfPath, svgPath},
	}
	res := f.exec.Run(ctx, cmd)
	if res.Err != nil && res.ExitCode != 0 {
		res.Err = fmt.Errorf("converting %s with %s: %w", svgPath, binRSVGConvert, res.Err)
	}
	return cmd, res
}
