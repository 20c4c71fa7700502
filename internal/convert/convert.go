// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns PlantUML mindmap text into a PDF by running PlantUML
// (text to SVG) and then Batik (SVG to PDF) as external Java processes, with
// a fallback chain for the second stage. The input text is passed through
// untouched; nothing here parses PlantUML.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/pdiddy/mindmap-pdf/internal/env"
	"github.com/pdiddy/mindmap-pdf/internal/logging"
	"github.com/pdiddy/mindmap-pdf/internal/runner"
	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

const (
	sourceName = "diagram.puml"
	svgName    = "diagram.svg"

	// DefaultTimeout bounds each external process.
	DefaultTimeout = 2 * time.Minute
)

// Request is one conversion job.
type Request struct {
	// Source is the PlantUML text, written verbatim to the workspace.
	Source string
	// OutputPath is the PDF destination. Empty synthesizes a timestamped
	// name in the output directory.
	OutputPath string
}

// Pipeline runs conversions against a fixed set of resolved tools. It holds
// no mutable state, so one Pipeline may serve concurrent callers.
type Pipeline struct {
	tools     env.Tools
	exec      runner.Executor
	fallbacks []Fallback
	logger    *slog.Logger
	out       io.Writer
	timeout   time.Duration
	now       func() time.Time
	tempDir   string
	outputDir string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExecutor replaces the process executor.
func WithExecutor(e runner.Executor) Option {
	return func(p *Pipeline) { p.exec = e }
}

// WithFallbacks replaces the SVG-to-PDF fallbacks tried after Batik. Passing
// none disables fallbacks.
func WithFallbacks(fbs ...Fallback) Option {
	return func(p *Pipeline) { p.fallbacks = append([]Fallback{}, fbs...) }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithOutput sets where progress lines and failure transcripts are printed.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// WithTimeout bounds every external process; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithClock replaces time.Now, used for default output names.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithTempDir sets the parent directory for workspaces.
func WithTempDir(dir string) Option {
	return func(p *Pipeline) { p.tempDir = dir }
}

// WithOutputDir sets the directory for synthesized output names. The default
// is the base directory.
func WithOutputDir(dir string) Option {
	return func(p *Pipeline) { p.outputDir = dir }
}

// New creates a Pipeline for tools.
func New(tools env.Tools, opts ...Option) *Pipeline {
	p := &Pipeline{
		tools:   tools,
		exec:    runner.OS{},
		logger:  logging.NewNop(),
		out:     io.Discard,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.fallbacks == nil {
		p.fallbacks = []Fallback{NewRSVGFallback(p.exec)}
	}
	if p.outputDir == "" {
		p.outputDir = tools.BaseDir
	}
	return p
}

// Tools returns the tool locations the pipeline was built with.
func (p *Pipeline) Tools() env.Tools { return p.tools }

// Convert runs one conversion. The returned Outcome is never nil and records
// every external invocation. On failure the error is a *Error and the
// requested output path is left untouched. The temporary workspace is
// removed on every path.
func (p *Pipeline) Convert(ctx context.Context, req Request) (*types.Outcome, error) {
	start := p.now()
	outcome := &types.Outcome{
		ID:         uuid.NewString(),
		OutputPath: req.OutputPath,
		StartedAt:  start,
	}
	if outcome.OutputPath == "" {
		outcome.OutputPath = uniqueOutputPath(DefaultOutputPath(p.outputDir, start))
	}

	log := p.logger.With("conversion", outcome.ID)
	err := p.convert(ctx, log, req.Source, outcome)
	outcome.Duration = p.now().Sub(start)

	if err != nil {
		outcome.Status = types.ConversionFailed
		outcome.ErrorKind = string(KindOf(err))
		outcome.Error = err.Error()
		log.Info("conversion failed", "kind", outcome.ErrorKind, "error", err)
		return outcome, err
	}
	outcome.Status = types.ConversionDone
	log.Info("conversion finished", "output", outcome.OutputPath, "strategy", outcome.Strategy, "duration", outcome.Duration)
	return outcome, nil
}

func (p *Pipeline) convert(ctx context.Context, log *slog.Logger, source string, outcome *types.Outcome) error {
	if err := p.checkTools(); err != nil {
		return err
	}

	ws, err := NewWorkspace(p.tempDir, log)
	if err != nil {
		return &Error{Kind: KindFilesystem, Tool: "workspace", Err: err}
	}
	defer ws.Remove()
	log.Debug("created workspace", "dir", ws.Dir)

	pumlPath := ws.Path(sourceName)
	if err := os.WriteFile(pumlPath, []byte(source), 0o644); err != nil {
		return &Error{Kind: KindFilesystem, Tool: "workspace", Path: pumlPath, Err: err}
	}

	fmt.Fprintln(p.out, "rendering SVG with PlantUML...")
	attempt, runErr := p.run(ctx, "plantuml", plantUMLCommand(p.tools, ws.Dir, pumlPath))
	outcome.Attempts = append(outcome.Attempts, attempt)
	if err := ctx.Err(); err != nil {
		return &Error{Kind: KindCanceled, Tool: "plantuml", Err: err}
	}
	if !attempt.Succeeded() {
		return &Error{
			Kind:     KindToolFailed,
			Tool:     "plantuml",
			Attempts: []types.Attempt{attempt},
			Err:      exitError(attempt, runErr),
		}
	}

	svgPath := ws.Find(svgName, ".svg")
	if svgPath == "" {
		return &Error{Kind: KindMissingOutput, Tool: "plantuml", Err: errors.New("PlantUML did not produce an SVG file")}
	}

	strategy, err := p.renderPDF(ctx, ws, svgPath, outcome)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(svgPath), filepath.Ext(svgPath))
	pdfPath := ws.Find(base+".pdf", ".pdf")
	if pdfPath == "" {
		return &Error{Kind: KindMissingOutput, Tool: strategy, Err: errors.New("no PDF file in the workspace")}
	}
	if mt, err := mimetype.DetectFile(pdfPath); err == nil && !mt.Is(mimePDF) {
		log.Warn("produced file does not look like a PDF", "path", pdfPath, "mime", mt.String())
	}

	if err := moveFile(pdfPath, outcome.OutputPath); err != nil {
		return &Error{Kind: KindFilesystem, Tool: "output", Path: outcome.OutputPath, Err: err}
	}
	outcome.Strategy = strategy
	return nil
}

// checkTools verifies the preconditions that must hold before any process
// is started.
func (p *Pipeline) checkTools() error {
	t := p.tools
	if t.Java == "" {
		return &Error{
			Kind: KindMissingDependency,
			Tool: "java",
			Err:  errors.New("java not found on PATH or in any known install location; install Java and try again"),
		}
	}
	if t.PlantUMLJar == "" || !isRegular(t.PlantUMLJar) {
		return &Error{
			Kind: KindMissingDependency,
			Tool: "plantuml",
			Path: t.PlantUMLJar,
			Err:  fmt.Errorf("plantuml.jar not found under %s or %s", t.BaseDir, t.WorkDir),
		}
	}
	hasBatik := (t.BatikRasterizerJar != "" && isRegular(t.BatikRasterizerJar)) ||
		t.BatikLibDir != "" ||
		(t.BatikAllJar != "" && isRegular(t.BatikAllJar))
	if !hasBatik {
		return &Error{
			Kind:     KindMissingDependency,
			Tool:     "batik",
			Searched: t.Searched(),
			Err: fmt.Errorf("could not find a Batik rasterizer jar, batik-all jar, or lib directory; "+
				"place the Batik distribution inside the base directory or set %s", env.EnvBaseDir),
		}
	}
	return nil
}

// renderPDF tries each Batik strategy, then each available fallback, and
// returns the name of the first that succeeded.
func (p *Pipeline) renderPDF(ctx context.Context, ws *Workspace, svgPath string, outcome *types.Outcome) (string, error) {
	var batik []types.Attempt
	for _, s := range BatikStrategies(p.tools, ws.Dir, svgPath) {
		fmt.Fprintf(p.out, "converting SVG to PDF (%s)...\n", s.Name)
		attempt, _ := p.run(ctx, s.Name, s.Command)
		batik = append(batik, attempt)
		outcome.Attempts = append(outcome.Attempts, attempt)
		if err := ctx.Err(); err != nil {
			return "", &Error{Kind: KindCanceled, Tool: "batik", Attempts: batik, Err: err}
		}
		if attempt.Succeeded() {
			return s.Name, nil
		}
	}

	fmt.Fprintln(p.out, "Batik conversion failed. Trying fallbacks (if available)...")
	WriteTranscript(p.out, batik)

	base := strings.TrimSuffix(filepath.Base(svgPath), filepath.Ext(svgPath))
	pdfPath := ws.Path(base + ".pdf")
	tried := 0
	for _, fb := range p.fallbacks {
		if !fb.Available() {
			fmt.Fprintf(p.out, "fallback %s not available\n", fb.Name())
			continue
		}
		tried++
		attempt, fbErr := p.runFallback(ctx, fb, svgPath, pdfPath)
		outcome.Attempts = append(outcome.Attempts, attempt)
		if err := ctx.Err(); err != nil {
			return "", &Error{Kind: KindCanceled, Tool: fb.Name(), Err: err}
		}
		if attempt.Succeeded() {
			return fb.Name(), nil
		}
		fmt.Fprintf(p.out, "fallback %s failed: %v\n", fb.Name(), exitError(attempt, fbErr))
	}

	msg := "every Batik candidate failed and no fallback is available"
	if tried > 0 {
		msg = "every Batik candidate and fallback failed"
	}
	return "", &Error{Kind: KindToolFailed, Tool: "batik", Attempts: batik, Err: errors.New(msg)}
}

// run executes cmd under the per-process timeout and records it.
func (p *Pipeline) run(ctx context.Context, strategy string, cmd runner.Command) (types.Attempt, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	p.logger.Debug("running external tool", "strategy", strategy, "cmd", cmd.String())

	start := time.Now()
	res := p.exec.Run(ctx, cmd)
	attempt := newAttempt(strategy, cmd, res, time.Since(start))
	if errors.Is(res.Err, context.DeadlineExceeded) {
		attempt.Stderr += fmt.Sprintf("\nkilled after %s timeout", p.timeout)
	}
	return attempt, res.Err
}

func (p *Pipeline) runFallback(ctx context.Context, fb Fallback, svgPath, pdfPath string) (types.Attempt, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	start := time.Now()
	cmd, res := fb.Convert(ctx, svgPath, pdfPath)
	return newAttempt(fb.Name(), cmd, res, time.Since(start)), res.Err
}

// exitError describes a failed attempt, preferring the executor's error.
func exitError(a types.Attempt, err error) error {
	if err != nil {
		return fmt.Errorf("exit status %d: %w", a.ExitCode, err)
	}
	return fmt.Errorf("exit status %d", a.ExitCode)
}

func newAttempt(strategy string, cmd runner.Command, res runner.Result, d time.Duration) types.Attempt {
	return types.Attempt{
		Strategy: strategy,
		Command:  cmd.Argv(),
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		Duration: d,
	}
}

// WriteTranscript prints every attempt's command, exit status and captured
// output.
func WriteTranscript(w io.Writer, attempts []types.Attempt) {
	for _, a := range attempts {
		fmt.Fprintln(w, "CMD:", strings.Join(a.Command, " "))
		fmt.Fprintln(w, "RET:", a.ExitCode)
		if a.Stdout != "" {
			fmt.Fprintln(w, "STDOUT:")
			fmt.Fprintln(w, a.Stdout)
		}
		if a.Stderr != "" {
			fmt.Fprintln(w, "STDERR:")
			fmt.Fprintln(w, a.Stderr)
		}
		fmt.Fprintln(w, "---")
	}
}
