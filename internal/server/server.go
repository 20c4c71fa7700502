// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the conversion pipeline over HTTP: a form page for
// pasting mindmap text, a conversion endpoint that returns the PDF, a health
// check, and prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/mindmap-pdf/internal/convert"
	"github.com/pdiddy/mindmap-pdf/internal/env"
	"github.com/pdiddy/mindmap-pdf/internal/logging"
	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	// DefaultMaxConcurrent bounds simultaneous conversions.
	DefaultMaxConcurrent = 2

	maxSourceBytes  = 1 << 20
	shutdownTimeout = 5 * time.Second

	msgEmptySource = "Please paste PlantUML mindmap text."
)

// Converter runs one conversion. *convert.Pipeline satisfies it.
type Converter interface {
	Convert(ctx context.Context, req convert.Request) (*types.Outcome, error)
	Tools() env.Tools
}

// Recorder stores finished outcomes. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, o *types.Outcome) error
}

// Server handles HTTP requests for conversions.
type Server struct {
	conv     Converter
	recorder Recorder
	logger   *slog.Logger
	sem      chan struct{}
	tempDir  string
	metrics  *metrics
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRecorder records every conversion outcome.
func WithRecorder(r Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithMaxConcurrent bounds simultaneous conversions; values below one use
// DefaultMaxConcurrent.
func WithMaxConcurrent(n int) Option {
	return func(s *Server) {
		if n < 1 {
			n = DefaultMaxConcurrent
		}
		s.sem = make(chan struct{}, n)
	}
}

// WithTempDir sets the parent directory for per-request output directories.
func WithTempDir(dir string) Option {
	return func(s *Server) { s.tempDir = dir }
}

// New creates a Server that converts with conv.
func New(conv Converter, opts ...Option) *Server {
	s := &Server{
		conv:    conv,
		logger:  logging.NewNop(),
		sem:     make(chan struct{}, DefaultMaxConcurrent),
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router serving every endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/convert", s.handleConvert)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "base_dir", s.conv.Tools().BaseDir)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			return srv.Close()
		}
		s.logger.Info("server stopped")
		return nil
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, indexPage{BaseDir: s.conv.Tools().BaseDir}); err != nil {
		s.logger.Warn("rendering index", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	t := s.conv.Tools()
	w.Header().Set("Content-Type", "application/json")
	if !t.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, `{"status":"degraded","base_dir":%q}`+"\n", t.BaseDir)
		return
	}
	fmt.Fprintf(w, `{"status":"ok","base_dir":%q}`+"\n", t.BaseDir)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With("request_id", middleware.GetReqID(r.Context()))

	source, filename, err := readRequest(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("mindmap text exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(source) == "" {
		http.Error(w, msgEmptySource, http.StatusBadRequest)
		return
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-r.Context().Done():
		http.Error(w, "request canceled while waiting for a conversion slot", http.StatusServiceUnavailable)
		return
	}
	s.metrics.inFlight.Inc()
	defer s.metrics.inFlight.Dec()

	dir, err := os.MkdirTemp(s.tempDir, "mindmap-http-")
	if err != nil {
		log.Error("creating request directory", "error", err)
		http.Error(w, "could not create a temporary directory", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(dir)

	outcome, convErr := s.conv.Convert(r.Context(), convert.Request{
		Source:     source,
		OutputPath: filepath.Join(dir, "mindmap.pdf"),
	})
	s.metrics.observe(outcome)
	s.record(r.Context(), log, outcome)

	if convErr != nil {
		log.Info("conversion failed", "kind", convert.KindOf(convErr), "error", convErr)
		http.Error(w, clientMessage(convErr), statusFor(convErr))
		return
	}

	if filename == "" {
		filename = filepath.Base(convert.DefaultOutputPath("", outcome.StartedAt))
	}
	if err := servePDF(w, outcome.OutputPath, filename); err != nil {
		log.Warn("sending pdf", "error", err)
	}
}

func (s *Server) record(ctx context.Context, log *slog.Logger, o *types.Outcome) {
	if s.recorder == nil || o == nil {
		return
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), o); err != nil {
		log.Warn("recording conversion", "id", o.ID, "error", err)
	}
}

// readRequest returns the mindmap source and requested download name from
// either a text/plain body or form fields.
func readRequest(w http.ResponseWriter, r *http.Request) (source, filename string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceBytes)
	filename = sanitizeFilename(r.URL.Query().Get("filename"))

	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", "", fmt.Errorf("reading body: %w", err)
		}
		return string(data), filename, nil
	}

	parse := r.ParseForm
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		parse = func() error { return r.ParseMultipartForm(maxSourceBytes) }
	}
	if err := parse(); err != nil {
		return "", "", fmt.Errorf("parsing form: %w", err)
	}
	if f := sanitizeFilename(r.FormValue("filename")); f != "" {
		filename = f
	}
	return r.FormValue("source"), filename, nil
}

// sanitizeFilename keeps only the base name and forces a .pdf extension.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return ""
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

func servePDF(w http.ResponseWriter, path, filename string) error {
	f, err := os.Open(path)
	if err != nil {
		http.Error(w, "converted file is missing", http.StatusInternalServerError)
		return err
	}
	defer f.Close()

	contentType := "application/pdf"
	if mt, err := mimetype.DetectReader(f); err == nil {
		contentType = mt.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		http.Error(w, "reading converted file", http.StatusInternalServerError)
		return err
	}
	info, err := f.Stat()
	if err != nil {
		http.Error(w, "reading converted file", http.StatusInternalServerError)
		return err
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, err = io.Copy(w, f)
	return err
}

// clientMessage describes a conversion failure for the HTTP client. Paths
// and tool output stay in the server log.
func clientMessage(err error) string {
	var ce *convert.Error
	if !errors.As(err, &ce) {
		return "conversion failed"
	}
	msg := "conversion failed: " + ce.Kind.String()
	if ce.Tool != "" {
		msg += " (" + ce.Tool + ")"
	}
	switch ce.Kind {
	case convert.KindMissingDependency:
		msg += "; the server is missing a required tool"
	case convert.KindToolFailed, convert.KindMissingOutput:
		msg += "; check the mindmap syntax"
	case convert.KindCanceled:
		msg += "; the conversion did not finish in time"
	}
	return msg
}

// statusFor maps a conversion error to an HTTP status.
func statusFor(err error) int {
	switch convert.KindOf(err) {
	case convert.KindMissingDependency:
		return http.StatusServiceUnavailable
	case convert.KindToolFailed, convert.KindMissingOutput:
		return http.StatusUnprocessableEntity
	case convert.KindCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
