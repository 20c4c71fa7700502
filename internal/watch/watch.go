// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-runs a conversion whenever a PlantUML source file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/mindmap-pdf/internal/convert"
	"github.com/pdiddy/mindmap-pdf/internal/logging"
	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

// DefaultDebounce is the quiet period after the last change before a
// conversion starts.
const DefaultDebounce = 500 * time.Millisecond

// Converter runs one conversion. *convert.Pipeline satisfies it.
type Converter interface {
	Convert(ctx context.Context, req convert.Request) (*types.Outcome, error)
}

// NotifyFunc receives the result of every conversion the watcher runs.
type NotifyFunc func(o *types.Outcome, err error)

// Watcher converts one file on every change.
type Watcher struct {
	path     string
	output   string
	conv     Converter
	debounce time.Duration
	logger   *slog.Logger
	notify   NotifyFunc
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithOutput sets the PDF destination. The default is the source path with
// its extension replaced by .pdf.
func WithOutput(path string) Option {
	return func(w *Watcher) { w.output = path }
}

// WithDebounce sets the quiet period; zero or negative uses DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithNotify registers a callback for conversion results.
func WithNotify(fn NotifyFunc) Option {
	return func(w *Watcher) { w.notify = fn }
}

// New creates a Watcher for the file at path.
func New(path string, conv Converter, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	w := &Watcher{
		path:     abs,
		conv:     conv,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
		notify:   func(*types.Outcome, error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.output == "" {
		w.output = DefaultOutput(abs)
	}
	return w, nil
}

// DefaultOutput returns path with its extension replaced by .pdf.
func DefaultOutput(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
}

// Output returns the PDF destination.
func (w *Watcher) Output() string { return w.output }

// Run converts the file once, then again after every write or re-creation,
// until ctx is done. Conversions run one at a time on the calling goroutine.
// The parent directory is watched so editors that replace the file on save
// are still followed.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logger.Info("watching", "file", w.path, "output", w.output, "debounce", w.debounce)

	if _, err := os.Stat(w.path); err == nil {
		w.convert(ctx)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			w.logger.Debug("change detected", "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-fire:
			fire = nil
			w.convert(ctx)
		}
	}
}

func (w *Watcher) convert(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("reading source", "file", w.path, "error", err)
		return
	}
	if strings.TrimSpace(string(data)) == "" {
		w.logger.Debug("source is empty, skipping", "file", w.path)
		return
	}

	outcome, err := w.conv.Convert(ctx, convert.Request{Source: string(data), OutputPath: w.output})
	if ctx.Err() != nil {
		return
	}
	w.notify(outcome, err)
}
