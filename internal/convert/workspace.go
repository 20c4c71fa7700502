// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const workspacePrefix = "mindmap_"

// Workspace is the per-conversion temporary directory holding the .puml
// source and the rendered .svg and .pdf.
type Workspace struct {
	Dir    string
	logger *slog.Logger
}

// NewWorkspace creates a fresh directory under parent (the system temp dir
// when parent is empty). Callers must Remove it.
func NewWorkspace(parent string, logger *slog.Logger) (*Workspace, error) {
	dir, err := os.MkdirTemp(parent, workspacePrefix)
	if err != nil {
		return nil, err
	}
	return &Workspace{Dir: dir, logger: logger}, nil
}

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Find returns the workspace file called name if it exists, otherwise the
// first file (in name order) with extension ext. It returns "" when
// neither exists.
func (w *Workspace) Find(name, ext string) string {
	if p := w.Path(name); isRegular(p) {
		return p
	}
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return w.Path(names[0])
}

// Remove deletes the workspace and everything in it. Failures are logged,
// never returned.
func (w *Workspace) Remove() {
	if err := os.RemoveAll(w.Dir); err != nil {
		w.logger.Warn("could not remove workspace", "dir", w.Dir, "error", err)
		return
	}
	w.logger.Debug("removed workspace", "dir", w.Dir)
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
