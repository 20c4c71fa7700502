// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultOutputPrefix = "output_mindmap_"
	timestampLayout     = "20060102_150405"
)

// DefaultOutputPath returns <dir>/output_mindmap_<YYYYMMDD_HHMMSS>.pdf.
func DefaultOutputPath(dir string, now time.Time) string {
	return filepath.Join(dir, defaultOutputPrefix+now.Format(timestampLayout)+".pdf")
}

// uniqueOutputPath returns path unchanged if nothing exists there, otherwise
// the first free path with a _2, _3, ... suffix before the extension.
func uniqueOutputPath(path string) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

// moveFile renames src to dst, creating dst's directory. When a rename is
// impossible (e.g. across filesystems) it copies into a temporary file in
// dst's directory and renames that into place.
func moveFile(src, dst string) error {
	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	if err := copyInto(src, dst); err != nil {
		return errors.Join(renameErr, err)
	}
	_ = os.Remove(src)
	return nil
}

func copyInto(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".mindmap-*.pdf")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
