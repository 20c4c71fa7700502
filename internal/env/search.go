// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package env

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// errFound stops a walk once a match has been recorded.
var errFound = errors.New("found")

// FindJarRecursive walks root in lexical order and returns the first .jar
// file whose lowercased name equals or contains one of hints. Hints must be
// lowercase. Unreadable directories are skipped. It returns "" when nothing
// matches or root does not exist.
func FindJarRecursive(fs afero.Fs, root string, hints []string) string {
	var match string
	_ = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		name := strings.ToLower(info.Name())
		if !strings.HasSuffix(name, ".jar") {
			return nil
		}
		for _, hint := range hints {
			if name == hint || strings.Contains(name, hint) {
				match = path
				return errFound
			}
		}
		return nil
	})
	return match
}

// FindBatikLibDirectory returns the lib/ directory of the first Batik
// distribution under root: a directory whose name contains "batik" with a
// lib subdirectory holding at least one jar.
func FindBatikLibDirectory(fs afero.Fs, root string) string {
	var match string
	_ = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || !info.IsDir() {
			return nil
		}
		if !strings.Contains(strings.ToLower(info.Name()), "batik") {
			return nil
		}
		lib := filepath.Join(path, "lib")
		if hasJar(fs, lib) {
			match = lib
			return errFound
		}
		return nil
	})
	return match
}

func hasJar(fs afero.Fs, dir string) bool {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".jar") {
			return true
		}
	}
	return false
}

func lowerBase(path string) string {
	return strings.ToLower(filepath.Base(path))
}
