// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package env

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

var jarVersionRe = regexp.MustCompile(`-(\d+(?:\.\d+){1,2}(?:-[0-9A-Za-z.]+)?)\.jar$`)

// JarVersion extracts the version embedded in a jar filename such as
// batik-all-1.19.jar or plantuml-1.2024.7.jar.
func JarVersion(path string) (*semver.Version, error) {
	m := jarVersionRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return nil, fmt.Errorf("no version in %q", filepath.Base(path))
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("parsing version of %s: %w", filepath.Base(path), err)
	}
	return v, nil
}
