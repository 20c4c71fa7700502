// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package env

import (
	"fmt"
	"strings"

	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

// Tools is the immutable result of environment resolution. An empty field
// means the artifact was not found.
type Tools struct {
	// BaseDir is the installation directory that was searched.
	BaseDir string
	// WorkDir is the secondary search root for jars.
	WorkDir string

	Java               string
	PlantUMLJar        string
	BatikRasterizerJar string
	BatikAllJar        string
	BatikLibDir        string
}

// HasBatik reports whether any Batik artifact was located.
func (t Tools) HasBatik() bool {
	return t.BatikRasterizerJar != "" || t.BatikAllJar != "" || t.BatikLibDir != ""
}

// Searched lists every location consulted, for diagnostics.
func (t Tools) Searched() []string {
	return []string{
		"base dir: " + t.BaseDir,
		"working dir: " + t.WorkDir,
		"plantuml jar: " + orNone(t.PlantUMLJar),
		"batik rasterizer jar: " + orNone(t.BatikRasterizerJar),
		"batik all jar: " + orNone(t.BatikAllJar),
		"batik lib dir: " + orNone(t.BatikLibDir),
	}
}

func (t Tools) withOverrides(o types.ToolsConfig) Tools {
	if o.Java != "" {
		t.Java = o.Java
	}
	if o.PlantUMLJar != "" {
		t.PlantUMLJar = o.PlantUMLJar
	}
	if o.BatikRasterizerJar != "" {
		t.BatikRasterizerJar = o.BatikRasterizerJar
	}
	if o.BatikAllJar != "" {
		t.BatikAllJar = o.BatikAllJar
	}
	if o.BatikLibDir != "" {
		t.BatikLibDir = o.BatikLibDir
	}
	return t
}

// Markdown renders the resolved locations as a markdown report.
func (t Tools) Markdown() string {
	var b strings.Builder
	b.WriteString("# mindmap-pdf environment\n\n")
	fmt.Fprintf(&b, "Base directory: `%s`\n\n", t.BaseDir)
	b.WriteString("| Tool | Location | Version |\n")
	b.WriteString("|---|---|---|\n")
	rows := []struct{ name, path string }{
		{"java", t.Java},
		{"plantuml jar", t.PlantUMLJar},
		{"batik rasterizer jar", t.BatikRasterizerJar},
		{"batik all jar", t.BatikAllJar},
		{"batik lib dir", t.BatikLibDir},
	}
	for _, row := range rows {
		version := "-"
		if v, err := JarVersion(row.path); err == nil {
			version = v.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", row.name, orNone(row.path), version)
	}

	b.WriteString("\n")
	switch {
	case t.Java == "":
		b.WriteString("**Missing:** no java launcher found. Install Java and try again.\n")
	case t.PlantUMLJar == "":
		b.WriteString("**Missing:** plantuml.jar not found under the base or working directory.\n")
	case !t.HasBatik():
		b.WriteString("**Missing:** no Batik rasterizer jar, batik-all jar, or lib directory. " +
			"Place the Batik distribution inside the base directory or set " + EnvBaseDir + ".\n")
	default:
		b.WriteString("All required tools were found.\n")
	}
	return b.String()
}

// Ready reports whether every required tool was located.
func (t Tools) Ready() bool {
	return t.Java != "" && t.PlantUMLJar != "" && t.HasBatik()
}

func orNone(s string) string {
	if s == "" {
		return "(not found)"
	}
	return s
}
