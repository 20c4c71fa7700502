// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"path/filepath"

	"github.com/pdiddy/mindmap-pdf/internal/env"
	"github.com/pdiddy/mindmap-pdf/internal/runner"
)

const (
	classRasterizerMain = "org.apache.batik.apps.rasterizer.Main"
	classSVGConverter   = "org.apache.batik.apps.rasterizer.SVGConverter"
	mimePDF             = "application/pdf"
)

// Strategy is one candidate invocation for turning the rendered SVG into a
// PDF inside the workspace. A strategy succeeds when its command exits zero.
type Strategy struct {
	Name    string
	Command runner.Command
}

// BatikStrategies returns the Batik invocations to try, in order: the lib
// directory classpath (Main, then SVGConverter), the all-in-one jar
// classpath (Main, then SVGConverter), then the standalone rasterizer jar.
// Only candidates whose artifacts were located are included.
func BatikStrategies(t env.Tools, outDir, svgPath string) []Strategy {
	rasterArgs := []string{"-m", mimePDF, "-d", outDir, svgPath}

	classpath := func(name, cp, class string) Strategy {
		args := append([]string{"-cp", cp, class}, rasterArgs...)
		return Strategy{Name: name, Command: runner.Command{Name: t.Java, Args: args}}
	}

	var out []Strategy
	if t.BatikLibDir != "" {
		cp := filepath.Join(t.BatikLibDir, "*")
		out = append(out,
			classpath("batik-lib-main", cp, classRasterizerMain),
			classpath("batik-lib-svgconverter", cp, classSVGConverter),
		)
	}
	if t.BatikAllJar != "" {
		out = append(out,
			classpath("batik-all-main", t.BatikAllJar, classRasterizerMain),
			classpath("batik-all-svgconverter", t.BatikAllJar, classSVGConverter),
		)
	}
	if t.BatikRasterizerJar != "" && isRegular(t.BatikRasterizerJar) {
		args := append([]string{"-jar", t.BatikRasterizerJar}, rasterArgs...)
		out = append(out, Strategy{
			Name:    "batik-rasterizer-jar",
			Command: runner.Command{Name: t.Java, Args: args},
		})
	}
	return out
}

// plantUMLCommand renders pumlPath to SVG next to it.
func plantUMLCommand(t env.Tools, workDir, pumlPath string) runner.Command {
	return runner.Command{
		Name: t.Java,
		Args: []string{"-jar", t.PlantUMLJar, "-tsvg", pumlPath},
		Dir:  workDir,
	}
}
