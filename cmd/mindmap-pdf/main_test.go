// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mindmap-pdf/internal/convert"
	"github.com/pdiddy/mindmap-pdf/internal/env"
	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

func TestLoadConfig_Defaults(t *testing.T) {
	initConfig()
	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, convert.DefaultTimeout, cfg.Conversion.Timeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Server.MaxConcurrent)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.False(t, cfg.History.Disabled)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("MINDMAP_PDF_CONVERSION_TIMEOUT", "30s")
	t.Setenv("MINDMAP_PDF_TOOLS_PLANTUML_JAR", "/opt/plantuml.jar")
	t.Setenv("MINDMAP_PDF_HISTORY_DISABLED", "true")
	initConfig()

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Conversion.Timeout)
	assert.Equal(t, "/opt/plantuml.jar", cfg.Tools.PlantUMLJar)
	assert.True(t, cfg.History.Disabled)
}

func TestReadConvertSource(t *testing.T) {
	t.Run("file argument", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "map.puml")
		require.NoError(t, os.WriteFile(path, []byte("@startmindmap\n* Root\n@endmindmap\nEND\n"), 0o644))

		got, err := readConvertSource(&cobra.Command{}, []string{path})
		require.NoError(t, err)
		assert.Equal(t, "@startmindmap\n* Root\n@endmindmap\nEND\n", got, "files are read whole")
	})

	t.Run("stdin until END", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader("* a\n** b\nEND\n* ignored\n"))
		var errOut bytes.Buffer
		cmd.SetErr(&errOut)

		got, err := readConvertSource(cmd, nil)
		require.NoError(t, err)
		assert.Equal(t, "* a\n** b\n", got)
		assert.Empty(t, errOut.String(), "no prompt when input is not a terminal")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readConvertSource(&cobra.Command{}, []string{filepath.Join(t.TempDir(), "nope.puml")})
		assert.Error(t, err)
	})
}

func TestStatusReportOutcome(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		newStatus(&buf).reportOutcome(&types.Outcome{OutputPath: "/x/out.pdf", Strategy: "batik-all-main"}, nil)
		assert.Equal(t, "✅ PDF generated successfully: /x/out.pdf (batik-all-main)\n", buf.String())
	})

	t.Run("plantuml failure prints transcript", func(t *testing.T) {
		var buf bytes.Buffer
		err := &convert.Error{
			Kind: convert.KindToolFailed,
			Tool: "plantuml",
			Attempts: []types.Attempt{
				{Command: []string{"java", "-jar", "plantuml.jar"}, ExitCode: 1, Stderr: "Syntax Error?"},
			},
			Err: errors.New("exit status 1"),
		}
		newStatus(&buf).reportOutcome(&types.Outcome{}, err)

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "❌ Error: tool failed: plantuml: exit status 1\n"))
		assert.Contains(t, out, "CMD: java -jar plantuml.jar")
		assert.Contains(t, out, "Syntax Error?")
	})

	t.Run("missing dependency has no transcript", func(t *testing.T) {
		var buf bytes.Buffer
		err := &convert.Error{Kind: convert.KindMissingDependency, Tool: "java", Err: errors.New("not found")}
		newStatus(&buf).reportOutcome(&types.Outcome{}, err)
		assert.NotContains(t, buf.String(), "CMD:")
	})
}

func TestConvertCommand_FailedRunLeavesBaseDirEmpty(t *testing.T) {
	baseDir := t.TempDir()
	dataHome := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv(env.EnvBaseDir, baseDir)
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("PATH", "")
	t.Setenv("JAVA_HOME", "")
	xdg.Reload()

	var out bytes.Buffer
	rootCmd.SetArgs([]string{"convert", "-o", filepath.Join(t.TempDir(), "out.pdf")})
	rootCmd.SetIn(strings.NewReader("@startmindmap\n* Root\n@endmindmap\nEND\n"))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, out.String(), "missing dependency")

	entries, err := os.ReadDir(baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing may be written into the base directory")
	assert.FileExists(t, filepath.Join(dataHome, "mindmap-pdf", "history.db"))
}
