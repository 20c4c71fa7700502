// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mindmap-pdf/internal/env"
	"github.com/pdiddy/mindmap-pdf/internal/logging"
	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

func TestReadSource(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "stops at sentinel",
			input: "@startmindmap\n* Root\n@endmindmap\nEND\nignored\n",
			want:  "@startmindmap\n* Root\n@endmindmap\n",
		},
		{
			name:  "sentinel with surrounding whitespace",
			input: "* a\n   END  \r\n* b\n",
			want:  "* a\n",
		},
		{
			name:  "EOF without sentinel",
			input: "* a\n* b",
			want:  "* a\n* b",
		},
		{
			name:  "sentinel must be the whole line",
			input: "* ENDING\nEND\n",
			want:  "* ENDING\n",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadSource(strings.NewReader(tt.input), EndSentinel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 59, 58, 0, time.UTC)
	assert.Equal(t,
		filepath.Join("/base", "output_mindmap_20241231_235958.pdf"),
		DefaultOutputPath("/base", now))
}

func TestUniqueOutputPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.pdf")
	assert.Equal(t, path, uniqueOutputPath(path))

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "map_2.pdf"), uniqueOutputPath(path))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "map_2.pdf"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "map_3.pdf"), uniqueOutputPath(path))
}

func TestMoveFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "base.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0o644))
	dst := filepath.Join(t.TempDir(), "a", "b", "out.pdf")

	require.NoError(t, moveFile(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.NoFileExists(t, src)
}

func TestCopyInto(t *testing.T) {
	src := filepath.Join(t.TempDir(), "base.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.7 body"), 0o644))
	dstDir := t.TempDir()
	dst := filepath.Join(dstDir, "out.pdf")

	require.NoError(t, copyInto(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 body", string(data))

	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary copy must be renamed away")
}

func TestWorkspaceFind(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir(), logging.NewNop())
	require.NoError(t, err)
	defer ws.Remove()

	assert.Empty(t, ws.Find("diagram.svg", ".svg"))

	require.NoError(t, os.WriteFile(ws.Path("zeta.SVG"), nil, 0o644))
	require.NoError(t, os.WriteFile(ws.Path("beta.svg"), nil, 0o644))
	assert.Equal(t, ws.Path("beta.svg"), ws.Find("diagram.svg", ".svg"), "first by name when exact file absent")

	require.NoError(t, os.WriteFile(ws.Path("diagram.svg"), nil, 0o644))
	assert.Equal(t, ws.Path("diagram.svg"), ws.Find("diagram.svg", ".svg"))

	require.NoError(t, os.Mkdir(ws.Path("dir.pdf"), 0o755))
	assert.Empty(t, ws.Find("diagram.pdf", ".pdf"), "directories are not outputs")
}

func TestWorkspaceRemove(t *testing.T) {
	parent := t.TempDir()
	ws, err := NewWorkspace(parent, logging.NewNop())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(ws.Dir), workspacePrefix))
	require.NoError(t, os.WriteFile(ws.Path("diagram.puml"), []byte("x"), 0o644))

	ws.Remove()
	assert.NoDirExists(t, ws.Dir)
	ws.Remove() // idempotent
}

func TestBatikStrategies(t *testing.T) {
	dir := t.TempDir()
	raster := filepath.Join(dir, "batik-rasterizer-1.19.jar")
	require.NoError(t, os.WriteFile(raster, nil, 0o644))

	tools := env.Tools{
		Java:               "java",
		BatikLibDir:        "/opt/batik/lib",
		BatikAllJar:        "/opt/batik-all-1.19.jar",
		BatikRasterizerJar: raster,
	}
	got := BatikStrategies(tools, "/ws", "/ws/diagram.svg")

	var names []string
	for _, s := range got {
		names = append(names, s.Name)
		assert.Equal(t, "java", s.Command.Name)
		assert.Equal(t, []string{"-m", "application/pdf", "-d", "/ws", "/ws/diagram.svg"}, s.Command.Args[len(s.Command.Args)-5:])
	}
	assert.Equal(t, []string{
		"batik-lib-main",
		"batik-lib-svgconverter",
		"batik-all-main",
		"batik-all-svgconverter",
		"batik-rasterizer-jar",
	}, names)

	assert.Equal(t, []string{"-cp", filepath.Join("/opt/batik/lib", "*"), classRasterizerMain}, got[0].Command.Args[:3])
	assert.Equal(t, []string{"-cp", "/opt/batik-all-1.19.jar", classSVGConverter}, got[3].Command.Args[:3])
	assert.Equal(t, []string{"-jar", raster}, got[4].Command.Args[:2])
}

func TestBatikStrategies_SkipsAbsentArtifacts(t *testing.T) {
	tools := env.Tools{
		Java:               "java",
		BatikRasterizerJar: "/does/not/exist.jar",
	}
	assert.Empty(t, BatikStrategies(tools, "/ws", "/ws/d.svg"))

	tools.BatikAllJar = "/opt/batik-all.jar"
	got := BatikStrategies(tools, "/ws", "/ws/d.svg")
	require.Len(t, got, 2)
	assert.Equal(t, "batik-all-main", got[0].Name)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "tool failure",
			err:  &Error{Kind: KindToolFailed, Tool: "plantuml", Err: errors.New("exit status 1")},
			want: "tool failed: plantuml: exit status 1",
		},
		{
			name: "with path",
			err:  &Error{Kind: KindFilesystem, Tool: "output", Path: "/x/out.pdf", Err: errors.New("permission denied")},
			want: "filesystem error: output: permission denied (/x/out.pdf)",
		},
		{
			name: "with searched locations",
			err: &Error{
				Kind:     KindMissingDependency,
				Tool:     "batik",
				Searched: []string{"base dir: /b", "working dir: /w"},
				Err:      errors.New("not found"),
			},
			want: "missing dependency: batik: not found\n  base dir: /b\n  working dir: /w",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	inner := &Error{Kind: KindCanceled, Err: context.Canceled}
	wrapped := errors.Join(errors.New("outer"), inner)

	assert.Equal(t, KindCanceled, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.ErrorIs(t, inner, context.Canceled)
	assert.Equal(t, "canceled", KindCanceled.String())
	assert.Equal(t, "odd", Kind("odd").String())
}

func TestWriteTranscript(t *testing.T) {
	var buf bytes.Buffer
	WriteTranscript(&buf, []types.Attempt{
		{Command: []string{"java", "-jar", "b.jar"}, ExitCode: 1, Stderr: "boom"},
		{Command: []string{"rsvg-convert"}, ExitCode: 0, Stdout: "ok"},
	})

	want := "CMD: java -jar b.jar\nRET: 1\nSTDERR:\nboom\n---\n" +
		"CMD: rsvg-convert\nRET: 0\nSTDOUT:\nok\n---\n"
	assert.Equal(t, want, buf.String())
}
