// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package env locates everything the conversion pipeline needs: the base
// installation directory, a java launcher, the PlantUML jar, and the Batik
// artifacts. Presence is confirmed by name only; absent tools are reported
// as empty paths and diagnosed later by the pipeline.
package env

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"

	"github.com/pdiddy/mindmap-pdf/internal/runner"
	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

// EnvBaseDir names the environment variable that overrides the base directory.
const EnvBaseDir = "MYMINDMAP_BASE_DIR"

// resourcesDir is the bundled-resources directory looked for next to the
// running executable.
const resourcesDir = "resources"

var (
	plantUMLHints        = []string{"plantuml.jar", "plantuml"}
	batikRasterizerHints = []string{"batik-rasterizer-1.19.jar", "batik-rasterizer"}
	batikAllHints        = []string{"batik-all-1.19.jar", "batik-all"}
	batikCwdHints        = []string{"batik-all-1.19.jar", "batik-all", "batik-rasterizer-1.19.jar"}
)

// Resolver discovers tool locations. All filesystem and process lookups go
// through injectable fields so tests can run against an in-memory tree.
type Resolver struct {
	fs         afero.Fs
	exec       runner.Executor
	getenv     func(string) string
	executable func() (string, error)
	getwd      func() (string, error)
	goos       string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFs replaces the filesystem walked during discovery.
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) { r.fs = fs }
}

// WithExecutor replaces the PATH lookup implementation.
func WithExecutor(e runner.Executor) Option {
	return func(r *Resolver) { r.exec = e }
}

// WithGetenv replaces os.Getenv.
func WithGetenv(fn func(string) string) Option {
	return func(r *Resolver) { r.getenv = fn }
}

// WithExecutable replaces os.Executable.
func WithExecutable(fn func() (string, error)) Option {
	return func(r *Resolver) { r.executable = fn }
}

// WithGetwd replaces os.Getwd.
func WithGetwd(fn func() (string, error)) Option {
	return func(r *Resolver) { r.getwd = fn }
}

// WithGOOS selects the platform whose java install roots are searched.
func WithGOOS(goos string) Option {
	return func(r *Resolver) { r.goos = goos }
}

// NewResolver returns a Resolver backed by the real OS.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		fs:         afero.NewOsFs(),
		exec:       runner.OS{},
		getenv:     os.Getenv,
		executable: os.Executable,
		getwd:      os.Getwd,
		goos:       runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseDirectory returns the installation directory. The environment override
// wins; otherwise a resources/ directory bundled beside the executable, then
// the executable's own directory, then the working directory. It never fails.
func (r *Resolver) BaseDirectory() string {
	if v := r.getenv(EnvBaseDir); v != "" {
		return v
	}

	exe, err := r.executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dir := filepath.Dir(exe)
		bundled := filepath.Join(dir, resourcesDir)
		if ok, _ := afero.DirExists(r.fs, bundled); ok {
			return bundled
		}
		return dir
	}

	if wd, err := r.getwd(); err == nil {
		return wd
	}
	return "."
}

// Resolve locates every tool relative to baseDir. Non-empty fields in
// overrides replace discovered values. An empty baseDir is resolved with
// BaseDirectory.
func (r *Resolver) Resolve(baseDir string, overrides types.ToolsConfig) Tools {
	if baseDir == "" {
		baseDir = r.BaseDirectory()
	}
	cwd, _ := r.getwd()

	t := Tools{BaseDir: baseDir, WorkDir: cwd}
	if overrides.Java == "" {
		t.Java = r.FindJavaExecutable()
	}

	t.PlantUMLJar = FindJarRecursive(r.fs, baseDir, plantUMLHints)
	if t.PlantUMLJar == "" && cwd != "" {
		t.PlantUMLJar = FindJarRecursive(r.fs, cwd, plantUMLHints)
	}

	t.BatikRasterizerJar = FindJarRecursive(r.fs, baseDir, batikRasterizerHints)
	if t.BatikRasterizerJar == "" {
		t.BatikAllJar = FindJarRecursive(r.fs, baseDir, batikAllHints)
	}
	t.BatikLibDir = FindBatikLibDirectory(r.fs, baseDir)

	if t.BatikRasterizerJar == "" && t.BatikAllJar == "" && cwd != "" {
		if found := FindJarRecursive(r.fs, cwd, batikCwdHints); found != "" {
			switch name := lowerBase(found); {
			case strings.Contains(name, "batik-all"):
				t.BatikAllJar = found
			case strings.Contains(name, "rasterizer"):
				t.BatikRasterizerJar = found
			}
		}
	}

	return t.withOverrides(overrides)
}
