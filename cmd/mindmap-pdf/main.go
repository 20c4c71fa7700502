// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the mindmap-pdf CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mindmap-pdf/internal/convert"
	"github.com/pdiddy/mindmap-pdf/internal/env"
	"github.com/pdiddy/mindmap-pdf/internal/history"
	"github.com/pdiddy/mindmap-pdf/internal/logging"
	"github.com/pdiddy/mindmap-pdf/internal/server"
	"github.com/pdiddy/mindmap-pdf/internal/watch"
	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// errReported marks a failure whose details were already printed.
var errReported = errors.New("failure already reported")

// rootCmd is the base command for the mindmap-pdf CLI.
var rootCmd = &cobra.Command{
	Use:   "mindmap-pdf",
	Short: "Convert PlantUML mindmaps to PDF",
	Long: `mindmap-pdf turns PlantUML mindmap text into a PDF. It renders the text to
SVG with the PlantUML jar, then converts the SVG to PDF with Apache Batik,
falling back to rsvg-convert when no Batik invocation works.

Java, plantuml.jar and a Batik distribution are located under the base
directory: $MYMINDMAP_BASE_DIR, a resources/ directory next to the binary,
or the binary's own directory. Run "mindmap-pdf doctor" to see what was found.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./mindmap-pdf.yaml or ~/.config/mindmap-pdf/mindmap-pdf.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("base-dir", "", "directory searched for plantuml.jar and Batik (overrides "+env.EnvBaseDir+")")

	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("tools.base_dir", pf.Lookup("base-dir"))

	setDefaults()
}

// setDefaults registers every key so environment variables can override
// values that appear in no config file.
func setDefaults() {
	viper.SetDefault("log_level", "info")
	for _, k := range []string{"base_dir", "java", "plantuml_jar", "batik_rasterizer_jar", "batik_all_jar", "batik_lib_dir"} {
		viper.SetDefault("tools."+k, "")
	}
	viper.SetDefault("conversion.output_dir", "")
	viper.SetDefault("conversion.timeout", convert.DefaultTimeout)
	viper.SetDefault("history.path", "")
	viper.SetDefault("history.disabled", false)
	viper.SetDefault("server.addr", server.DefaultAddr)
	viper.SetDefault("server.max_concurrent", server.DefaultMaxConcurrent)
	viper.SetDefault("watch.debounce", watch.DefaultDebounce)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mindmap-pdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mindmap-pdf"))
		}
	}

	viper.SetEnvPrefix("MINDMAP_PDF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged flags, environment and config file.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	return cfg, nil
}

// app bundles what every subcommand needs.
type app struct {
	cfg    types.Config
	logger *slog.Logger
	tools  env.Tools
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)

	tools := env.NewResolver().Resolve(cfg.Tools.BaseDir, cfg.Tools)
	logger.Debug("resolved tools",
		"base_dir", tools.BaseDir,
		"java", tools.Java,
		"plantuml", tools.PlantUMLJar,
		"batik_rasterizer", tools.BatikRasterizerJar,
		"batik_all", tools.BatikAllJar,
		"batik_lib", tools.BatikLibDir,
	)
	return &app{cfg: cfg, logger: logger, tools: tools}, nil
}

// pipeline builds a conversion pipeline that prints progress to out.
func (a *app) pipeline(out io.Writer) *convert.Pipeline {
	opts := []convert.Option{
		convert.WithLogger(a.logger),
		convert.WithOutput(out),
		convert.WithTimeout(a.cfg.Conversion.Timeout),
	}
	if a.cfg.Conversion.OutputDir != "" {
		opts = append(opts, convert.WithOutputDir(a.cfg.Conversion.OutputDir))
	}
	return convert.New(a.tools, opts...)
}

// openHistory opens the history store, or returns nil when history is
// disabled. The default location is per user, never the base directory.
func (a *app) openHistory() (*history.Store, error) {
	if a.cfg.History.Disabled {
		return nil, nil
	}
	path := a.cfg.History.Path
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return history.NewStore(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
