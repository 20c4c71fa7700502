// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mindmap-pdf/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion form over HTTP",
	Long: `Serve starts an HTTP server with a page for pasting mindmap text and
downloading the PDF. POST /convert accepts a "source" form field or a
text/plain body and returns the PDF. GET /healthz reports whether the tools
were found and GET /metrics exposes prometheus metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if !a.tools.Ready() {
		a.logger.Warn("some tools are missing; conversions will fail until they are installed", "base_dir", a.tools.BaseDir)
	}

	opts := []server.Option{
		server.WithLogger(a.logger),
		server.WithMaxConcurrent(a.cfg.Server.MaxConcurrent),
	}
	store, err := a.openHistory()
	if err != nil {
		a.logger.Warn("opening history", "error", err)
	} else if store != nil {
		defer store.Close()
		opts = append(opts, server.WithRecorder(store))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.pipeline(cmd.ErrOrStderr()), opts...)
	return srv.ListenAndServe(ctx, a.cfg.Server.Addr)
}

func init() {
	serveCmd.Flags().StringP("addr", "a", server.DefaultAddr, "listen address")
	serveCmd.Flags().Int("max-concurrent", server.DefaultMaxConcurrent, "maximum simultaneous conversions")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.max_concurrent", serveCmd.Flags().Lookup("max-concurrent"))

	rootCmd.AddCommand(serveCmd)
}
