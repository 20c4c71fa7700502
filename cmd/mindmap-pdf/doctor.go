// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report where java, PlantUML and Batik were found",
	Long: `Doctor resolves the base directory and every external tool the same way
convert does, and prints what was found. It exits non-zero when a required
tool is missing.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	md := a.tools.Markdown()
	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		fmt.Fprint(cmd.OutOrStdout(), md)
	} else {
		fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(md))
	}

	if !a.tools.Ready() {
		return errReported
	}
	return nil
}

func init() {
	doctorCmd.Flags().Bool("plain", false, "print markdown without terminal styling")

	rootCmd.AddCommand(doctorCmd)
}
