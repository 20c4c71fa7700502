// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates how a mindmap conversion ended.
type ConversionStatus string

const (
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// Attempt records a single external tool invocation made during a conversion.
type Attempt struct {
	// Strategy names the step or candidate that issued the command
	// (e.g. "plantuml", "batik-lib-main", "rsvg-convert").
	Strategy string `json:"strategy" yaml:"strategy"`

	// Command is the full argument vector, program first.
	Command []string `json:"command" yaml:"command"`

	// ExitCode is the process exit status, or -1 when the process never started
	// or was killed.
	ExitCode int `json:"exit_code" yaml:"exit_code"`

	Stdout string `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty" yaml:"stderr,omitempty"`

	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Succeeded reports whether the command exited with status zero.
func (a Attempt) Succeeded() bool {
	return a.ExitCode == 0
}

// Outcome is the structured result of one conversion request. It is returned
// for successful and failed conversions alike.
type Outcome struct {
	// ID uniquely identifies the conversion.
	ID string `json:"id" yaml:"id"`

	Status ConversionStatus `json:"status" yaml:"status"`

	// OutputPath is the requested (or synthesized) PDF destination.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Strategy names the PDF strategy that produced the file, empty on failure.
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`

	Attempts []Attempt `json:"attempts" yaml:"attempts"`

	// ErrorKind and Error describe the failure, empty on success.
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`

	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}
