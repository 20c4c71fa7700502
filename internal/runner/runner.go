// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runner executes external tools (the java launcher, rsvg-convert)
// and captures their exit status and output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

const waitDelay = 2 * time.Second

// Command describes one external process invocation.
type Command struct {
	// Name is the program to run, either a path or a name resolved on PATH.
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// Argv returns the full argument vector, program first.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Name)
	return append(argv, c.Args...)
}

// String renders the command the way a user would type it.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// Result holds the outcome of running a Command.
type Result struct {
	// ExitCode is the process exit status, or -1 when it never started or
	// was killed by a signal or context.
	ExitCode int
	Stdout   string
	Stderr   string
	// Err is non-nil whenever ExitCode is not zero.
	Err error
}

// Executor runs external commands. Production code uses OS; tests inject
// fakes that simulate the tools.
type Executor interface {
	// LookPath searches PATH for an executable named file.
	LookPath(file string) (string, error)

	// Run executes cmd and waits for it to exit. A non-zero exit is reported
	// in the Result rather than as a separate error.
	Run(ctx context.Context, cmd Command) Result
}

// OS is the production Executor backed by os/exec.
type OS struct{}

func (OS) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (OS) Run(ctx context.Context, c Command) Result {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	// Children of a killed JVM can hold the output pipes open.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}
	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else {
		// The process never started; surface the reason where a user
		// would look for it.
		res.ExitCode = -1
		if res.Stderr == "" {
			res.Stderr = err.Error()
		}
	}
	if ctx.Err() != nil {
		res.ExitCode = -1
		res.Err = ctx.Err()
	}
	return res
}
