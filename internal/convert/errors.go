// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

// Kind classifies a conversion failure so front ends can react without
// parsing messages.
type Kind string

const (
	// KindMissingDependency means java, the PlantUML jar, or every Batik
	// artifact could not be located. No process was started.
	KindMissingDependency Kind = "missing_dependency"

	// KindToolFailed means PlantUML exited non-zero, or every PDF strategy
	// failed.
	KindToolFailed Kind = "tool_failed"

	// KindMissingOutput means a tool reported success but its file is absent.
	KindMissingOutput Kind = "missing_output"

	// KindFilesystem means the workspace or the final PDF could not be
	// written.
	KindFilesystem Kind = "filesystem"

	// KindCanceled means the caller's context ended mid-conversion.
	KindCanceled Kind = "canceled"
)

var kindLabels = map[Kind]string{
	KindMissingDependency: "missing dependency",
	KindToolFailed:        "tool failed",
	KindMissingOutput:     "missing output",
	KindFilesystem:        "filesystem error",
	KindCanceled:          "canceled",
}

func (k Kind) String() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// Error is returned by Pipeline.Convert for every failure.
type Error struct {
	Kind Kind
	// Tool names the component involved: "java", "plantuml", "batik", "output".
	Tool string
	// Path is the file the failure concerns, when there is one.
	Path string
	// Searched lists the locations consulted for a missing dependency.
	Searched []string
	// Attempts holds the external invocations relevant to the failure.
	Attempts []types.Attempt
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Tool != "" {
		b.WriteString(": ")
		b.WriteString(e.Tool)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	for _, s := range e.Searched {
		b.WriteString("\n  ")
		b.WriteString(s)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not a conversion error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
