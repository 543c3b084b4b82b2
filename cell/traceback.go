package cell

import (
	"errors"
	"fmt"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/reactivekit/starcell/codeunit"
)

// Frame is one call-stack entry of a runtime failure.
type Frame struct {
	Function string
	Position string
}

// FrameSummary is one source position of a syntax-class failure.
type FrameSummary struct {
	Position string
	Message  string
}

// TracebackRenderer turns captured failures into the text appended to a
// cell's stderr. The executor selects RenderSyntax iff the failure is
// syntax-class (parse or static resolution); everything else goes
// through RenderRuntime.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ownership: stack and frame slices are read-only.
type TracebackRenderer interface {
	// RenderRuntime renders a runtime failure with its call stack.
	RenderRuntime(class, msg string, stack []Frame) string

	// RenderSyntax renders a syntax-class failure from its source
	// position summaries.
	RenderSyntax(class, msg string, frames []FrameSummary) string
}

// Plain renders tracebacks as unstyled text.
type Plain struct{}

// RenderRuntime implements TracebackRenderer.
func (Plain) RenderRuntime(class, msg string, stack []Frame) string {
	var b strings.Builder
	if len(stack) > 0 {
		b.WriteString("Traceback (most recent call last):\n")
		for _, f := range stack {
			fmt.Fprintf(&b, "  %s: in %s\n", f.Position, f.Function)
		}
	}
	if class == "" {
		class = "Error"
	}
	fmt.Fprintf(&b, "%s: %s\n", class, msg)
	return b.String()
}

// RenderSyntax implements TracebackRenderer.
func (Plain) RenderSyntax(class, msg string, frames []FrameSummary) string {
	var b strings.Builder
	if class == "" {
		class = "SyntaxError"
	}
	fmt.Fprintf(&b, "%s: %s\n", class, msg)
	for _, f := range frames {
		if f.Message != "" && f.Message != msg {
			fmt.Fprintf(&b, "  %s: %s\n", f.Position, f.Message)
		} else {
			fmt.Fprintf(&b, "  at %s\n", f.Position)
		}
	}
	return b.String()
}

// isSyntaxClass reports whether err is a parse or static resolution
// failure rather than a runtime fault.
func isSyntaxClass(err error) bool {
	var srcErr *codeunit.SourceError
	var synErr syntax.Error
	var list resolve.ErrorList
	var rerr resolve.Error
	return errors.As(err, &srcErr) ||
		errors.As(err, &synErr) ||
		errors.As(err, &list) ||
		errors.As(err, &rerr)
}

// syntaxInfo extracts the class, message, and position summaries of a
// syntax-class failure.
func syntaxInfo(err error) (class, msg string, frames []FrameSummary) {
	var list resolve.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		for _, e := range list {
			frames = append(frames, FrameSummary{Position: e.Pos.String(), Message: e.Msg})
		}
		return "ResolveError", list[0].Msg, frames
	}

	var rerr resolve.Error
	if errors.As(err, &rerr) {
		return "ResolveError", rerr.Msg, []FrameSummary{{Position: rerr.Pos.String(), Message: rerr.Msg}}
	}

	var synErr syntax.Error
	if errors.As(err, &synErr) {
		return "SyntaxError", synErr.Msg, []FrameSummary{{Position: synErr.Pos.String(), Message: synErr.Msg}}
	}

	var srcErr *codeunit.SourceError
	if errors.As(err, &srcErr) {
		pos := fmt.Sprintf("%d:%d", srcErr.Line, srcErr.Col)
		return "SyntaxError", srcErr.Msg, []FrameSummary{{Position: pos, Message: srcErr.Msg}}
	}

	return "SyntaxError", err.Error(), nil
}

// runtimeInfo extracts the class, message, and call stack of a runtime
// failure.
func runtimeInfo(err error) (class, msg string, stack []Frame) {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		stack = make([]Frame, 0, len(evalErr.CallStack))
		for _, fr := range evalErr.CallStack {
			stack = append(stack, Frame{Function: fr.Name, Position: fr.Pos.String()})
		}
		return "EvalError", evalErr.Msg, stack
	}
	return "Error", err.Error(), nil
}
