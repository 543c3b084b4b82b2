package codeunit

import (
	"errors"

	"go.starlark.net/syntax"
)

// FileOptions returns the Starlark dialect options cells are parsed and
// executed with. Cells are notebook chunks, not modules: top-level
// control flow, global reassignment, while loops, sets, recursion, and
// globally binding loads are all enabled.
func FileOptions() *syntax.FileOptions {
	return &syntax.FileOptions{
		Set:               true,
		While:             true,
		TopLevelControl:   true,
		GlobalReassign:    true,
		LoadBindsGlobally: true,
		Recursion:         true,
	}
}

// Parse parses a snippet into a syntax tree. Parse failures are
// reported as a SourceError matching ErrMalformedSource.
func Parse(name, src string) (*syntax.File, error) {
	f, err := FileOptions().Parse(name, src, 0)
	if err != nil {
		return nil, asSourceError(err)
	}
	return f, nil
}

// asSourceError converts a parser error into a SourceError, pulling
// position info out when the parser provides it.
func asSourceError(err error) error {
	var se syntax.Error
	if errors.As(err, &se) {
		return &SourceError{
			Msg:  se.Msg,
			Line: int(se.Pos.Line),
			Col:  int(se.Pos.Col),
			Err:  err,
		}
	}
	return &SourceError{Msg: err.Error(), Err: err}
}
