package cell

import (
	"time"

	"github.com/google/uuid"
	"go.starlark.net/starlark"
)

// Output is a displayed value together with the namespace name it was
// bound under.
type Output struct {
	Value starlark.Value
	Name  string
}

// Failure is the captured class/message/traceback triple of a failed
// execution.
type Failure struct {
	// Class labels the kind of failure (SyntaxError, EvalError, ...).
	Class string

	// Message is the failure message without the traceback.
	Message string

	// Traceback is the rendered traceback text, as appended to the
	// captured stderr.
	Traceback string
}

// Result accumulates everything one execution call produced. A Result
// is created fresh per call and owned by the caller afterward.
//
// Output and failure data are held behind accessors returning
// (value, ok) pairs, so "flag set" and "data present" cannot diverge.
type Result struct {
	// ID uniquely identifies this execution for downstream consumers.
	ID uuid.UUID

	// Stdout and Stderr hold the captured stream text. They are
	// populated on every outcome once the call completes.
	Stdout string
	Stderr string

	// Duration is the wall time of the call.
	Duration time.Duration

	captured bool
	output   *Output
	failure  *Failure
}

func newResult() *Result {
	return &Result{ID: uuid.New()}
}

func (r *Result) setIO(stdout, stderr string) {
	r.Stdout = stdout
	r.Stderr = stderr
	r.captured = true
}

func (r *Result) setOutput(v starlark.Value, name string) {
	r.output = &Output{Value: v, Name: name}
}

func (r *Result) setFailure(class, msg, traceback string) {
	r.failure = &Failure{Class: class, Message: msg, Traceback: traceback}
}

// HasOutput reports whether the execution produced a bound, displayed
// value.
func (r *Result) HasOutput() bool { return r.output != nil }

// Output returns the bound output value and its name.
func (r *Result) Output() (Output, bool) {
	if r.output == nil {
		return Output{}, false
	}
	return *r.output, true
}

// HasFailure reports whether the execution failed.
func (r *Result) HasFailure() bool { return r.failure != nil }

// Failure returns the captured failure triple.
func (r *Result) Failure() (Failure, bool) {
	if r.failure == nil {
		return Failure{}, false
	}
	return *r.failure, true
}

// OK reports whether the execution completed without failure.
func (r *Result) OK() bool { return r.failure == nil }

// Complete reports whether the result satisfies the completeness
// invariant: streams captured, and whichever of output/failure is
// flagged carries its full data. Callers may assert it; the executor
// does not enforce it.
func (r *Result) Complete() bool {
	if !r.captured {
		return false
	}
	if r.output != nil && (r.output.Value == nil || r.output.Name == "") {
		return false
	}
	if r.failure != nil && (r.failure.Class == "" || r.failure.Traceback == "") {
		return false
	}
	return true
}
