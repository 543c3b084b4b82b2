// Package capture provides the scoped redirection of the process-wide
// output singletons for the duration of one cell execution.
//
// A Scope swaps os.Stdout and os.Stderr for pipes drained into
// in-memory buffers and installs a display handler as the current
// target for values a cell surfaces. Exit restores the previous streams
// and handler unconditionally and is safe to call more than once.
//
// Only one Scope may be active at a time process-wide; Enter fails with
// ErrCaptureActive otherwise. Callers that need concurrency must
// serialize executions externally.
//
// Contract:
// - Concurrency: Enter/Exit/Display are safe to call from multiple
//   goroutines; captured text accessors are valid only after Exit.
// - Ownership: the display handler is invoked synchronously and must
//   not call Enter.
package capture
