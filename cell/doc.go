// Package cell executes snippet statements against the shared namespace
// and collects every side effect into a structured Result.
//
// The executor never lets an ordinary user-code fault escape a call:
// runtime failures, resolution failures, and parse failures are
// rendered through the configured TracebackRenderer into the captured
// stderr and reported via the Result's failure fields. The single
// exception is RunCoroutine's propagate list, which names fault types
// that bypass capture-and-report and re-raise out of the call after
// stream restoration (the cooperative cancellation path).
//
// # Execution shape
//
// RunCell parses the snippet, and when the final statement is a
// single-target assignment to a bare identifier it appends a synthetic
// trailing expression evaluating that identifier, so the freshly bound
// value also reaches the display path. Everything before a trailing
// bare expression executes as one REPL chunk against the namespace;
// the trailing expression, if any, evaluates separately and its value
// is routed to the display handler.
//
// # Concurrency
//
// Execution is single-threaded and cooperative. At most one of
// RunCell/RunCoroutine may be active at a time because both acquire the
// process-wide output singletons through a capture scope; callers must
// serialize invocations. RunCell never suspends; RunCoroutine's only
// suspension point is the awaited computation.
//
// Contract:
// - Errors: RunCell never returns an error; RunCoroutine returns one
//   only for propagated signals.
// - Ownership: the returned Result is caller-owned; the namespace is
//   shared and mutated in place, never replaced.
package cell
