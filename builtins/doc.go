// Package builtins maintains the registry of predeclared names: the
// Starlark universe plus whatever values the host session installs
// (display hooks, data sources, helper functions).
//
// The registry answers two needs. Code-unit analysis asks it whether a
// free reference is predeclared (and therefore not a cell input), and
// the session asks it for the value bindings to seed a fresh namespace
// with.
//
// Contract:
// - Concurrency: a Registry is safe for concurrent use.
// - Ownership: Bindings returns a copy; mutating it does not affect the
//   registry.
package builtins
