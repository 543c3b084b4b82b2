// Package session owns one long-lived reactive evaluation session: the
// shared namespace, the predeclared-name registry, the cell executor,
// and the dependency tracker.
//
// Submitting a snippet analyzes it into a code unit, registers it in
// the dependency graph (a resubmission binding the same output name
// replaces the previous definition of that cell), executes it, and then
// re-executes every unit that transitively depends on its outputs, in
// topological order. Graph updates happen inside a transaction so a
// submission that would introduce a cycle leaves the graph untouched.
//
// Contract:
// - Concurrency: a Session serializes submissions internally; at most
//   one execution is in flight at a time (the capture scopes it relies
//   on are process-wide).
// - Ownership: results are caller-owned; the namespace lives for the
//   session and is mutated in place.
package session
