// Package codeunit analyzes submitted Starlark snippets into code units:
// the identity-bearing representation of one cell that the dependency
// graph schedules and the executor runs.
//
// A code unit records three things about a snippet:
//
//   - Inputs: the ordered set of names the snippet reads from outside
//     itself (free/global references that are neither predeclared
//     builtins nor introduced by a load statement earlier in traversal
//     order).
//
//   - Outputs: the names the snippet binds at the top level. A snippet
//     may bind at most one non-load name; load statements may introduce
//     any number. Construction fails with ErrMultipleBindings otherwise.
//
//   - ID: a stable identity string derived from a keyed BLAKE2b digest.
//     When the snippet binds names, the digest covers only those names,
//     so two different bodies binding the same name under the same key
//     share an identity. This is deliberate: it is what lets the graph
//     treat a resubmission as "replace this cell" rather than "new
//     cell". Snippets with no bindings are content-addressed by source.
//
// The scope analysis behind both classifications is exposed as a
// lexical scope tree (see Scope) built in a single depth-first pass
// over the parsed syntax tree. The tree is never mutated after
// construction.
//
// Contract:
// - Concurrency: units and scope trees are immutable and safe to share.
// - Errors: parse failures surface as ErrMalformedSource (with a
//   SourceError carrying position info); invalid binding shapes as
//   ErrMultipleBindings. Callers use errors.Is.
// - Ownership: the Registry passed to New is only read.
package codeunit
