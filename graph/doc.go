// Package graph tracks dependencies between code units and maintains an
// incremental topological ordering of them.
//
// The tracker follows the incremental algorithm of Pearce and Kelly
// ("A Dynamic Topological Sort Algorithm for Directed Acyclic Graphs",
// JEA 2007): adding an edge reorders only the affected region between
// the two endpoints, and a cycle is detected while discovering that
// region. Cycles are not supported by the reactive model; AddEdge
// reports ErrCycle and the caller is expected to roll the enclosing
// transaction back.
//
// All tracker state lives in transactional collections (TxMap, TxSet)
// so a batch of node and edge updates can be committed or rolled back
// as a unit.
//
// Contract:
// - Concurrency: a Tracker is not safe for concurrent use; callers
//   serialize access.
// - Errors: ErrDuplicateNode / ErrNodeNotFound / ErrEdgeNotFound /
//   ErrCycle, matched with errors.Is.
package graph
