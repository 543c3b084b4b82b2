package graph

import "errors"

// Sentinel errors for error classification.
var (
	// ErrDuplicateNode indicates the tracker already contains the node.
	ErrDuplicateNode = errors.New("graph: node already present")

	// ErrNodeNotFound indicates a node is missing from the tracker.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrEdgeNotFound indicates an edge is missing from the tracker.
	ErrEdgeNotFound = errors.New("graph: edge not found")

	// ErrCycle indicates an added edge would introduce a cycle.
	ErrCycle = errors.New("graph: edge introduces a cycle")

	// ErrNoTransaction indicates Commit was called with no transaction
	// open.
	ErrNoTransaction = errors.New("graph: no transaction in progress")
)
