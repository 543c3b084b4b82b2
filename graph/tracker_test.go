package graph

import (
	"errors"
	"testing"
)

func newTracker(t *testing.T, nodes ...int) *Tracker[int] {
	t.Helper()
	tr := NewTracker[int]()
	for _, n := range nodes {
		if err := tr.AddNode(n); err != nil {
			t.Fatalf("AddNode(%d): %v", n, err)
		}
	}
	return tr
}

func addEdges(t *testing.T, tr *Tracker[int], edges [][2]int) {
	t.Helper()
	for _, e := range edges {
		if _, err := tr.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d, %d): %v", e[0], e[1], err)
		}
	}
}

// checkTopological fails unless every edge runs forward in the order.
func checkTopological(t *testing.T, tr *Tracker[int]) {
	t.Helper()
	pos := make(map[int]int)
	for i, n := range tr.Nodes(false) {
		pos[n] = i
	}
	for _, from := range tr.Nodes(false) {
		for _, to := range tr.Nodes(false) {
			if tr.HasEdge(from, to) && pos[from] >= pos[to] {
				t.Fatalf("edge %d -> %d violates order %v", from, to, tr.Nodes(false))
			}
		}
	}
}

func TestTracker_AddNodeOrdersByInsertion(t *testing.T) {
	tr := newTracker(t, 1, 2, 3, 4, 5, 6, 7)

	got := tr.Nodes(false)
	for i, n := range got {
		if n != i+1 {
			t.Fatalf("Nodes() = %v, want insertion order", got)
		}
	}
	rev := tr.Nodes(true)
	if rev[0] != 7 || rev[6] != 1 {
		t.Fatalf("Nodes(reverse) = %v", rev)
	}
}

func TestTracker_AddNodeDuplicate(t *testing.T) {
	tr := newTracker(t, 1)
	if err := tr.AddNode(1); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("AddNode error = %v, want ErrDuplicateNode", err)
	}
}

func TestTracker_AddEdgeForwardNeedsNoReorder(t *testing.T) {
	tr := newTracker(t, 1, 2, 3)
	addEdges(t, tr, [][2]int{{1, 2}, {2, 3}, {1, 3}})

	checkTopological(t, tr)
	if !tr.HasEdge(1, 2) || tr.HasEdge(2, 1) {
		t.Error("edge bookkeeping wrong")
	}
}

func TestTracker_AddEdgeDuplicate(t *testing.T) {
	tr := newTracker(t, 1, 2)

	added, err := tr.AddEdge(1, 2)
	if err != nil || !added {
		t.Fatalf("first AddEdge = %v, %v", added, err)
	}
	added, err = tr.AddEdge(1, 2)
	if err != nil {
		t.Fatalf("second AddEdge: %v", err)
	}
	if added {
		t.Error("duplicate edge reported as added")
	}
}

func TestTracker_AddEdgeMissingNode(t *testing.T) {
	tr := newTracker(t, 1)
	if _, err := tr.AddEdge(1, 99); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("AddEdge error = %v, want ErrNodeNotFound", err)
	}
}

func TestTracker_BackwardEdgesRepairOrder(t *testing.T) {
	tr := newTracker(t, 1, 2, 3, 4, 5, 6, 7)
	// every edge here points against the insertion order somewhere
	addEdges(t, tr, [][2]int{{4, 6}, {6, 2}, {2, 1}, {1, 3}, {3, 5}, {5, 7}})

	checkTopological(t, tr)

	got := tr.Nodes(false)
	want := []int{4, 6, 2, 1, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Nodes() = %v, want %v", got, want)
		}
	}
}

func TestTracker_CycleDetected(t *testing.T) {
	tr := newTracker(t, 1, 2, 3)
	addEdges(t, tr, [][2]int{{1, 2}, {2, 3}})

	if _, err := tr.AddEdge(3, 1); !errors.Is(err, ErrCycle) {
		t.Fatalf("AddEdge closing a cycle = %v, want ErrCycle", err)
	}
}

func TestTracker_SelfCycleDetected(t *testing.T) {
	tr := newTracker(t, 1)
	if _, err := tr.AddEdge(1, 1); !errors.Is(err, ErrCycle) {
		t.Fatalf("self edge = %v, want ErrCycle", err)
	}
}

func TestTracker_RollbackUndoesCycleDamage(t *testing.T) {
	tr := newTracker(t, 1, 2, 3)
	addEdges(t, tr, [][2]int{{1, 2}, {2, 3}})

	tr.Begin()
	if _, err := tr.AddEdge(3, 1); !errors.Is(err, ErrCycle) {
		t.Fatalf("AddEdge = %v, want ErrCycle", err)
	}
	tr.Rollback()

	if tr.HasEdge(3, 1) {
		t.Error("rolled-back edge survived")
	}
	checkTopological(t, tr)
}

func TestTracker_CommitKeepsTransactionWork(t *testing.T) {
	tr := newTracker(t, 1, 2)

	tr.Begin()
	if err := tr.AddNode(3); err != nil {
		t.Fatalf("AddNode in tx: %v", err)
	}
	addEdges(t, tr, [][2]int{{3, 1}})
	if err := tr.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if !tr.Contains(3) || !tr.HasEdge(3, 1) {
		t.Error("committed transaction work missing")
	}
	checkTopological(t, tr)
}

func TestTracker_RollbackRemovesNewNode(t *testing.T) {
	tr := newTracker(t, 1)

	tr.Begin()
	if err := tr.AddNode(2); err != nil {
		t.Fatalf("AddNode in tx: %v", err)
	}
	addEdges(t, tr, [][2]int{{2, 1}})
	tr.Rollback()

	if tr.Contains(2) {
		t.Error("rolled-back node survived")
	}
	if tr.HasEdge(2, 1) {
		t.Error("rolled-back edge survived")
	}
}

func TestTracker_DeleteEdge(t *testing.T) {
	tr := newTracker(t, 1, 2)
	addEdges(t, tr, [][2]int{{1, 2}})

	if err := tr.DeleteEdge(1, 2); err != nil {
		t.Fatalf("DeleteEdge: %v", err)
	}
	if tr.HasEdge(1, 2) {
		t.Error("deleted edge still present")
	}
	if err := tr.DeleteEdge(1, 2); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("second DeleteEdge = %v, want ErrEdgeNotFound", err)
	}
}

func TestTracker_DeleteNodeDetachesEdges(t *testing.T) {
	tr := newTracker(t, 1, 2, 3)
	addEdges(t, tr, [][2]int{{1, 2}, {2, 3}})

	if err := tr.DeleteNode(2); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if tr.Contains(2) {
		t.Error("deleted node still present")
	}
	if tr.HasEdge(1, 2) || tr.HasEdge(2, 3) {
		t.Error("edges of a deleted node still present")
	}
	if err := tr.DeleteNode(2); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("second DeleteNode = %v, want ErrNodeNotFound", err)
	}
}

func TestTracker_Parents(t *testing.T) {
	tr := newTracker(t, 1, 2, 3)
	addEdges(t, tr, [][2]int{{1, 3}, {2, 3}})

	parents, err := tr.Parents(3)
	if err != nil {
		t.Fatalf("Parents: %v", err)
	}
	if len(parents) != 2 || parents[0] != 1 || parents[1] != 2 {
		t.Errorf("Parents(3) = %v, want [1 2]", parents)
	}
	if _, err := tr.Parents(99); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Parents(99) = %v, want ErrNodeNotFound", err)
	}
}

func TestTracker_Descendants(t *testing.T) {
	tr := newTracker(t, 1, 2, 3, 4, 5, 6, 7)
	addEdges(t, tr, [][2]int{{1, 2}, {2, 3}, {3, 4}, {3, 5}, {4, 6}, {5, 6}, {6, 7}})

	desc, err := tr.Descendants(3)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	want := []int{4, 5, 6, 7}
	if len(desc) != len(want) {
		t.Fatalf("Descendants(3) = %v, want %v", desc, want)
	}
	for i := range want {
		if desc[i] != want[i] {
			t.Fatalf("Descendants(3) = %v, want %v", desc, want)
		}
	}

	leaf, err := tr.Descendants(7)
	if err != nil || len(leaf) != 0 {
		t.Errorf("Descendants(7) = %v, %v, want none", leaf, err)
	}
}
