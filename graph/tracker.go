package graph

import "sort"

// Tracker maintains dependency edges between nodes and a topological
// ordering that is updated incrementally as edges arrive. In the
// reactive model a node is a code unit identity and an edge runs from a
// producer to the consumers of its output symbol.
type Tracker[N comparable] struct {
	ordering *TxMap[N, int]
	nodes    *TxSet[N]
	edges    *TxMap[N, map[N]bool]
	back     *TxMap[N, map[N]bool]
}

// NewTracker creates an empty tracker.
func NewTracker[N comparable]() *Tracker[N] {
	return &Tracker[N]{
		ordering: NewTxMap[N, int](),
		nodes:    NewTxSet[N](),
		edges:    NewTxMap[N, map[N]bool](),
		back:     NewTxMap[N, map[N]bool](),
	}
}

// Begin opens a transaction over all tracker state.
func (t *Tracker[N]) Begin() {
	t.ordering.Begin()
	t.nodes.Begin()
	t.edges.Begin()
	t.back.Begin()
}

// Commit applies the open transaction.
func (t *Tracker[N]) Commit() error {
	for _, commit := range []func() error{
		t.ordering.Commit, t.nodes.Commit, t.edges.Commit, t.back.Commit,
	} {
		if err := commit(); err != nil {
			return err
		}
	}
	return nil
}

// Rollback discards the open transaction.
func (t *Tracker[N]) Rollback() {
	t.ordering.Rollback()
	t.nodes.Rollback()
	t.edges.Rollback()
	t.back.Rollback()
}

// AddNode registers a new node with no dependencies, ordered after
// every existing node. Returns ErrDuplicateNode if already present.
func (t *Tracker[N]) AddNode(n N) error {
	if t.nodes.Contains(n) {
		return ErrDuplicateNode
	}

	t.nodes.Add(n)
	t.edges.Set(n, map[N]bool{})
	t.back.Set(n, map[N]bool{})

	max := 0
	for _, v := range t.ordering.Values() {
		if v > max {
			max = v
		}
	}
	t.ordering.Set(n, max+1)
	return nil
}

// AddEdge adds a dependency edge from producer to consumer and repairs
// the topological ordering over the affected region. Returns false if
// the edge already existed, ErrNodeNotFound if either endpoint is
// missing, and ErrCycle if the edge would close a cycle (the caller is
// expected to roll back).
func (t *Tracker[N]) AddEdge(from, to N) (bool, error) {
	if !t.nodes.Contains(from) || !t.nodes.Contains(to) {
		return false, ErrNodeNotFound
	}
	if from == to {
		return false, ErrCycle
	}

	if out, _ := t.edges.Get(from); out[to] {
		return false, nil
	}

	t.setInsert(t.edges, from, to)
	t.setInsert(t.back, to, from)

	upper, _ := t.ordering.Get(from)
	lower, _ := t.ordering.Get(to)

	// only the region between the endpoints can be out of order
	if lower < upper {
		visited := make(map[N]bool)
		forward := make(map[N]bool)
		backward := make(map[N]bool)

		if err := t.dfsForward(to, visited, forward, upper); err != nil {
			return false, err
		}
		t.dfsBackward(from, visited, backward, lower)
		t.reorder(forward, backward)
	}

	return true, nil
}

// DeleteEdge removes the edge from producer to consumer.
func (t *Tracker[N]) DeleteEdge(from, to N) error {
	if !t.nodes.Contains(from) || !t.nodes.Contains(to) {
		return ErrNodeNotFound
	}
	if out, _ := t.edges.Get(from); !out[to] {
		return ErrEdgeNotFound
	}
	t.setRemove(t.edges, from, to)
	t.setRemove(t.back, to, from)
	return nil
}

// DeleteNode removes a node along with all its edges.
func (t *Tracker[N]) DeleteNode(n N) error {
	if !t.nodes.Contains(n) {
		return ErrNodeNotFound
	}

	out, _ := t.edges.Get(n)
	for child := range out {
		t.setRemove(t.back, child, n)
	}
	in, _ := t.back.Get(n)
	for parent := range in {
		t.setRemove(t.edges, parent, n)
	}

	t.edges.Delete(n)
	t.back.Delete(n)
	t.ordering.Delete(n)
	t.nodes.Discard(n)
	return nil
}

// Contains reports whether the tracker holds n.
func (t *Tracker[N]) Contains(n N) bool { return t.nodes.Contains(n) }

// HasEdge reports whether the edge from → to is present.
func (t *Tracker[N]) HasEdge(from, to N) bool {
	out, _ := t.edges.Get(from)
	return out[to]
}

// Parents returns the direct dependencies of n in topological order.
func (t *Tracker[N]) Parents(n N) ([]N, error) {
	if !t.nodes.Contains(n) {
		return nil, ErrNodeNotFound
	}
	in, _ := t.back.Get(n)
	parents := make([]N, 0, len(in))
	for p := range in {
		parents = append(parents, p)
	}
	t.sortByOrder(parents)
	return parents, nil
}

// Descendants returns every node that transitively depends on n,
// excluding n itself, in topological order.
func (t *Tracker[N]) Descendants(n N) ([]N, error) {
	if !t.nodes.Contains(n) {
		return nil, ErrNodeNotFound
	}

	visited := make(map[N]bool)
	var collect func(N)
	collect = func(node N) {
		if visited[node] {
			return
		}
		visited[node] = true
		out, _ := t.edges.Get(node)
		for child := range out {
			collect(child)
		}
	}
	collect(n)
	delete(visited, n)

	result := make([]N, 0, len(visited))
	for node := range visited {
		result = append(result, node)
	}
	t.sortByOrder(result)
	return result, nil
}

// Nodes returns every node in topological order; reverse inverts it.
func (t *Tracker[N]) Nodes(reverse bool) []N {
	result := t.nodes.Items()
	t.sortByOrder(result)
	if reverse {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result
}

// dfsForward discovers nodes ordered before upper that are reachable
// from n. Hitting a node ordered exactly at upper means the new edge
// closed a cycle.
func (t *Tracker[N]) dfsForward(n N, visited, out map[N]bool, upper int) error {
	visited[n] = true
	out[n] = true

	children, _ := t.edges.Get(n)
	for child := range children {
		order, _ := t.ordering.Get(child)
		if order == upper {
			return ErrCycle
		}
		if !visited[child] && order < upper {
			if err := t.dfsForward(child, visited, out, upper); err != nil {
				return err
			}
		}
	}
	return nil
}

// dfsBackward discovers nodes ordered after lower that reach n.
func (t *Tracker[N]) dfsBackward(n N, visited, out map[N]bool, lower int) {
	visited[n] = true
	out[n] = true

	parents, _ := t.back.Get(n)
	for parent := range parents {
		order, _ := t.ordering.Get(parent)
		if !visited[parent] && lower < order {
			t.dfsBackward(parent, visited, out, lower)
		}
	}
}

// reorder redistributes the order values of the affected region so the
// backward set precedes the forward set while the set of order values
// in use stays fixed.
func (t *Tracker[N]) reorder(forward, backward map[N]bool) {
	fwd := t.sortedSet(forward)
	bwd := t.sortedSet(backward)

	nodes := make([]N, 0, len(fwd)+len(bwd))
	nodes = append(nodes, bwd...)
	nodes = append(nodes, fwd...)

	orders := make([]int, len(nodes))
	for i, n := range nodes {
		orders[i], _ = t.ordering.Get(n)
	}
	sort.Ints(orders)

	for i, n := range nodes {
		t.ordering.Set(n, orders[i])
	}
}

func (t *Tracker[N]) sortedSet(set map[N]bool) []N {
	nodes := make([]N, 0, len(set))
	for n := range set {
		nodes = append(nodes, n)
	}
	t.sortByOrder(nodes)
	return nodes
}

func (t *Tracker[N]) sortByOrder(nodes []N) {
	sort.Slice(nodes, func(i, j int) bool {
		oi, _ := t.ordering.Get(nodes[i])
		oj, _ := t.ordering.Get(nodes[j])
		return oi < oj
	})
}

func (t *Tracker[N]) setInsert(m *TxMap[N, map[N]bool], key, item N) {
	old, _ := m.Get(key)
	next := make(map[N]bool, len(old)+1)
	for k := range old {
		next[k] = true
	}
	next[item] = true
	m.Set(key, next)
}

func (t *Tracker[N]) setRemove(m *TxMap[N, map[N]bool], key, item N) {
	old, _ := m.Get(key)
	if !old[item] {
		return
	}
	next := make(map[N]bool, len(old))
	for k := range old {
		if k != item {
			next[k] = true
		}
	}
	m.Set(key, next)
}
