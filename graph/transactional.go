package graph

// TxMap is a map with single-level transactions. Outside a transaction
// operations apply directly; inside, writes and deletes accumulate in
// an overlay that Commit applies and Rollback discards.
type TxMap[K comparable, V any] struct {
	data  map[K]V
	dirty map[K]txEntry[V]
	open  bool
}

type txEntry[V any] struct {
	value   V
	deleted bool
}

// NewTxMap creates an empty transactional map.
func NewTxMap[K comparable, V any]() *TxMap[K, V] {
	return &TxMap[K, V]{data: make(map[K]V)}
}

// Get returns the effective value for key.
func (m *TxMap[K, V]) Get(key K) (V, bool) {
	if m.open {
		if e, ok := m.dirty[key]; ok {
			if e.deleted {
				var zero V
				return zero, false
			}
			return e.value, true
		}
	}
	v, ok := m.data[key]
	return v, ok
}

// Set binds key to value.
func (m *TxMap[K, V]) Set(key K, value V) {
	if m.open {
		m.dirty[key] = txEntry[V]{value: value}
		return
	}
	m.data[key] = value
}

// Delete removes key.
func (m *TxMap[K, V]) Delete(key K) {
	if m.open {
		m.dirty[key] = txEntry[V]{deleted: true}
		return
	}
	delete(m.data, key)
}

// Contains reports whether key is effectively present.
func (m *TxMap[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the effective key set, in no particular order.
func (m *TxMap[K, V]) Keys() []K {
	keys := make([]K, 0, len(m.data))
	for k := range m.data {
		if m.open {
			if e, ok := m.dirty[k]; ok && e.deleted {
				continue
			}
		}
		keys = append(keys, k)
	}
	if m.open {
		for k, e := range m.dirty {
			if _, committed := m.data[k]; !committed && !e.deleted {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Values returns the effective values, in no particular order.
func (m *TxMap[K, V]) Values() []V {
	keys := m.Keys()
	values := make([]V, 0, len(keys))
	for _, k := range keys {
		v, _ := m.Get(k)
		values = append(values, v)
	}
	return values
}

// Len returns the effective number of entries.
func (m *TxMap[K, V]) Len() int { return len(m.Keys()) }

// Begin opens a transaction. Nested transactions are not supported;
// a second Begin is a no-op inside an open transaction.
func (m *TxMap[K, V]) Begin() {
	if m.open {
		return
	}
	m.open = true
	m.dirty = make(map[K]txEntry[V])
}

// Commit applies the overlay. Returns ErrNoTransaction if none is open.
func (m *TxMap[K, V]) Commit() error {
	if !m.open {
		return ErrNoTransaction
	}
	for k, e := range m.dirty {
		if e.deleted {
			delete(m.data, k)
		} else {
			m.data[k] = e.value
		}
	}
	m.dirty = nil
	m.open = false
	return nil
}

// Rollback discards the overlay.
func (m *TxMap[K, V]) Rollback() {
	m.dirty = nil
	m.open = false
}

// TxSet is a set with single-level transactions. Mutations apply
// directly; Begin snapshots the contents, Rollback restores the
// snapshot, Commit discards it.
type TxSet[T comparable] struct {
	items map[T]bool
	saved map[T]bool
	open  bool
}

// NewTxSet creates an empty transactional set.
func NewTxSet[T comparable]() *TxSet[T] {
	return &TxSet[T]{items: make(map[T]bool)}
}

// Add inserts item.
func (s *TxSet[T]) Add(item T) { s.items[item] = true }

// Discard removes item if present.
func (s *TxSet[T]) Discard(item T) { delete(s.items, item) }

// Contains reports whether item is present.
func (s *TxSet[T]) Contains(item T) bool { return s.items[item] }

// Len returns the number of items.
func (s *TxSet[T]) Len() int { return len(s.items) }

// Items returns the contents, in no particular order.
func (s *TxSet[T]) Items() []T {
	out := make([]T, 0, len(s.items))
	for item := range s.items {
		out = append(out, item)
	}
	return out
}

// Begin opens a transaction, snapshotting the current contents.
func (s *TxSet[T]) Begin() {
	if s.open {
		return
	}
	s.open = true
	s.saved = make(map[T]bool, len(s.items))
	for item := range s.items {
		s.saved[item] = true
	}
}

// Commit discards the snapshot. Returns ErrNoTransaction if none is
// open.
func (s *TxSet[T]) Commit() error {
	if !s.open {
		return ErrNoTransaction
	}
	s.saved = nil
	s.open = false
	return nil
}

// Rollback restores the snapshot taken at Begin.
func (s *TxSet[T]) Rollback() {
	if !s.open {
		return
	}
	s.items = s.saved
	s.saved = nil
	s.open = false
}
