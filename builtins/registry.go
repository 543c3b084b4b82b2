package builtins

import (
	"sync"

	"go.starlark.net/starlark"
)

// Registry holds the predeclared names available to every cell.
type Registry struct {
	mu     sync.RWMutex
	values map[string]starlark.Value
	names  map[string]bool
}

// New creates a registry seeded with the Starlark universe.
func New() *Registry {
	r := &Registry{
		values: make(map[string]starlark.Value, len(starlark.Universe)),
		names:  make(map[string]bool, len(starlark.Universe)),
	}
	for name, v := range starlark.Universe {
		r.values[name] = v
		r.names[name] = true
	}
	return r
}

// Add installs a predeclared value under name, replacing any previous
// binding.
func (r *Registry) Add(name string, v starlark.Value) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[name] = v
	r.names[name] = true
}

// AddNames declares names as predeclared without binding values. Such
// names are excluded from input classification; the host is expected to
// bind them before execution if cells actually use them.
func (r *Registry) AddNames(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if name != "" {
			r.names[name] = true
		}
	}
}

// Contains reports whether name is predeclared.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names[name]
}

// Bindings returns a snapshot of the value bindings, suitable for
// seeding a fresh namespace.
func (r *Registry) Bindings() starlark.StringDict {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(starlark.StringDict, len(r.values))
	for name, v := range r.values {
		out[name] = v
	}
	return out
}

// Len returns the number of predeclared names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
