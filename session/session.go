package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.starlark.net/starlark"

	"github.com/reactivekit/starcell/builtins"
	"github.com/reactivekit/starcell/capture"
	"github.com/reactivekit/starcell/cell"
	"github.com/reactivekit/starcell/codeunit"
	"github.com/reactivekit/starcell/graph"
)

// ErrCellOwned indicates a submission would redefine a unit that is
// pinned to a different cell.
var ErrCellOwned = errors.New("session: unit already owned by another cell")

// Session is one long-lived reactive evaluation session.
type Session struct {
	mu sync.Mutex

	key      []byte
	registry *builtins.Registry
	globals  starlark.StringDict
	exec     *cell.Executor
	tracker  *graph.Tracker[string]
	logger   cell.Logger

	units     map[string]*codeunit.Unit // unit identity -> unit
	owner     map[string]string         // unit identity -> pinning cell id
	producers map[string]string         // output symbol name -> unit identity
}

// New creates a Session. The namespace is seeded from the builtin
// registry, which always includes the Starlark universe plus a
// `display(value)` builtin routing to the active capture scope.
func New(cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	registry := builtins.New()
	registry.AddNames(cfg.Predeclared...)
	registry.Add("display", displayBuiltin())

	globals := registry.Bindings()
	exec, err := cell.New(cell.Config{
		Globals:   globals,
		Renderer:  cfg.Renderer,
		OnDisplay: cfg.OnDisplay,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Session{
		key:       []byte(cfg.Key),
		registry:  registry,
		globals:   globals,
		exec:      exec,
		tracker:   graph.NewTracker[string](),
		logger:    cfg.Logger,
		units:     make(map[string]*codeunit.Unit),
		owner:     make(map[string]string),
		producers: make(map[string]string),
	}, nil
}

// Registry returns the predeclared-name registry so the host can
// install additional builtins.
func (s *Session) Registry() *builtins.Registry { return s.registry }

// Namespace returns the shared namespace. It is mutated by executions;
// callers must not replace it.
func (s *Session) Namespace() starlark.StringDict { return s.globals }

// Submit analyzes source into a code unit, registers it under cellID,
// runs it, and re-runs its transitive dependents in topological order.
// Results arrive in run order; the cascade stops at the first failed
// cell. Construction failures (malformed source, multiple bindings) and
// graph failures (cycle, foreign ownership) return an error and leave
// the session untouched.
func (s *Session) Submit(source, cellID string) ([]*cell.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit, err := codeunit.New(source, s.key, s.registry)
	if err != nil {
		return nil, err
	}

	id := unit.ID()
	if owner, ok := s.owner[id]; ok && owner != cellID {
		return nil, fmt.Errorf("%w: %s", ErrCellOwned, id)
	}

	s.tracker.Begin()
	if err := s.wire(unit); err != nil {
		s.tracker.Rollback()
		return nil, err
	}
	if err := s.tracker.Commit(); err != nil {
		return nil, err
	}

	s.units[id] = unit
	s.owner[id] = cellID
	for _, out := range unit.Outputs() {
		s.producers[out.Name] = id
	}

	if s.logger != nil {
		s.logger.Logf("submit cell=%s unit=%s inputs=%v", cellID, id, unit.Inputs())
	}

	results := []*cell.Result{s.exec.RunCell(unit.Source(), cellID)}
	if !results[0].OK() {
		return results, nil
	}

	descendants, err := s.tracker.Descendants(id)
	if err != nil {
		return results, nil
	}
	for _, depID := range descendants {
		dep, ok := s.units[depID]
		if !ok {
			continue
		}
		r := s.exec.RunCell(dep.Source(), s.owner[depID])
		results = append(results, r)
		if !r.OK() {
			break
		}
	}
	return results, nil
}

// RunCoroutine awaits an external computation and binds its value under
// bindName, serialized with submissions. Propagate semantics follow
// cell.Executor.RunCoroutine.
func (s *Session) RunCoroutine(ctx context.Context, coro cell.Coroutine, bindName string, propagate ...error) (*cell.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec.RunCoroutine(ctx, coro, bindName, propagate...)
}

// UnitByID returns the registered unit with the given identity.
func (s *Session) UnitByID(id string) (*codeunit.Unit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[id]
	return u, ok
}

// UnitForSymbol returns the unit currently producing the named output.
func (s *Session) UnitForSymbol(name string) (*codeunit.Unit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.producers[name]
	if !ok {
		return nil, false
	}
	u, ok := s.units[id]
	return u, ok
}

// Reset reinitializes the namespace from the builtin registry. Units
// and dependency edges are kept; the next submissions repopulate
// values.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.globals {
		delete(s.globals, name)
	}
	for name, v := range s.registry.Bindings() {
		s.globals[name] = v
	}
}

// wire registers the unit's node and rebuilds its edges inside the open
// tracker transaction. A replaced unit drops its stale incoming edges
// first, as the new source may read different inputs.
func (s *Session) wire(unit *codeunit.Unit) error {
	id := unit.ID()

	if !s.tracker.Contains(id) {
		if err := s.tracker.AddNode(id); err != nil {
			return err
		}
	} else {
		parents, err := s.tracker.Parents(id)
		if err != nil {
			return err
		}
		for _, p := range parents {
			if err := s.tracker.DeleteEdge(p, id); err != nil {
				return err
			}
		}
	}

	// producer -> this cell, for each input with a known producer
	for _, in := range unit.Inputs() {
		pid, ok := s.producers[in.Name]
		if !ok || pid == id {
			continue
		}
		if _, err := s.tracker.AddEdge(pid, id); err != nil {
			return err
		}
	}

	// this cell -> existing consumers of its outputs
	for _, out := range unit.Outputs() {
		for otherID, other := range s.units {
			if otherID == id {
				continue
			}
			for _, in := range other.Inputs() {
				if in.Name != out.Name {
					continue
				}
				if _, err := s.tracker.AddEdge(id, otherID); err != nil {
					return err
				}
				break
			}
		}
	}

	return nil
}

// displayBuiltin surfaces a value through the active capture scope.
func displayBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("display", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var v starlark.Value
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
			return nil, err
		}
		capture.Display(v)
		return starlark.None, nil
	})
}
