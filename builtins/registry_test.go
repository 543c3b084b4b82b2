package builtins

import (
	"testing"

	"go.starlark.net/starlark"
)

func TestNew_SeedsUniverse(t *testing.T) {
	r := New()

	for _, name := range []string{"len", "print", "range"} {
		if !r.Contains(name) {
			t.Errorf("Contains(%q) = false, want true", name)
		}
	}
	if r.Contains("no_such_builtin") {
		t.Error("Contains reported an unknown name")
	}
}

func TestRegistry_Add(t *testing.T) {
	r := New()
	before := r.Len()

	r.Add("answer", starlark.MakeInt(42))

	if !r.Contains("answer") {
		t.Fatal("added name not contained")
	}
	if r.Len() != before+1 {
		t.Errorf("Len() = %d, want %d", r.Len(), before+1)
	}
	if v := r.Bindings()["answer"]; v != starlark.MakeInt(42) {
		t.Errorf("binding = %v, want 42", v)
	}

	// replacement keeps a single entry
	r.Add("answer", starlark.MakeInt(7))
	if r.Len() != before+1 {
		t.Errorf("Len() after replace = %d, want %d", r.Len(), before+1)
	}
}

func TestRegistry_AddNames(t *testing.T) {
	r := New()
	r.AddNames("sensor", "", "clock")

	if !r.Contains("sensor") || !r.Contains("clock") {
		t.Error("declared names not contained")
	}
	if r.Contains("") {
		t.Error("empty name must be ignored")
	}
	if _, ok := r.Bindings()["sensor"]; ok {
		t.Error("AddNames must not bind a value")
	}
}

func TestRegistry_BindingsIsASnapshot(t *testing.T) {
	r := New()
	snap := r.Bindings()
	snap["injected"] = starlark.None

	if r.Contains("injected") {
		t.Error("mutating the snapshot leaked into the registry")
	}
	if _, ok := r.Bindings()["injected"]; ok {
		t.Error("mutating the snapshot leaked into later snapshots")
	}
}
