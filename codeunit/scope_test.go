package codeunit

import (
	"errors"
	"testing"
)

func mustScopes(t *testing.T, src string) *Scope {
	t.Helper()
	root, err := ResolveScopes("<test>", src)
	if err != nil {
		t.Fatalf("ResolveScopes: %v", err)
	}
	return root
}

func lookup(t *testing.T, sc *Scope, name string) Symbol {
	t.Helper()
	sym, ok := sc.Lookup(name)
	if !ok {
		t.Fatalf("symbol %q not found in %s scope %q", name, sc.Kind, sc.Name)
	}
	return sym
}

func TestResolveScopes_ModuleBindings(t *testing.T) {
	root := mustScopes(t, "x = 1\ny = x")

	if root.Kind != ModuleScope {
		t.Fatalf("root kind = %v, want module", root.Kind)
	}
	if got := lookup(t, root, "x"); !got.Flags.Has(Assigned) || !got.Flags.Has(Referenced) {
		t.Errorf("x flags = %v, want assigned|referenced", got.Flags)
	}
	if got := lookup(t, root, "y"); !got.Flags.Has(Assigned) {
		t.Errorf("y flags = %v, want assigned", got.Flags)
	}
	if got := lookup(t, root, "x"); got.Flags.Has(Global) {
		t.Errorf("x is bound locally, must not be global: %v", got.Flags)
	}
}

func TestResolveScopes_GlobalReference(t *testing.T) {
	root := mustScopes(t, "y = x + 1")

	if got := lookup(t, root, "x"); !got.Flags.Has(Global) {
		t.Errorf("x flags = %v, want global", got.Flags)
	}
}

func TestResolveScopes_FreeVsGlobal(t *testing.T) {
	src := "def outer():\n" +
		"    a = 1\n" +
		"    def inner():\n" +
		"        return a + b\n" +
		"    return inner\n"
	root := mustScopes(t, src)

	if len(root.Children()) != 1 {
		t.Fatalf("module children = %d, want 1", len(root.Children()))
	}
	outer := root.Children()[0]
	if outer.Name != "outer" || outer.Kind != FunctionScope {
		t.Fatalf("unexpected child scope %s %q", outer.Kind, outer.Name)
	}
	if len(outer.Children()) != 1 {
		t.Fatalf("outer children = %d, want 1", len(outer.Children()))
	}
	inner := outer.Children()[0]

	if got := lookup(t, inner, "a"); !got.Flags.Has(Free) {
		t.Errorf("a flags in inner = %v, want free", got.Flags)
	}
	if got := lookup(t, inner, "b"); !got.Flags.Has(Global) {
		t.Errorf("b flags in inner = %v, want global", got.Flags)
	}
	if got := lookup(t, root, "outer"); !got.Flags.Has(Namespace) {
		t.Errorf("outer flags = %v, want namespace", got.Flags)
	}
}

func TestResolveScopes_LoadBindsImported(t *testing.T) {
	root := mustScopes(t, `load("math.star", "sin", cosine="cos")`)

	if got := lookup(t, root, "sin"); !got.Flags.Has(Imported) {
		t.Errorf("sin flags = %v, want imported", got.Flags)
	}
	if got := lookup(t, root, "cosine"); !got.Flags.Has(Imported) {
		t.Errorf("cosine flags = %v, want imported", got.Flags)
	}
	if _, ok := root.Lookup("cos"); ok {
		t.Error("original name of an aliased load must not appear in scope")
	}
}

func TestResolveScopes_KeywordArgumentIsNotAReference(t *testing.T) {
	root := mustScopes(t, "f(x=1)")

	if _, ok := root.Lookup("x"); ok {
		t.Error("keyword argument name leaked into the scope")
	}
	if got := lookup(t, root, "f"); !got.Flags.Has(Global) {
		t.Errorf("f flags = %v, want global", got.Flags)
	}
}

func TestResolveScopes_AugmentedAssignReadsTarget(t *testing.T) {
	root := mustScopes(t, "x += 1")

	got := lookup(t, root, "x")
	if !got.Flags.Has(Assigned) || !got.Flags.Has(Referenced) {
		t.Errorf("x flags = %v, want assigned|referenced", got.Flags)
	}
}

func TestResolveScopes_ParamsAndDefaults(t *testing.T) {
	root := mustScopes(t, "def f(p, q=r):\n    return p\n")

	fn := root.Children()[0]
	if got := lookup(t, fn, "p"); !got.Flags.Has(Parameter) {
		t.Errorf("p flags = %v, want parameter", got.Flags)
	}
	if got := lookup(t, fn, "q"); !got.Flags.Has(Parameter) {
		t.Errorf("q flags = %v, want parameter", got.Flags)
	}
	// the default expression evaluates in the enclosing scope
	if got := lookup(t, root, "r"); !got.Flags.Has(Global) {
		t.Errorf("r flags = %v, want global in module scope", got.Flags)
	}
}

func TestResolveScopes_Comprehension(t *testing.T) {
	root := mustScopes(t, "ys = [y * y for y in xs]")

	if got := lookup(t, root, "xs"); !got.Flags.Has(Global) {
		t.Errorf("xs flags = %v, want global", got.Flags)
	}
	if len(root.Children()) != 1 {
		t.Fatalf("module children = %d, want 1", len(root.Children()))
	}
	comp := root.Children()[0]
	if comp.Kind != ComprehensionScope {
		t.Fatalf("child kind = %v, want comprehension", comp.Kind)
	}
	if got := lookup(t, comp, "y"); !got.Flags.Has(Assigned) {
		t.Errorf("y flags = %v, want assigned in comprehension", got.Flags)
	}
}

func TestResolveScopes_LambdaScope(t *testing.T) {
	root := mustScopes(t, "f = lambda v: v + w")

	lam := root.Children()[0]
	if lam.Kind != LambdaScope {
		t.Fatalf("child kind = %v, want lambda", lam.Kind)
	}
	if got := lookup(t, lam, "v"); !got.Flags.Has(Parameter) {
		t.Errorf("v flags = %v, want parameter", got.Flags)
	}
	if got := lookup(t, lam, "w"); !got.Flags.Has(Global) {
		t.Errorf("w flags = %v, want global", got.Flags)
	}
}

func TestResolveScopes_IndexTargetReadsOperand(t *testing.T) {
	root := mustScopes(t, "d[0] = 1")

	got := lookup(t, root, "d")
	if got.Flags.Has(Assigned) {
		t.Errorf("d flags = %v: an index target must not bind", got.Flags)
	}
	if !got.Flags.Has(Referenced) {
		t.Errorf("d flags = %v, want referenced", got.Flags)
	}
}

func TestResolveScopes_Malformed(t *testing.T) {
	_, err := ResolveScopes("<test>", "def (")
	if err == nil {
		t.Fatal("expected error for malformed source")
	}
	if !errors.Is(err, ErrMalformedSource) {
		t.Errorf("error = %v, want ErrMalformedSource", err)
	}
	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error %T does not carry a SourceError", err)
	}
	if srcErr.Line == 0 {
		t.Error("SourceError has no line info")
	}
}

func TestScope_WalkVisitsDepthFirst(t *testing.T) {
	src := "def a():\n" +
		"    def b():\n" +
		"        pass\n" +
		"def c():\n" +
		"    pass\n"
	root := mustScopes(t, src)

	var names []string
	root.Walk(func(sc *Scope) {
		names = append(names, sc.Name)
	})

	want := []string{"<test>", "a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("visited %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("visited %v, want %v", names, want)
		}
	}
}
