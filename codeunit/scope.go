package codeunit

import (
	"strings"

	"go.starlark.net/syntax"
)

// Class is a bit set of classifications that apply to a name within one
// lexical scope. A name accumulates flags as occurrences are visited;
// Global and Free are derived once the whole tree is built.
type Class uint16

const (
	// Referenced marks a name that is read in this scope.
	Referenced Class = 1 << iota

	// Assigned marks a name bound by assignment, a def statement, a for
	// loop, or a comprehension clause in this scope.
	Assigned

	// Parameter marks a function or lambda parameter.
	Parameter

	// Imported marks a name introduced by a load statement.
	Imported

	// Global marks a reference that is not bound in this scope or any
	// enclosing function scope. Module-level bindings referenced from
	// nested scopes count as global, matching the resolver's notion of
	// a global binding.
	Global

	// Free marks a reference bound by an enclosing function scope.
	Free

	// Namespace marks a name that introduces a nested scope (a def).
	Namespace
)

var classNames = []struct {
	flag Class
	name string
}{
	{Referenced, "referenced"},
	{Assigned, "assigned"},
	{Parameter, "parameter"},
	{Imported, "imported"},
	{Global, "global"},
	{Free, "free"},
	{Namespace, "namespace"},
}

// Has reports whether any of the given flags are set.
func (c Class) Has(flags Class) bool { return c&flags != 0 }

// String renders the set flags, pipe-separated.
func (c Class) String() string {
	var parts []string
	for _, cn := range classNames {
		if c&cn.flag != 0 {
			parts = append(parts, cn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ScopeKind identifies what construct introduced a scope.
type ScopeKind uint8

const (
	ModuleScope ScopeKind = iota
	FunctionScope
	LambdaScope
	ComprehensionScope
)

var scopeKindNames = [...]string{
	ModuleScope:        "module",
	FunctionScope:      "function",
	LambdaScope:        "lambda",
	ComprehensionScope: "comprehension",
}

func (k ScopeKind) String() string { return scopeKindNames[k] }

// Symbol is one name within a scope together with its classifications.
type Symbol struct {
	Name  string
	Flags Class
}

// Ref returns the name-only reference for this symbol.
func (s Symbol) Ref() SymbolRef { return Ref(s.Name) }

// Scope is one node of the lexical scope tree: the module scope or a
// nested function, lambda, or comprehension scope. Scopes are built in
// a single pass and not mutated afterward; the slices returned by
// Symbols and Children are owned by the scope and must not be modified.
type Scope struct {
	Kind ScopeKind

	// Name is the defining name for function scopes, the file name for
	// the module scope, and a fixed label otherwise.
	Name string

	parent   *Scope
	children []*Scope
	index    map[string]int
	symbols  []Symbol
}

// Symbols returns the scope's direct symbols in first-occurrence order.
func (s *Scope) Symbols() []Symbol { return s.symbols }

// Children returns the directly nested scopes in source order.
func (s *Scope) Children() []*Scope { return s.children }

// Lookup returns the symbol for name in this scope, if present.
func (s *Scope) Lookup(name string) (Symbol, bool) {
	i, ok := s.index[name]
	if !ok {
		return Symbol{}, false
	}
	return s.symbols[i], true
}

// Walk visits the scope and all nested scopes depth-first, parents
// before children.
func (s *Scope) Walk(f func(*Scope)) {
	f(s)
	for _, c := range s.children {
		c.Walk(f)
	}
}

// ResolveScopes parses source and builds its lexical scope tree.
// Parse failures surface as ErrMalformedSource.
func ResolveScopes(name, src string) (*Scope, error) {
	f, err := Parse(name, src)
	if err != nil {
		return nil, err
	}
	return ScopesOf(f), nil
}

// ScopesOf builds the lexical scope tree for an already-parsed file.
func ScopesOf(f *syntax.File) *Scope {
	var b scopeBuilder
	root := b.newScope(ModuleScope, f.Path, nil)
	b.stmts(root, f.Stmts)
	classify(root)
	return root
}

type scopeBuilder struct{}

func (b *scopeBuilder) newScope(kind ScopeKind, name string, parent *Scope) *Scope {
	sc := &Scope{
		Kind:   kind,
		Name:   name,
		parent: parent,
		index:  make(map[string]int),
	}
	if parent != nil {
		parent.children = append(parent.children, sc)
	}
	return sc
}

func (b *scopeBuilder) mark(sc *Scope, name string, flags Class) {
	if i, ok := sc.index[name]; ok {
		sc.symbols[i].Flags |= flags
		return
	}
	sc.index[name] = len(sc.symbols)
	sc.symbols = append(sc.symbols, Symbol{Name: name, Flags: flags})
}

func (b *scopeBuilder) stmts(sc *Scope, stmts []syntax.Stmt) {
	for _, st := range stmts {
		b.stmt(sc, st)
	}
}

func (b *scopeBuilder) stmt(sc *Scope, st syntax.Stmt) {
	switch st := st.(type) {
	case *syntax.AssignStmt:
		if st.Op != syntax.EQ {
			// an augmented assignment reads its target first
			b.expr(sc, st.LHS)
		}
		b.expr(sc, st.RHS)
		b.bindTargets(sc, st.LHS)

	case *syntax.DefStmt:
		b.mark(sc, st.Name.Name, Assigned|Namespace)
		fn := b.newScope(FunctionScope, st.Name.Name, sc)
		b.params(sc, fn, st.Params)
		b.stmts(fn, st.Body)

	case *syntax.LoadStmt:
		// only the local names bind; the module literal and original
		// names are not variable references
		for _, id := range st.To {
			b.mark(sc, id.Name, Imported)
		}

	case *syntax.ExprStmt:
		b.expr(sc, st.X)

	case *syntax.IfStmt:
		b.expr(sc, st.Cond)
		b.stmts(sc, st.True)
		b.stmts(sc, st.False)

	case *syntax.ForStmt:
		b.expr(sc, st.X)
		b.bindTargets(sc, st.Vars)
		b.stmts(sc, st.Body)

	case *syntax.WhileStmt:
		b.expr(sc, st.Cond)
		b.stmts(sc, st.Body)

	case *syntax.ReturnStmt:
		if st.Result != nil {
			b.expr(sc, st.Result)
		}

	case *syntax.BranchStmt:
		// pass, break, continue: no names
	}
}

// bindTargets marks the identifiers bound by an assignment target.
// Index and field targets do not bind; they read their operand.
func (b *scopeBuilder) bindTargets(sc *Scope, target syntax.Expr) {
	switch t := target.(type) {
	case *syntax.Ident:
		b.mark(sc, t.Name, Assigned)
	case *syntax.TupleExpr:
		for _, e := range t.List {
			b.bindTargets(sc, e)
		}
	case *syntax.ListExpr:
		for _, e := range t.List {
			b.bindTargets(sc, e)
		}
	case *syntax.ParenExpr:
		b.bindTargets(sc, t.X)
	case *syntax.IndexExpr:
		b.expr(sc, t.X)
		b.expr(sc, t.Y)
	case *syntax.DotExpr:
		b.expr(sc, t.X)
	}
}

// params marks parameters in the function scope fn. Default value
// expressions evaluate in the enclosing scope.
func (b *scopeBuilder) params(outer, fn *Scope, params []syntax.Expr) {
	for _, p := range params {
		switch p := p.(type) {
		case *syntax.Ident:
			b.mark(fn, p.Name, Parameter)
		case *syntax.BinaryExpr: // name=default
			if id, ok := p.X.(*syntax.Ident); ok {
				b.mark(fn, id.Name, Parameter)
			}
			b.expr(outer, p.Y)
		case *syntax.UnaryExpr: // *args, **kwargs; X is nil for a bare *
			if id, ok := p.X.(*syntax.Ident); ok {
				b.mark(fn, id.Name, Parameter)
			}
		}
	}
}

func (b *scopeBuilder) expr(sc *Scope, e syntax.Expr) {
	switch e := e.(type) {
	case nil:

	case *syntax.Ident:
		b.mark(sc, e.Name, Referenced)

	case *syntax.Literal:

	case *syntax.ParenExpr:
		b.expr(sc, e.X)

	case *syntax.UnaryExpr:
		b.expr(sc, e.X)

	case *syntax.BinaryExpr:
		b.expr(sc, e.X)
		b.expr(sc, e.Y)

	case *syntax.DotExpr:
		// the attribute name is not a variable
		b.expr(sc, e.X)

	case *syntax.IndexExpr:
		b.expr(sc, e.X)
		b.expr(sc, e.Y)

	case *syntax.SliceExpr:
		b.expr(sc, e.X)
		b.expr(sc, e.Lo)
		b.expr(sc, e.Hi)
		b.expr(sc, e.Step)

	case *syntax.CallExpr:
		b.expr(sc, e.Fn)
		for _, arg := range e.Args {
			if bin, ok := arg.(*syntax.BinaryExpr); ok && bin.Op == syntax.EQ {
				// keyword argument: the left side names a parameter,
				// not a variable
				b.expr(sc, bin.Y)
				continue
			}
			b.expr(sc, arg)
		}

	case *syntax.ListExpr:
		for _, x := range e.List {
			b.expr(sc, x)
		}

	case *syntax.TupleExpr:
		for _, x := range e.List {
			b.expr(sc, x)
		}

	case *syntax.DictExpr:
		for _, entry := range e.List {
			if de, ok := entry.(*syntax.DictEntry); ok {
				b.expr(sc, de.Key)
				b.expr(sc, de.Value)
			}
		}

	case *syntax.CondExpr:
		b.expr(sc, e.Cond)
		b.expr(sc, e.True)
		b.expr(sc, e.False)

	case *syntax.LambdaExpr:
		ls := b.newScope(LambdaScope, "lambda", sc)
		b.params(sc, ls, e.Params)
		b.expr(ls, e.Body)

	case *syntax.Comprehension:
		cs := b.newScope(ComprehensionScope, "comprehension", sc)
		for i, cl := range e.Clauses {
			switch cl := cl.(type) {
			case *syntax.ForClause:
				// the first iterable evaluates in the enclosing scope
				if i == 0 {
					b.expr(sc, cl.X)
				} else {
					b.expr(cs, cl.X)
				}
				b.bindTargets(cs, cl.Vars)
			case *syntax.IfClause:
				b.expr(cs, cl.Cond)
			}
		}
		b.expr(cs, e.Body)
	}
}

// classify derives the Global and Free flags for every reference that
// is not locally bound, walking enclosing scopes. A reference bound by
// an enclosing function-like scope is free; everything else, including
// references to module-level bindings and to nothing at all, is global.
func classify(sc *Scope) {
	for i := range sc.symbols {
		sym := &sc.symbols[i]
		if !sym.Flags.Has(Referenced) || sym.Flags.Has(Assigned|Parameter|Imported) {
			continue
		}
		if boundInEnclosingFunction(sc.parent, sym.Name) {
			sym.Flags |= Free
		} else {
			sym.Flags |= Global
		}
	}
	for _, c := range sc.children {
		classify(c)
	}
}

func boundInEnclosingFunction(sc *Scope, name string) bool {
	for ; sc != nil && sc.Kind != ModuleScope; sc = sc.parent {
		if sym, ok := sc.Lookup(name); ok && sym.Flags.Has(Assigned|Parameter|Imported) {
			return true
		}
	}
	return false
}
