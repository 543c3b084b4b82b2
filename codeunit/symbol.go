package codeunit

// SymbolRef is a lightweight reference to a named symbol. Identity and
// equality are by name alone, so sets and maps keyed by SymbolRef
// behave as sets of names regardless of where or how the name occurred.
type SymbolRef struct {
	Name string
}

// Ref returns a SymbolRef for name.
func Ref(name string) SymbolRef {
	return SymbolRef{Name: name}
}

// String renders the reference in the stable bracketed form used by
// identity digests.
func (s SymbolRef) String() string {
	return "[" + s.Name + "]"
}
