package codeunit

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// digestSize is the BLAKE2b digest length used for identity strings.
const digestSize = 10

// Registry is the predeclared-name registry consulted during input
// classification. Names the registry contains are never inputs.
//
// Contract:
// - Concurrency: Contains may be called concurrently.
// - Ownership: the registry is only read.
type Registry interface {
	// Contains reports whether name is predeclared.
	Contains(name string) bool
}

// Unit is the analyzed, identity-bearing representation of one
// submitted snippet. Units are immutable once constructed.
type Unit struct {
	source  string
	inputs  []SymbolRef
	outputs []SymbolRef
	id      string
}

// New analyzes source into a Unit. key seeds the identity digest; reg
// filters predeclared names out of the inputs.
//
// Returns ErrMalformedSource if source does not parse, and
// ErrMultipleBindings if its top level binds more than one non-load
// name.
func New(source string, key []byte, reg Registry) (*Unit, error) {
	root, err := ResolveScopes("<cell>", source)
	if err != nil {
		return nil, err
	}

	outputs, err := findOutputs(root)
	if err != nil {
		return nil, err
	}

	id, err := identity(source, key, outputs)
	if err != nil {
		return nil, fmt.Errorf("computing identity: %w", err)
	}

	return &Unit{
		source:  source,
		inputs:  findInputs(root, reg),
		outputs: outputs,
		id:      id,
	}, nil
}

// Source returns the raw snippet text.
func (u *Unit) Source() string { return u.source }

// Inputs returns the names the snippet reads from outside itself, in
// first-occurrence order.
func (u *Unit) Inputs() []SymbolRef {
	out := make([]SymbolRef, len(u.inputs))
	copy(out, u.inputs)
	return out
}

// Outputs returns the names the snippet binds at the top level: at most
// one non-load name plus any load-introduced names.
func (u *Unit) Outputs() []SymbolRef {
	out := make([]SymbolRef, len(u.outputs))
	copy(out, u.outputs)
	return out
}

// ID returns the stable identity string for this unit.
func (u *Unit) ID() string { return u.id }

// Equal reports identity-string equality, the sole notion of unit
// equality.
func (u *Unit) Equal(other *Unit) bool {
	return other != nil && u.id == other.id
}

func (u *Unit) String() string {
	return fmt.Sprintf("<unit in:%v out:%v id:%s>", u.inputs, u.outputs, u.id)
}

// findInputs walks the scope tree depth-first collecting free/global
// references that are neither predeclared nor introduced by a load
// statement visited earlier in traversal order. The imported-name check
// is deliberately order-sensitive.
func findInputs(root *Scope, reg Registry) []SymbolRef {
	imported := make(map[string]bool)
	seen := make(map[string]bool)
	var inputs []SymbolRef

	root.Walk(func(sc *Scope) {
		for _, sym := range sc.Symbols() {
			if sym.Flags.Has(Imported) {
				imported[sym.Name] = true
			}
			if sym.Flags.Has(Global) && !reg.Contains(sym.Name) && !imported[sym.Name] && !seen[sym.Name] {
				seen[sym.Name] = true
				inputs = append(inputs, sym.Ref())
			}
		}
	})

	return inputs
}

// findOutputs collects the module scope's direct bindings. Load
// statements may introduce any number of names; everything else may
// introduce at most one.
func findOutputs(root *Scope) ([]SymbolRef, error) {
	var outputs []SymbolRef
	loads := 0

	for _, sym := range root.Symbols() {
		if !sym.Flags.Has(Assigned | Imported) {
			continue
		}
		if sym.Flags.Has(Imported) {
			loads++
		}
		outputs = append(outputs, sym.Ref())
	}

	if len(outputs)-loads > 1 {
		return nil, ErrMultipleBindings
	}
	return outputs, nil
}

// identity computes the keyed digest identity. Output-bearing snippets
// digest only their sorted output names, so a resubmission that binds
// the same name keeps the same identity; snippets without outputs are
// content-addressed by source.
func identity(source string, key []byte, outputs []SymbolRef) (string, error) {
	h, err := blake2b.New(digestSize, key)
	if err != nil {
		return "", err
	}

	if len(outputs) > 0 {
		names := make([]string, len(outputs))
		for i, o := range outputs {
			names[i] = o.String()
		}
		sort.Strings(names)
		prefix := strings.Join(names, "+")
		h.Write([]byte(prefix))
		return prefix + "-" + hex.EncodeToString(h.Sum(nil)), nil
	}

	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil)), nil
}
