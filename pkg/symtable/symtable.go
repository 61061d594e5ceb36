// Package symtable implements the compiler's scope-aware symbol table.
//
// The table is a flat, append-only list of symbols. Entering a scope does
// not create a new table; instead each symbol records the scope depth it
// was declared at, and leaving a scope deactivates its symbols rather than
// deleting them. Deactivated symbols stay in the table so diagnostics can
// still refer to them after their scope has closed.
package symtable

import "github.com/sable-lang/sable/pkg/types"

// Token records where a symbol's declaration appeared in the source.
type Token struct {
	Lexeme string
	Line   int
	Column int
}

// Symbol is a single declaration tracked by the table.
type Symbol struct {
	Name    string
	Token   Token
	Type    *types.Type
	Scope   int
	Index   uint8
	Mutable bool
	Const   bool
	Active  bool
}

// SymbolTable tracks declarations across nested scopes.
type SymbolTable struct {
	symbols []Symbol
}

// New returns an empty symbol table.
func New() *SymbolTable {
	return &SymbolTable{
		symbols: make([]Symbol, 0, 16),
	}
}

// Add declares a new symbol. It returns false without modifying the table
// if an active symbol with the same name already exists at the same scope
// depth. Shadowing a name from an enclosing scope is allowed.
func (st *SymbolTable) Add(name string, tok Token, typ *types.Type, scope int, index uint8, mutable, isConst bool) bool {
	for i := len(st.symbols) - 1; i >= 0; i-- {
		s := &st.symbols[i]
		if s.Active && s.Scope == scope && s.Name == name {
			return false
		}
	}

	st.symbols = append(st.symbols, Symbol{
		Name:    name,
		Token:   tok,
		Type:    typ,
		Scope:   scope,
		Index:   index,
		Mutable: mutable,
		Const:   isConst,
		Active:  true,
	})
	return true
}

// Find resolves a name to its innermost active declaration. Scanning
// backward means the most recent declaration wins, which is what gives
// shadowing its semantics. Returns nil if no active symbol matches.
func (st *SymbolTable) Find(name string) *Symbol {
	for i := len(st.symbols) - 1; i >= 0; i-- {
		s := &st.symbols[i]
		if s.Active && s.Name == name {
			return s
		}
	}
	return nil
}

// FindAny resolves a name ignoring the active flag, so it can see symbols
// whose scope has already closed. Intended for diagnostics, not resolution.
func (st *SymbolTable) FindAny(name string) *Symbol {
	for i := len(st.symbols) - 1; i >= 0; i-- {
		s := &st.symbols[i]
		if s.Name == name {
			return s
		}
	}
	return nil
}

// RemoveFromScope deactivates every symbol declared at depth scope or
// deeper. It walks backward and stops at the first symbol from a shallower
// scope; symbols are appended in declaration order, so everything before
// that point belongs to scopes that are still open.
func (st *SymbolTable) RemoveFromScope(scope int) {
	for i := len(st.symbols) - 1; i >= 0; i-- {
		s := &st.symbols[i]
		if s.Scope < scope {
			break
		}
		s.Active = false
	}
}

// Len returns the total number of symbols ever declared, active or not.
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}
