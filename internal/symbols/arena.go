package symbols

import (
	"tern/internal/ast"
	"tern/internal/source"
)

// Scopes and Symbols are typed wrappers over ast.Arena. The zero ID
// (NoScopeID / NoSymbolID) is never allocated, so Get(0) == nil.
type Scopes struct{ a *ast.Arena[Scope] }

func NewScopes(capHint uint) *Scopes {
	return &Scopes{a: ast.NewArena[Scope](max(capHint, 32))}
}

// New allocates a scope with an empty name index.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, owner SymbolID, span source.Span) ScopeID {
	return ScopeID(s.a.Allocate(Scope{
		Kind:      kind,
		Parent:    parent,
		Owner:     owner,
		Span:      span,
		NameIndex: make(map[source.StringID][]SymbolID),
	}))
}

func (s *Scopes) Get(id ScopeID) *Scope { return s.a.Get(uint32(id)) }

func (s *Scopes) Len() int { return int(s.a.Len()) }

// Symbols holds every declaration of the index: prelude first, then user
// files in load order.
type Symbols struct{ a *ast.Arena[Symbol] }

func NewSymbols(capHint uint) *Symbols {
	return &Symbols{a: ast.NewArena[Symbol](max(capHint, 64))}
}

// New copies sym into the arena.
func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols.New: nil symbol")
	}
	return SymbolID(s.a.Allocate(*sym))
}

func (s *Symbols) Get(id SymbolID) *Symbol { return s.a.Get(uint32(id)) }

func (s *Symbols) Len() int { return int(s.a.Len()) }
