package symbols

import (
	"tern/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeBuiltins           // prelude package, visible to every file
	ScopeStar               // union of the file's star imports
	ScopePackage            // package top level (all files of the package)
	ScopeImports            // explicit imports of the file
	ScopeFile               // root of the file's lexical chain
	ScopeClass              // type parameters, nested classes, member extensions
	ScopeDecl               // type parameters of a function or property
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeBuiltins:
		return "builtins"
	case ScopeStar:
		return "star-imports"
	case ScopePackage:
		return "package"
	case ScopeImports:
		return "imports"
	case ScopeFile:
		return "file"
	case ScopeClass:
		return "class"
	case ScopeDecl:
		return "declaration"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope. Names of an inner level fully shadow
// the outer one; overloads are never merged across levels.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Owner     SymbolID // class or declaration, empty for file levels
	File      FileRef
	Span      source.Span
	NameIndex map[source.StringID][]SymbolID
	Symbols   []SymbolID // declaration order
}

func (s *Scope) add(name source.StringID, id SymbolID) {
	if s.NameIndex == nil {
		s.NameIndex = make(map[source.StringID][]SymbolID)
	}
	s.NameIndex[name] = append(s.NameIndex[name], id)
	s.Symbols = append(s.Symbols, id)
}
