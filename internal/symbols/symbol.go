package symbols

import (
	"tern/internal/ast"
	"tern/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolClass
	SymbolFunction
	SymbolProperty
	SymbolTypeParam
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolClass:
		return "class"
	case SymbolFunction:
		return "function"
	case SymbolProperty:
		return "property"
	case SymbolTypeParam:
		return "type parameter"
	default:
		return "invalid"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagMember SymbolFlags = 1 << iota
	SymbolFlagExtension
	SymbolFlagOperator
	SymbolFlagAbstract
	SymbolFlagOpen
	SymbolFlagInner
	SymbolFlagMutable
	SymbolFlagDelegated
	SymbolFlagInterface
	SymbolFlagAnnotation
	SymbolFlagReified
	SymbolFlagBuiltin
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	names := [...]string{"member", "extension", "operator", "abstract", "open", "inner",
		"mutable", "delegated", "interface", "annotation", "reified", "builtin"}
	labels := make([]string, 0, 4)
	for i, name := range names {
		if f&(1<<i) != 0 {
			labels = append(labels, name)
		}
	}
	return labels
}

// FileRef points to the file a symbol was declared in.
type FileRef struct {
	AST    ast.FileID
	Source source.FileID
}

// Symbol describes a named declaration. Semantics (types, signatures) never
// go into the symbol: the descriptor layer builds them lazily and caches them apart.
type Symbol struct {
	Name    source.StringID
	Kind    SymbolKind
	Flags   SymbolFlags
	Vis     ast.Visibility
	Span    source.Span // declaration name
	File    FileRef
	Item    ast.ItemID // for a property declared by a constructor parameter, the class
	Package string
	// Owner: the class for members, the owner for type parameters.
	Owner SymbolID
	// Scope is where the signature resolves (its own scope holding type parameters).
	Scope      ScopeID
	TypeParams []SymbolID
	// CtorParam: 1-based index of the primary constructor parameter that declared the property.
	CtorParam int
	// Index of the type parameter in its owner; Variance/Reified are copied from syntax.
	Index    int
	Variance ast.Variance
}

func (s *Symbol) Has(flag SymbolFlags) bool { return s.Flags&flag != 0 }

// IsExtension reports whether the declaration has an extension receiver.
func (s *Symbol) IsExtension() bool { return s.Has(SymbolFlagExtension) }

// IsMember reports whether the declaration lives inside a class.
func (s *Symbol) IsMember() bool { return s.Has(SymbolFlagMember) }
