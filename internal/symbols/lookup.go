package symbols

import (
	"slices"

	"tern/internal/ast"
	"tern/internal/source"
)

// File returns lookup info for a parsed file.
func (ix *Index) File(file ast.FileID) *FileInfo {
	return ix.files[file]
}

// Files lists indexed files in the order they were added.
func (ix *Index) Files() []ast.FileID {
	return slices.Clone(ix.order)
}

// Package returns a package by dotted name.
func (ix *Index) Package(name string) (*Package, bool) {
	p, ok := ix.packages[name]
	return p, ok
}

// BuiltinPackage is the name of the implicitly imported prelude package.
func (ix *Index) BuiltinPackage() string { return ix.builtinP }

// SymbolOf returns the symbol declared by an item.
func (ix *Index) SymbolOf(item ast.ItemID) SymbolID {
	return ix.itemSyms[item]
}

// Levels returns the lexical scope chain from scope outwards, file levels
// included: explicit imports, package, star imports, prelude.
func (ix *Index) Levels(scope ScopeID) []ScopeID {
	var out []ScopeID
	cur := scope
	var root *Scope
	for cur.IsValid() {
		s := ix.Scopes.Get(cur)
		if s.Kind == ScopeFile {
			root = s
			break
		}
		out = append(out, cur)
		cur = s.Parent
	}
	if root == nil {
		return out
	}
	info := ix.files[root.File.AST]
	if info == nil {
		return out
	}
	if info.Imports.IsValid() {
		out = append(out, info.Imports)
	}
	out = append(out, ix.packages[info.Package].Scope)
	if info.Star.IsValid() {
		out = append(out, info.Star)
	}
	if info.Package != ix.builtinP {
		out = append(out, ix.builtins)
	}
	return out
}

// FileOf returns the file whose lexical chain contains scope.
func (ix *Index) FileOf(scope ScopeID) *FileInfo {
	for cur := scope; cur.IsValid(); {
		s := ix.Scopes.Get(cur)
		if s.Kind == ScopeFile {
			return ix.files[s.File.AST]
		}
		cur = s.Parent
	}
	return nil
}

// Lookup returns declarations named name at exactly one level.
func (ix *Index) Lookup(scope ScopeID, name source.StringID) []SymbolID {
	s := ix.Scopes.Get(scope)
	if s == nil {
		return nil
	}
	return s.NameIndex[name]
}

// LookupClassifier walks the chain and returns the classifiers of the innermost
// level that declares any with this name.
func (ix *Index) LookupClassifier(scope ScopeID, name source.StringID, from FileRef) []SymbolID {
	for _, level := range ix.Levels(scope) {
		var out []SymbolID
		for _, id := range ix.Lookup(level, name) {
			sym := ix.Syms.Get(id)
			if sym.Kind != SymbolClass && sym.Kind != SymbolTypeParam {
				continue
			}
			if sym.Vis == ast.VisPrivate && !sym.IsMember() && sym.File != from {
				continue
			}
			out = append(out, id)
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// Members returns members of cls declared directly in its body (or as
// constructor properties) with the given name.
func (ix *Index) Members(cls SymbolID, name source.StringID) []SymbolID {
	s := ix.members[cls]
	if s == nil {
		return nil
	}
	return s.NameIndex[name]
}

// AllMembers lists declared members in declaration order.
func (ix *Index) AllMembers(cls SymbolID) []SymbolID {
	s := ix.members[cls]
	if s == nil {
		return nil
	}
	return s.Symbols
}

// Names collects all names visible through the chain, for "did you mean" hints.
func (ix *Index) Names(scope ScopeID) []source.StringID {
	seen := make(map[source.StringID]bool)
	var out []source.StringID
	for _, level := range ix.Levels(scope) {
		for _, id := range ix.Scopes.Get(level).Symbols {
			name := ix.Syms.Get(id).Name
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// VisibleFrom reports whether sym can be referenced from a position inside
// file, lexically nested in the classes listed in enclosing.
func (ix *Index) VisibleFrom(sym SymbolID, file FileRef, enclosing []SymbolID) bool {
	s := ix.Syms.Get(sym)
	if s == nil {
		return false
	}
	if s.Vis != ast.VisPrivate {
		return true
	}
	if !s.IsMember() {
		return s.File == file
	}
	return slices.Contains(enclosing, s.Owner)
}

// Name returns the text of a symbol's name.
func (ix *Index) Name(sym SymbolID) string {
	s := ix.Syms.Get(sym)
	if s == nil {
		return "<invalid>"
	}
	return ix.name(s.Name)
}

// QualifiedName renders `pkg.Outer.name`.
func (ix *Index) QualifiedName(sym SymbolID) string {
	s := ix.Syms.Get(sym)
	if s == nil {
		return "<invalid>"
	}
	name := ix.name(s.Name)
	if s.Owner.IsValid() && s.Kind != SymbolTypeParam {
		return ix.QualifiedName(s.Owner) + "." + name
	}
	if s.Package != "" {
		return s.Package + "." + name
	}
	return name
}
