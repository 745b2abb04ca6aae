package symbols

import (
	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
)

// Finish resolves imports of every file and seals the builtins level.
// builtinPkg is the prelude package, implicitly imported by every file.
func (ix *Index) Finish(builtinPkg string) {
	ix.builtinP = builtinPkg
	if p, ok := ix.packages[builtinPkg]; ok {
		b := ix.Scopes.Get(ix.builtins)
		for _, id := range ix.Scopes.Get(p.Scope).Symbols {
			if ix.Syms.Get(id).Vis != ast.VisPrivate {
				ix.Syms.Get(id).Flags |= SymbolFlagBuiltin
				b.add(ix.Syms.Get(id).Name, id)
			}
		}
	}
	for _, file := range ix.order {
		ix.resolveImports(ix.files[file])
	}
}

func (ix *Index) resolveImports(info *FileInfo) {
	f := ix.AST.Files.Get(info.Ref.AST)
	info.Imports = ix.Scopes.New(ScopeImports, NoScopeID, NoSymbolID, f.Span)
	info.Star = ix.Scopes.New(ScopeStar, NoScopeID, NoSymbolID, f.Span)
	for _, imp := range f.Imports {
		if imp.Star {
			p, ok := ix.packages[ix.PathString(imp.Path)]
			if !ok {
				ix.unresolvedImport(imp, "unresolved package '"+ix.PathString(imp.Path)+"'")
				continue
			}
			star := ix.Scopes.Get(info.Star)
			for _, id := range ix.Scopes.Get(p.Scope).Symbols {
				if ix.Syms.Get(id).Vis != ast.VisPrivate {
					star.add(ix.Syms.Get(id).Name, id)
				}
			}
			continue
		}
		if len(imp.Path) < 2 {
			ix.unresolvedImport(imp, "import must name a declaration inside a package")
			continue
		}
		last := imp.Path[len(imp.Path)-1]
		found := ix.resolveQualified(imp.Path[:len(imp.Path)-1], last)
		if len(found) == 0 {
			ix.unresolvedImport(imp, "unresolved import '"+ix.PathString(imp.Path)+"'")
			continue
		}
		scope := ix.Scopes.Get(info.Imports)
		for _, id := range found {
			scope.add(last, id)
		}
	}
}

// resolveQualified looks name up in package prefix, and when there is no such
// package, among members of class prefix (a.b.Outer.Nested).
func (ix *Index) resolveQualified(prefix []source.StringID, name source.StringID) []SymbolID {
	var out []SymbolID
	if p, ok := ix.packages[ix.PathString(prefix)]; ok {
		for _, id := range ix.Scopes.Get(p.Scope).NameIndex[name] {
			if ix.Syms.Get(id).Vis != ast.VisPrivate {
				out = append(out, id)
			}
		}
		return out
	}
	if len(prefix) < 2 {
		return nil
	}
	for _, owner := range ix.resolveQualified(prefix[:len(prefix)-1], prefix[len(prefix)-1]) {
		if ix.Syms.Get(owner).Kind != SymbolClass {
			continue
		}
		for _, id := range ix.Members(owner, name) {
			if ix.Syms.Get(id).Kind == SymbolClass {
				out = append(out, id)
			}
		}
	}
	return out
}

func (ix *Index) unresolvedImport(imp ast.Import, msg string) {
	diag.ReportError(ix.reporter, diag.SemaUnresolvedImport, imp.Span, msg).Emit()
}
