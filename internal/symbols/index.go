package symbols

import (
	"strings"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
)

// Package groups the top-level declarations of all files sharing a package name.
type Package struct {
	Name  string
	Scope ScopeID
	Files []ast.FileID
}

// FileInfo keeps the per-file lookup levels, inner first.
type FileInfo struct {
	Ref     FileRef
	Package string
	Root    ScopeID
	Imports ScopeID
	Star    ScopeID
}

// Index is the module declaration index. It is built on one goroutine (AddFile, then Finish),
// after which it is read-only and may be shared by resolution goroutines.
type Index struct {
	Syms    *Symbols
	Scopes  *Scopes
	AST     *ast.Builder
	Strings *source.Interner

	reporter diag.Reporter
	packages map[string]*Package
	files    map[ast.FileID]*FileInfo
	order    []ast.FileID
	members  map[SymbolID]*Scope
	itemSyms map[ast.ItemID]SymbolID
	builtins ScopeID
	builtinP string
}

// NewIndex creates an empty index over the given syntax arenas.
func NewIndex(b *ast.Builder, reporter diag.Reporter) *Index {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	ix := &Index{
		Syms:     NewSymbols(0),
		Scopes:   NewScopes(0),
		AST:      b,
		Strings:  b.Strings,
		reporter: reporter,
		packages: make(map[string]*Package),
		files:    make(map[ast.FileID]*FileInfo),
		members:  make(map[SymbolID]*Scope),
		itemSyms: make(map[ast.ItemID]SymbolID),
	}
	ix.builtins = ix.Scopes.New(ScopeBuiltins, NoScopeID, NoSymbolID, source.Span{})
	return ix
}

func (ix *Index) name(id source.StringID) string {
	return ix.Strings.MustLookup(id)
}

// PathString joins a dotted path.
func (ix *Index) PathString(path []source.StringID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = ix.name(id)
	}
	return strings.Join(parts, ".")
}

func (ix *Index) pkg(name string) *Package {
	if p, ok := ix.packages[name]; ok {
		return p
	}
	p := &Package{Name: name, Scope: ix.Scopes.New(ScopePackage, NoScopeID, NoSymbolID, source.Span{})}
	ix.packages[name] = p
	return p
}

// AddFile declares all items of a parsed file in its package.
func (ix *Index) AddFile(file ast.FileID, src source.FileID) {
	f := ix.AST.Files.Get(file)
	pkgName := ix.PathString(f.Package)
	p := ix.pkg(pkgName)
	p.Files = append(p.Files, file)

	ref := FileRef{AST: file, Source: src}
	info := &FileInfo{Ref: ref, Package: pkgName}
	info.Root = ix.Scopes.New(ScopeFile, NoScopeID, NoSymbolID, f.Span)
	ix.Scopes.Get(info.Root).File = ref
	ix.files[file] = info
	ix.order = append(ix.order, file)

	for _, item := range f.Items {
		id := ix.declareItem(item, ref, pkgName, info.Root, NoSymbolID)
		ix.addChecked(ix.Scopes.Get(p.Scope), id)
	}
}

// declareItem creates the symbol of item; lexical is the scope its signature resolves in.
// The caller adds the symbol to a name scope.
func (ix *Index) declareItem(item ast.ItemID, ref FileRef, pkg string, lexical ScopeID, owner SymbolID) SymbolID {
	it := ix.AST.Items.Get(item)
	sym := &Symbol{
		Name:    it.Name,
		Vis:     it.Mods.Visibility(),
		Span:    it.NameSpan,
		File:    ref,
		Item:    item,
		Package: pkg,
		Owner:   owner,
	}
	if owner.IsValid() {
		sym.Flags |= SymbolFlagMember
	}
	if it.Mods.Has(ast.ModOperator) {
		sym.Flags |= SymbolFlagOperator
	}
	if it.Mods.Has(ast.ModAbstract) {
		sym.Flags |= SymbolFlagAbstract | SymbolFlagOpen
	}
	if it.Mods.Has(ast.ModOpen) {
		sym.Flags |= SymbolFlagOpen
	}
	var typeParams []ast.TypeParam
	switch it.Kind {
	case ast.ItemClass:
		cls, _ := ix.AST.Items.Class(item)
		sym.Kind = SymbolClass
		typeParams = cls.TypeParams
		switch cls.Kind {
		case ast.ClassInterface:
			sym.Flags |= SymbolFlagInterface | SymbolFlagAbstract | SymbolFlagOpen
		case ast.ClassAnnotation:
			sym.Flags |= SymbolFlagAnnotation
		}
		if it.Mods.Has(ast.ModInner) {
			sym.Flags |= SymbolFlagInner
		}
	case ast.ItemFun:
		fn, _ := ix.AST.Items.Fun(item)
		sym.Kind = SymbolFunction
		typeParams = fn.TypeParams
		if fn.Receiver.IsValid() {
			sym.Flags |= SymbolFlagExtension
		}
		if owner.IsValid() && ix.Syms.Get(owner).Has(SymbolFlagInterface) && !fn.HasBlock && !fn.ExprBody.IsValid() {
			sym.Flags |= SymbolFlagAbstract
		}
	case ast.ItemProp:
		prop, _ := ix.AST.Items.Prop(item)
		sym.Kind = SymbolProperty
		typeParams = prop.TypeParams
		if prop.Receiver.IsValid() {
			sym.Flags |= SymbolFlagExtension
		}
		if prop.Mutable {
			sym.Flags |= SymbolFlagMutable
		}
		if prop.Delegate.IsValid() {
			sym.Flags |= SymbolFlagDelegated
		}
	}
	own := lexical
	if len(typeParams) > 0 || sym.Kind == SymbolClass {
		kind := ScopeDecl
		if sym.Kind == SymbolClass {
			kind = ScopeClass
		}
		own = ix.Scopes.New(kind, lexical, NoSymbolID, it.Span)
	}
	sym.Scope = own
	id := ix.Syms.New(sym)
	ix.itemSyms[item] = id
	if own != lexical {
		ix.Scopes.Get(own).Owner = id
	}

	tps := make([]SymbolID, 0, len(typeParams))
	for i, tp := range typeParams {
		tpSym := &Symbol{
			Name:     tp.Name,
			Kind:     SymbolTypeParam,
			Span:     tp.Span,
			File:     ref,
			Item:     item,
			Package:  pkg,
			Owner:    id,
			Scope:    own,
			Index:    i,
			Variance: tp.Variance,
		}
		if tp.Reified {
			tpSym.Flags |= SymbolFlagReified
		}
		tpID := ix.Syms.New(tpSym)
		ix.Scopes.Get(own).add(tp.Name, tpID)
		tps = append(tps, tpID)
	}
	ix.Syms.Get(id).TypeParams = tps

	if it.Kind == ast.ItemClass {
		ix.declareMembers(id, item, ref, pkg)
	}
	return id
}

func (ix *Index) declareMembers(cls SymbolID, item ast.ItemID, ref FileRef, pkg string) {
	data, _ := ix.AST.Items.Class(item)
	members := &Scope{Kind: ScopeClass, Owner: cls, NameIndex: make(map[source.StringID][]SymbolID)}
	ix.members[cls] = members
	classScope := ix.Syms.Get(cls).Scope

	for i, param := range data.CtorParams {
		if param.Prop == ast.ParamPlain {
			continue
		}
		flags := SymbolFlagMember
		if param.Prop == ast.ParamVar {
			flags |= SymbolFlagMutable
		}
		id := ix.Syms.New(&Symbol{
			Name:      param.Name,
			Kind:      SymbolProperty,
			Flags:     flags,
			Vis:       param.Mods.Visibility(),
			Span:      param.Span,
			File:      ref,
			Item:      item,
			Package:   pkg,
			Owner:     cls,
			Scope:     classScope,
			CtorParam: i + 1,
		})
		ix.addChecked(members, id)
	}
	for _, m := range data.Members {
		id := ix.declareItem(m, ref, pkg, classScope, cls)
		sym := ix.Syms.Get(id)
		// nested classes and member extensions are lexically visible inside the class
		if sym.Kind == SymbolClass || sym.IsExtension() {
			ix.Scopes.Get(classScope).add(sym.Name, id)
		}
		if !sym.IsExtension() {
			ix.addChecked(members, id)
		}
	}
}

// addChecked adds a symbol to the scope, reporting conflicting classes and properties.
// Functions overload freely.
func (ix *Index) addChecked(target *Scope, id SymbolID) {
	sym := ix.Syms.Get(id)
	defer target.add(sym.Name, id)
	if sym.Kind == SymbolFunction {
		return
	}
	for _, other := range target.NameIndex[sym.Name] {
		o := ix.Syms.Get(other)
		if o.Kind != sym.Kind || o.IsExtension() || sym.IsExtension() {
			continue
		}
		if o.Vis == ast.VisPrivate && sym.Vis == ast.VisPrivate && o.File != sym.File {
			continue
		}
		diag.ReportError(ix.reporter, diag.SemaDuplicateDeclaration, sym.Span,
			"conflicting declarations: "+sym.Kind.String()+" '"+ix.name(sym.Name)+"' is already declared").
			WithNote(o.Span, "previous declaration").
			Emit()
		return
	}
}
