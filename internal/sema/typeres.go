package sema

import (
	"context"
	"fmt"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

// typeScope is where a type reference resolves: the lexical scope and the file
// (for visibility of private classes).
type typeScope struct {
	scope symbols.ScopeID
	file  symbols.FileRef
}

// resolveType turns a type reference into a semantic type. Unresolvable names
// give the error type rather than a failure, so later analysis does not cascade.
func (e *Engine) resolveType(ctx context.Context, ts typeScope, ref ast.TypeID, rep diag.Reporter) types.TypeID {
	tr := e.Index.AST.Types.Get(ref)
	if tr == nil {
		return e.errorType()
	}
	var t types.TypeID
	switch tr.Kind {
	case ast.TypeFunc:
		recv := types.NoTypeID
		if tr.Receiver.IsValid() {
			recv = e.resolveType(ctx, ts, tr.Receiver, rep)
		}
		params := make([]types.TypeID, len(tr.Params))
		for i, p := range tr.Params {
			params[i] = e.resolveType(ctx, ts, p, rep)
		}
		result := e.classType(e.builtin.Unit, false)
		if tr.Result.IsValid() {
			result = e.resolveType(ctx, ts, tr.Result, rep)
		}
		t = e.Types.Fn(recv, params, result, tr.Nullable)
	default:
		t = e.resolvePathType(ctx, ts, tr, rep)
	}
	if tr.Flexible {
		t = e.Types.Flexible(t)
	}
	return t
}

func (e *Engine) resolvePathType(ctx context.Context, ts typeScope, tr *ast.TypeRef, rep diag.Reporter) types.TypeID {
	args := make([]types.TypeID, len(tr.Args))
	for i, a := range tr.Args {
		args[i] = e.resolveType(ctx, ts, a, rep)
	}
	found := e.resolveClassifier(ts, tr.Path)
	if len(found) == 0 {
		name := e.Index.PathString(tr.Path)
		b := diag.ReportError(rep, diag.SemaUnresolvedReference, tr.Span, fmt.Sprintf("unresolved reference: %s", name))
		if hint := suggest(e.str(tr.Path[len(tr.Path)-1]), e.classifierNames(ts.scope)); hint != "" {
			b.WithNote(tr.Span, fmt.Sprintf("did you mean '%s'?", hint))
		}
		b.Emit()
		return e.errorType()
	}
	id := found[0]
	sym := e.sym(id)
	if sym.Kind == symbols.SymbolTypeParam {
		if len(args) > 0 {
			diag.ReportError(rep, diag.SemaWrongNumberOfTypeArgs, tr.Span,
				fmt.Sprintf("type parameter '%s' cannot have type arguments", e.str(sym.Name))).Emit()
		}
		return e.Types.Param(types.ParamID(id), tr.Nullable)
	}
	if id == e.builtin.Nothing {
		return e.classType(id, tr.Nullable)
	}
	want := len(sym.TypeParams)
	if len(args) != want {
		diag.ReportError(rep, diag.SemaWrongNumberOfTypeArgs, tr.Span,
			fmt.Sprintf("%d type arguments expected for '%s', got %d", want, e.str(sym.Name), len(args))).Emit()
		// best effort: extra arguments are dropped, missing ones become errors
		fixed := make([]types.TypeID, want)
		for i := range fixed {
			if i < len(args) {
				fixed[i] = args[i]
			} else {
				fixed[i] = e.errorType()
			}
		}
		args = fixed
	}
	return e.Types.Class(types.ClassID(id), args, tr.Nullable)
}

// resolveClassifier looks up `Name`, `Outer.Nested` or `a.b.Name`.
func (e *Engine) resolveClassifier(ts typeScope, path []source.StringID) []symbols.SymbolID {
	if len(path) == 0 {
		return nil
	}
	head := e.Index.LookupClassifier(ts.scope, path[0], ts.file)
	if len(head) > 0 {
		if out := e.nestedPath(head, path[1:]); len(out) > 0 {
			return out
		}
	}
	for k := len(path) - 1; k >= 1; k-- {
		pkg, ok := e.Index.Package(e.Index.PathString(path[:k]))
		if !ok {
			continue
		}
		var classes []symbols.SymbolID
		for _, id := range e.Index.Lookup(pkg.Scope, path[k]) {
			s := e.sym(id)
			if s.Kind == symbols.SymbolClass && (s.Vis != ast.VisPrivate || s.File == ts.file) {
				classes = append(classes, id)
			}
		}
		if out := e.nestedPath(classes, path[k+1:]); len(out) > 0 {
			return out
		}
	}
	return nil
}

func (e *Engine) nestedPath(cur []symbols.SymbolID, rest []source.StringID) []symbols.SymbolID {
	for _, seg := range rest {
		var next []symbols.SymbolID
		for _, owner := range cur {
			if e.sym(owner).Kind != symbols.SymbolClass {
				continue
			}
			for _, m := range e.Index.Members(owner, seg) {
				if e.sym(m).Kind == symbols.SymbolClass {
					next = append(next, m)
				}
			}
		}
		cur = next
	}
	return cur
}

func (e *Engine) classifierNames(scope symbols.ScopeID) []string {
	var out []string
	seen := make(map[source.StringID]bool)
	for _, level := range e.Index.Levels(scope) {
		for _, id := range e.Index.Scopes.Get(level).Symbols {
			s := e.sym(id)
			if (s.Kind == symbols.SymbolClass || s.Kind == symbols.SymbolTypeParam) && !seen[s.Name] {
				seen[s.Name] = true
				out = append(out, e.str(s.Name))
			}
		}
	}
	return out
}

func variance(v ast.Variance) types.Variance {
	switch v {
	case ast.Covariant:
		return types.Covariant
	case ast.Contravariant:
		return types.Contravariant
	}
	return types.Invariant
}
