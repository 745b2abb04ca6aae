package sema

import (
	"context"
	"sort"
	"strconv"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/storage"
	"tern/internal/symbols"
	"tern/internal/trace"
	"tern/internal/types"
)

// FileResult holds the resolved calls of one file, sorted by position.
type FileResult struct {
	File  ast.FileID
	Calls []*ResolvedCall
}

// CheckFile analyzes every declaration of file. It builds descriptors, checks
// bodies and default values, and runs the declaration checkers. Diagnostics
// cached in memo tables are replayed here, in the owning file.
func (e *Engine) CheckFile(ctx context.Context, file ast.FileID, rep diag.Reporter) *FileResult {
	ctx = storage.EnsureTask(ctx)
	sp, ctx := trace.StartSpan(ctx, trace.ScopeModule, "sema.file")
	defer sp.End("")

	fc := &fileChecker{e: e, ctx: ctx, rep: rep, res: &FileResult{File: file}}
	f := e.Index.AST.Files.Get(file)
	if f == nil {
		return fc.res
	}
	for _, item := range f.Items {
		if id := e.Index.SymbolOf(item); id.IsValid() {
			fc.declaration(id)
		}
	}
	sort.SliceStable(fc.res.Calls, func(i, j int) bool {
		return fc.res.Calls[i].Span.Less(fc.res.Calls[j].Span)
	})
	sp.WithExtra("calls", strconv.Itoa(len(fc.res.Calls)))
	return fc.res
}

type fileChecker struct {
	e   *Engine
	ctx context.Context
	rep diag.Reporter
	res *FileResult
}

func (fc *fileChecker) replay(diags []diag.Diagnostic) {
	diag.Replay(fc.rep, diags)
}

func (fc *fileChecker) calls(calls []*ResolvedCall) {
	fc.res.Calls = append(fc.res.Calls, calls...)
}

// checker returns an expression checker that writes straight into the file result.
func (fc *fileChecker) checker() *exprChecker {
	return &exprChecker{e: fc.e, ctx: fc.ctx, rep: fc.rep, sink: &fc.res.Calls}
}

func (fc *fileChecker) declaration(id symbols.SymbolID) {
	e, ctx := fc.e, fc.ctx
	if ctx.Err() != nil {
		return
	}
	sym := e.sym(id)
	for _, tp := range sym.TypeParams {
		if hd := e.header(ctx, tp); hd != nil {
			fc.replay(hd.Diags)
		}
	}
	if set := e.annotationSetOf(ctx, id); set != nil {
		fc.replay(set.Diags)
		fc.calls(set.Calls)
	}
	switch sym.Kind {
	case symbols.SymbolClass:
		fc.class(id, sym)
	case symbols.SymbolFunction:
		fc.function(id, sym)
	case symbols.SymbolProperty:
		pd := e.propertyDesc(ctx, id)
		fc.replay(pd.Diags)
		fc.calls(pd.Calls)
		e.checkers.runDeclaration(&DeclarationContext{Engine: e, Ctx: ctx, Sym: id, Property: pd}, fc.rep)
	}
}

func (fc *fileChecker) class(id symbols.SymbolID, sym *symbols.Symbol) {
	e, ctx := fc.e, fc.ctx
	if hd := e.header(ctx, id); hd != nil {
		fc.replay(hd.Diags)
	}
	cd := e.classDesc(ctx, id)
	fc.replay(cd.Ctor.Diags)

	// constructor defaults see the preceding parameters
	v := &env{parent: e.ownerEnv(ctx, sym), scope: sym.Scope, file: sym.File}
	fc.defaults(v, cd.Ctor.Params, true)
	e.checkers.runDeclaration(&DeclarationContext{Engine: e, Ctx: ctx, Sym: id, Class: cd}, fc.rep)

	for _, m := range e.Index.AllMembers(id) {
		if ms := e.sym(m); ms.CtorParam > 0 {
			continue
		}
		fc.declaration(m)
	}
}

func (fc *fileChecker) function(id symbols.SymbolID, sym *symbols.Symbol) {
	e, ctx := fc.e, fc.ctx
	desc := e.functionDesc(ctx, id)
	fc.replay(desc.Diags)
	fn, _ := e.Index.AST.Items.Fun(sym.Item)
	v := e.functionEnv(ctx, id, desc)
	fc.defaults(v, desc.Params, false)

	switch {
	case fn.ExprBody.IsValid() && !desc.Result.IsValid():
		res, _ := e.results.Get(ctx, id, func(ctx context.Context) *bodyResult {
			return e.inferBody(ctx, id)
		})
		if res != nil {
			fc.replay(res.Diags)
			fc.calls(res.Calls)
		}
	case fn.ExprBody.IsValid():
		c := fc.checker()
		t := c.typeOf(v, fn.ExprBody, desc.Result)
		c.expectAssignable(t, desc.Result, e.Index.AST.Exprs.Get(fn.ExprBody).Span, diag.SemaReturnTypeMismatch)
	case fn.HasBlock:
		c := fc.checker()
		body := v.child()
		for _, st := range fn.Block {
			c.stmt(body, e.Index.AST.Stmts.Get(st))
		}
	}
	e.checkers.runDeclaration(&DeclarationContext{Engine: e, Ctx: ctx, Sym: id, Function: desc}, fc.rep)
}

// defaults checks default values against their parameter types.
func (fc *fileChecker) defaults(v *env, params []ParamDesc, progressive bool) {
	c := fc.checker()
	for _, p := range params {
		if p.Default.IsValid() {
			want := p.Type
			if p.Vararg {
				want = fc.e.varargType(p.Type)
			}
			t := c.typeOf(v, p.Default, want)
			c.expectAssignable(t, want, fc.e.Index.AST.Exprs.Get(p.Default).Span, diag.SemaTypeMismatch)
		}
		if progressive {
			t := p.Type
			if p.Vararg {
				t = fc.e.varargType(t)
			}
			v.define(p.Name, t)
		}
	}
}

// ResultType returns the (possibly inferred) result type of a function symbol.
func (e *Engine) ResultType(ctx context.Context, id symbols.SymbolID) types.TypeID {
	return e.returnType(ctx, e.functionDesc(ctx, id), e.sym(id).Span, diag.NopReporter{})
}

// PropertyType returns the type recorded in the property descriptor.
// A delegated property whose accessors did not resolve has the error type
// here even when its type is declared; references inside bodies keep
// seeing the declared type.
func (e *Engine) PropertyType(ctx context.Context, id symbols.SymbolID) types.TypeID {
	return e.propertyDesc(ctx, id).Type
}
