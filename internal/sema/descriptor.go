package sema

import (
	"context"
	"fmt"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/storage"
	"tern/internal/symbols"
	"tern/internal/trace"
	"tern/internal/types"
)

// ParamDesc is a formal value parameter.
type ParamDesc struct {
	Name source.StringID
	// Type is the element type for a vararg.
	Type       types.TypeID
	HasDefault bool
	Vararg     bool
	Span       source.Span
	Default    ast.ExprID
}

// FunctionDesc is the semantic signature of a function or a constructor.
type FunctionDesc struct {
	Sym         symbols.SymbolID
	Constructor bool
	TypeParams  []symbols.SymbolID
	Receiver    types.TypeID // extension receiver
	Params      []ParamDesc
	// Result is the declared type, or NoTypeID when the expression body infers it.
	Result types.TypeID
	Diags  []diag.Diagnostic
}

// ClassDesc describes a classifier.
type ClassDesc struct {
	Sym      symbols.SymbolID
	SelfType types.TypeID
	Ctor     *FunctionDesc
}

// DelegateDesc stores the resolved accessor calls of a delegated property.
type DelegateDesc struct {
	Type types.TypeID
	Get  *ResolvedCall
	Set  *ResolvedCall
}

// PropertyDesc is the semantic view of a property.
type PropertyDesc struct {
	Sym        symbols.SymbolID
	TypeParams []symbols.SymbolID
	Receiver   types.TypeID
	Type       types.TypeID
	Mutable    bool
	Delegate   *DelegateDesc
	Diags      []diag.Diagnostic
	Calls      []*ResolvedCall
}

type headerDesc struct {
	Bounds     []types.TypeID
	Supertypes []types.TypeID
	Diags      []diag.Diagnostic
}

// bodyResult is the inferred type of an expression body with its diagnostics.
type bodyResult struct {
	Type  types.TypeID
	Diags []diag.Diagnostic
	Calls []*ResolvedCall
}

// propAnalysis is a property type. When it came from the initializer or the
// delegate, the whole analysis is kept and never repeated.
type propAnalysis struct {
	Type     types.TypeID
	Receiver types.TypeID
	Explicit bool
	Analyzed bool
	Delegate *DelegateDesc
	Diags    []diag.Diagnostic
	Calls    []*ResolvedCall
}

func (e *Engine) declScope(sym *symbols.Symbol) typeScope {
	return typeScope{scope: sym.Scope, file: sym.File}
}

func (e *Engine) itemTypeParams(item ast.ItemID) []ast.TypeParam {
	items := e.Index.AST.Items
	if cls, ok := items.Class(item); ok {
		return cls.TypeParams
	}
	if fn, ok := items.Fun(item); ok {
		return fn.TypeParams
	}
	if prop, ok := items.Prop(item); ok {
		return prop.TypeParams
	}
	return nil
}

// header returns bounds of a type parameter or supertypes of a class.
func (e *Engine) header(ctx context.Context, id symbols.SymbolID) *headerDesc {
	v, _ := e.headers.Get(ctx, id, func(ctx context.Context) *headerDesc {
		return e.computeHeader(ctx, id)
	})
	return v
}

func (e *Engine) computeHeader(ctx context.Context, id symbols.SymbolID) *headerDesc {
	sym := e.sym(id)
	out := &headerDesc{}
	if sym == nil {
		return out
	}
	rep := &collector{}
	ts := e.declScope(sym)
	switch sym.Kind {
	case symbols.SymbolTypeParam:
		tps := e.itemTypeParams(sym.Item)
		if sym.Index < len(tps) {
			for _, b := range tps[sym.Index].Bounds {
				out.Bounds = append(out.Bounds, e.resolveType(ctx, ts, b, rep))
			}
		}
	case symbols.SymbolClass:
		cls, _ := e.Index.AST.Items.Class(sym.Item)
		for _, st := range cls.Supertypes {
			t := e.resolveType(ctx, ts, st, rep)
			tt, _ := e.Types.Lookup(t)
			if tt.Kind == types.KindParam || tt.Kind == types.KindFn || tt.Nullable {
				diag.ReportError(rep, diag.SemaTypeMismatch, e.Index.AST.Types.Get(st).Span,
					fmt.Sprintf("'%s' cannot be used as a supertype", e.TypeString(t))).Emit()
				continue
			}
			if tt.Kind == types.KindClass {
				out.Supertypes = append(out.Supertypes, t)
			}
		}
	}
	out.Diags = rep.diags
	return out
}

// classDesc builds the classifier descriptor with its primary constructor.
func (e *Engine) classDesc(ctx context.Context, id symbols.SymbolID) *ClassDesc {
	v, _ := e.classes.Get(ctx, id, func(ctx context.Context) *ClassDesc {
		return e.computeClass(ctx, id)
	})
	if v == nil {
		return &ClassDesc{Sym: id, SelfType: e.errorType(), Ctor: &FunctionDesc{Sym: id, Constructor: true, Result: e.errorType()}}
	}
	return v
}

func (e *Engine) selfType(id symbols.SymbolID) types.TypeID {
	sym := e.sym(id)
	if id == e.builtin.Nothing {
		return e.Types.Builtins().Nothing
	}
	args := make([]types.TypeID, len(sym.TypeParams))
	for i, tp := range sym.TypeParams {
		args[i] = e.Types.Param(types.ParamID(tp), false)
	}
	return e.Types.Class(types.ClassID(id), args, false)
}

func (e *Engine) computeClass(ctx context.Context, id symbols.SymbolID) *ClassDesc {
	sp, ctx := trace.StartSpan(ctx, trace.ScopeNode, "descriptor.class")
	defer sp.End(e.Index.QualifiedName(id))

	sym := e.sym(id)
	data, _ := e.Index.AST.Items.Class(sym.Item)
	rep := &collector{}
	self := e.selfType(id)
	ctor := &FunctionDesc{
		Sym:         id,
		Constructor: true,
		TypeParams:  sym.TypeParams,
		Result:      self,
	}
	ctor.Params = e.params(ctx, e.declScope(sym), data.CtorParams, rep)
	ctor.Diags = rep.diags
	return &ClassDesc{Sym: id, SelfType: self, Ctor: ctor}
}

func (e *Engine) params(ctx context.Context, ts typeScope, params []ast.Param, rep diag.Reporter) []ParamDesc {
	out := make([]ParamDesc, len(params))
	for i, p := range params {
		out[i] = ParamDesc{
			Name:       p.Name,
			Type:       e.resolveType(ctx, ts, p.Type, rep),
			HasDefault: p.Default.IsValid(),
			Vararg:     p.Vararg,
			Span:       p.Span,
			Default:    p.Default,
		}
	}
	return out
}

// functionDesc returns the signature of a function, or of a class's primary
// constructor when id is a class.
func (e *Engine) functionDesc(ctx context.Context, id symbols.SymbolID) *FunctionDesc {
	sym := e.sym(id)
	if sym != nil && sym.Kind == symbols.SymbolClass {
		return e.classDesc(ctx, id).Ctor
	}
	v, _ := e.functions.Get(ctx, id, func(ctx context.Context) *FunctionDesc {
		return e.computeFunction(ctx, id)
	})
	if v == nil {
		return &FunctionDesc{Sym: id, Result: e.errorType()}
	}
	return v
}

func (e *Engine) computeFunction(ctx context.Context, id symbols.SymbolID) *FunctionDesc {
	sp, ctx := trace.StartSpan(ctx, trace.ScopeNode, "descriptor.function")
	defer sp.End(e.Index.QualifiedName(id))

	sym := e.sym(id)
	fn, _ := e.Index.AST.Items.Fun(sym.Item)
	rep := &collector{}
	ts := e.declScope(sym)
	desc := &FunctionDesc{Sym: id, TypeParams: sym.TypeParams}
	if fn.Receiver.IsValid() {
		desc.Receiver = e.resolveType(ctx, ts, fn.Receiver, rep)
	}
	desc.Params = e.params(ctx, ts, fn.Params, rep)
	switch {
	case fn.Result.IsValid():
		desc.Result = e.resolveType(ctx, ts, fn.Result, rep)
	case fn.ExprBody.IsValid():
		// inferred lazily from the body
	default:
		desc.Result = e.classType(e.builtin.Unit, false)
	}
	desc.Diags = rep.diags
	return desc
}

// returnType returns the declared or inferred result of a function. Inference
// from the body may loop back on itself, which reports RECURSIVE_DEPENDENCY at the reference.
func (e *Engine) returnType(ctx context.Context, desc *FunctionDesc, at source.Span, rep diag.Reporter) types.TypeID {
	if desc.Result.IsValid() {
		return desc.Result
	}
	res, outcome := e.results.Get(ctx, desc.Sym, func(ctx context.Context) *bodyResult {
		return e.inferBody(ctx, desc.Sym)
	})
	if outcome == storage.Recursive {
		e.reportRecursion(rep, at, desc.Sym)
		return e.errorType()
	}
	if res == nil {
		return e.errorType()
	}
	return res.Type
}

func (e *Engine) reportRecursion(rep diag.Reporter, at source.Span, sym symbols.SymbolID) {
	diag.ReportError(rep, diag.SemaRecursiveDependency, at,
		fmt.Sprintf("type checking has run into a recursive problem: the type of '%s' depends on itself", e.Index.Name(sym))).
		WithNote(e.sym(sym).Span, "declared here").
		Emit()
}

func (e *Engine) inferBody(ctx context.Context, id symbols.SymbolID) *bodyResult {
	sp, ctx := trace.StartSpan(ctx, trace.ScopeNode, "descriptor.body")
	defer sp.End(e.Index.QualifiedName(id))

	sym := e.sym(id)
	fn, _ := e.Index.AST.Items.Fun(sym.Item)
	rep := &collector{}
	var calls []*ResolvedCall
	c := &exprChecker{e: e, ctx: ctx, rep: rep, sink: &calls}
	v := e.functionEnv(ctx, id, e.functionDesc(ctx, id))
	t := c.typeOf(v, fn.ExprBody, types.NoTypeID)
	return &bodyResult{Type: t, Diags: rep.diags, Calls: calls}
}

// propertyType is what references to the property see.
func (e *Engine) propertyType(ctx context.Context, id symbols.SymbolID, at source.Span, rep diag.Reporter) types.TypeID {
	pa, outcome := e.propTypes.Get(ctx, id, func(ctx context.Context) *propAnalysis {
		return e.analyzePropertyType(ctx, id)
	})
	if outcome == storage.Recursive {
		e.reportRecursion(rep, at, id)
		return e.errorType()
	}
	if pa == nil {
		return e.errorType()
	}
	return pa.Type
}

func (e *Engine) propertyReceiver(ctx context.Context, id symbols.SymbolID) types.TypeID {
	pa, _ := e.propTypes.Get(ctx, id, func(ctx context.Context) *propAnalysis {
		return e.analyzePropertyType(ctx, id)
	})
	if pa == nil {
		return types.NoTypeID
	}
	return pa.Receiver
}

func (e *Engine) analyzePropertyType(ctx context.Context, id symbols.SymbolID) *propAnalysis {
	sp, ctx := trace.StartSpan(ctx, trace.ScopeNode, "descriptor.property-type")
	defer sp.End(e.Index.QualifiedName(id))

	sym := e.sym(id)
	if sym.CtorParam > 0 {
		ctor := e.classDesc(ctx, sym.Owner).Ctor
		t := e.errorType()
		if sym.CtorParam <= len(ctor.Params) {
			t = ctor.Params[sym.CtorParam-1].Type
		}
		return &propAnalysis{Type: t, Explicit: true}
	}
	prop, _ := e.Index.AST.Items.Prop(sym.Item)
	rep := &collector{}
	ts := e.declScope(sym)
	out := &propAnalysis{}
	if prop.Receiver.IsValid() {
		out.Receiver = e.resolveType(ctx, ts, prop.Receiver, rep)
	}
	switch {
	case prop.Type.IsValid():
		out.Type = e.resolveType(ctx, ts, prop.Type, rep)
		out.Explicit = true
	case prop.Init.IsValid() || prop.Delegate.IsValid():
		out.Analyzed = true
		out.Type, out.Delegate, out.Calls = e.analyzePropertyBody(ctx, id, out.Receiver, types.NoTypeID, rep)
	default:
		diag.ReportError(rep, diag.SemaMissingPropertyType, sym.Span,
			fmt.Sprintf("property '%s' must have a type, an initializer or a delegate", e.str(sym.Name))).Emit()
		out.Type = e.errorType()
	}
	out.Diags = rep.diags
	return out
}

// analyzePropertyBody checks the initializer or the delegate. declared is
// the explicit property type, or NoTypeID when the type is inferred.
func (e *Engine) analyzePropertyBody(ctx context.Context, id symbols.SymbolID, recv, declared types.TypeID, rep diag.Reporter) (types.TypeID, *DelegateDesc, []*ResolvedCall) {
	sym := e.sym(id)
	prop, _ := e.Index.AST.Items.Prop(sym.Item)
	var calls []*ResolvedCall
	c := &exprChecker{e: e, ctx: ctx, rep: rep, sink: &calls}
	v := e.propertyEnv(ctx, id, recv)
	if prop.Delegate.IsValid() {
		d := e.resolveDelegate(c, v, id, prop.Delegate, declared)
		t := declared
		if !t.IsValid() && d.Get != nil {
			t = d.Get.Result
		}
		if !d.complete(sym.Has(symbols.SymbolFlagMutable)) {
			t = e.errorType()
		}
		return t, d, calls
	}
	t := c.typeOf(v, prop.Init, declared)
	if declared.IsValid() {
		c.expectAssignable(t, declared, e.Index.AST.Exprs.Get(prop.Init).Span, diag.SemaTypeMismatch)
		t = declared
	}
	return t, nil, calls
}

// propertyDesc builds the full property descriptor, including delegate accessor calls.
func (e *Engine) propertyDesc(ctx context.Context, id symbols.SymbolID) *PropertyDesc {
	v, _ := e.properties.Get(ctx, id, func(ctx context.Context) *PropertyDesc {
		return e.computeProperty(ctx, id)
	})
	if v == nil {
		return &PropertyDesc{Sym: id, Type: e.errorType()}
	}
	return v
}

func (e *Engine) computeProperty(ctx context.Context, id symbols.SymbolID) *PropertyDesc {
	sp, ctx := trace.StartSpan(ctx, trace.ScopeNode, "descriptor.property")
	defer sp.End(e.Index.QualifiedName(id))

	sym := e.sym(id)
	desc := &PropertyDesc{
		Sym:        id,
		TypeParams: sym.TypeParams,
		Mutable:    sym.Has(symbols.SymbolFlagMutable),
	}
	pa, outcome := e.propTypes.Get(ctx, id, func(ctx context.Context) *propAnalysis {
		return e.analyzePropertyType(ctx, id)
	})
	if outcome == storage.Recursive || pa == nil {
		desc.Type = e.errorType()
		return desc
	}
	desc.Type, desc.Receiver = pa.Type, pa.Receiver
	desc.Diags = append(desc.Diags, pa.Diags...)
	if pa.Analyzed || sym.CtorParam > 0 {
		desc.Delegate, desc.Calls = pa.Delegate, pa.Calls
		return desc
	}
	prop, _ := e.Index.AST.Items.Prop(sym.Item)
	if prop.Init.IsValid() || prop.Delegate.IsValid() {
		rep := &collector{}
		desc.Type, desc.Delegate, desc.Calls = e.analyzePropertyBody(ctx, id, pa.Receiver, pa.Type, rep)
		desc.Diags = append(desc.Diags, rep.diags...)
	}
	return desc
}
