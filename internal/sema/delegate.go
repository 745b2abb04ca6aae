package sema

import (
	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/symbols"
	"tern/internal/types"
)

// resolveDelegate types the delegate expression of property id and resolves
// its accessor calls: getValue(thisRef, property), plus setValue(..., value) for a var.
// declared is the explicit property type or NoTypeID.
func (e *Engine) resolveDelegate(c *exprChecker, v *env, id symbols.SymbolID, delegate ast.ExprID, declared types.TypeID) *DelegateDesc {
	in := e.Types
	span := e.Index.AST.Exprs.Get(delegate).Span
	dt := c.typeOf(v, delegate, types.NoTypeID)
	out := &DelegateDesc{Type: dt}
	if in.IsError(dt) {
		return out
	}

	sym := e.sym(id)
	thisRef := in.Builtins().NullableNothing
	switch {
	case v.receiver.IsValid():
		thisRef = v.receiver
	case sym.Owner.IsValid():
		thisRef = e.classDesc(c.ctx, sym.Owner).SelfType
	}
	propType := declared
	if !propType.IsValid() {
		propType = e.classType(e.builtin.Any, true)
	}
	kprop := e.errorType()
	if e.builtin.KProperty.IsValid() {
		kprop = in.Class(types.ClassID(e.builtin.KProperty), []types.TypeID{propType}, false)
	}

	get := &callSite{span: span, nameSpan: span, name: e.getValue, kind: callFunction, recvType: dt,
		argsSpan: span, expected: declared, operator: true,
		args: []callArg{{typ: thisRef, span: span}, {typ: kprop, span: span}}}
	out.Get = e.resolveAccessor(c, v, get)
	if out.Get == nil {
		return out
	}
	if declared.IsValid() {
		c.expectAssignable(out.Get.Result, declared, span, diag.SemaTypeMismatch)
	}

	if sym.Has(symbols.SymbolFlagMutable) {
		value := declared
		if !value.IsValid() {
			value = out.Get.Result
		}
		set := &callSite{span: span, nameSpan: span, name: e.setValue, kind: callFunction, recvType: dt,
			argsSpan: span, operator: true,
			args: []callArg{{typ: thisRef, span: span}, {typ: kprop, span: span}, {typ: value, span: span}}}
		out.Set = e.resolveAccessor(c, v, set)
	}
	return out
}

// complete reports whether every accessor the property needs was resolved.
func (d *DelegateDesc) complete(mutable bool) bool {
	return d.Get != nil && (!mutable || d.Set != nil)
}

// resolveAccessor runs a synthetic accessor call and returns its ResolvedCall, if any.
func (e *Engine) resolveAccessor(c *exprChecker, v *env, site *callSite) *ResolvedCall {
	var calls []*ResolvedCall
	sub := *c
	sub.sink = &calls
	sub.resolveCall(v, site)
	var found *ResolvedCall
	for _, rc := range calls {
		if !rc.Expr.IsValid() && rc.Span == site.span && rc.Name == e.str(site.name) {
			found = rc
		}
	}
	c.recordAll(calls)
	return found
}
