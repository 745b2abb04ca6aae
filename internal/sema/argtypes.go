package sema

import (
	"context"
	"fmt"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/types"
)

// exprChecker types expressions of one body. rep receives diagnostics,
// sink receives resolved calls; a scratch pass has sink == nil.
type exprChecker struct {
	e    *Engine
	ctx  context.Context
	rep  diag.Reporter
	sink *[]*ResolvedCall
}

// scratch returns a checker whose output is discarded. Diagnostics stay
// in the collector so the caller can inspect them.
func (c *exprChecker) scratch() (*exprChecker, *collector) {
	col := &collector{}
	return &exprChecker{e: c.e, ctx: c.ctx, rep: col}, col
}

func (c *exprChecker) withContext(ctx context.Context) *exprChecker {
	cp := *c
	cp.ctx = ctx
	return &cp
}

func (c *exprChecker) record(rc *ResolvedCall) {
	if c.sink != nil {
		*c.sink = append(*c.sink, rc)
	}
}

func (c *exprChecker) recordAll(calls []*ResolvedCall) {
	if c.sink != nil {
		*c.sink = append(*c.sink, calls...)
	}
}

func (c *exprChecker) expectAssignable(t, want types.TypeID, at source.Span, code diag.Code) {
	if !want.IsValid() || !t.IsValid() {
		return
	}
	if c.e.checker(c.ctx).IsSubtype(t, want) {
		return
	}
	msg := fmt.Sprintf("type mismatch: inferred type is %s but %s was expected", c.e.TypeString(t), c.e.TypeString(want))
	if code == diag.SemaReturnTypeMismatch {
		msg = fmt.Sprintf("return type mismatch: expected %s, actual %s", c.e.TypeString(want), c.e.TypeString(t))
	}
	diag.ReportError(c.rep, code, at, msg).Emit()
}

// typeOf computes the type of expr. expected is the expected type or NoTypeID;
// it guides inference, but the caller checks assignability.
func (c *exprChecker) typeOf(v *env, id ast.ExprID, expected types.TypeID) types.TypeID {
	e := c.e
	exprs := e.Index.AST.Exprs
	ex := exprs.Get(id)
	if ex == nil {
		return e.errorType()
	}
	switch ex.Kind {
	case ast.ExprIdent:
		data, _ := exprs.Ident(id)
		if t, ok := v.lookupLocal(data.Name); ok {
			return t
		}
		return c.resolveCall(v, &callSite{
			expr:     id,
			span:     ex.Span,
			nameSpan: ex.Span,
			name:     data.Name,
			kind:     callProperty,
			expected: expected,
		})
	case ast.ExprLit:
		data, _ := exprs.Lit(id)
		return c.literalType(data.Kind)
	case ast.ExprThis:
		if recvs := v.receivers(); len(recvs) > 0 {
			return recvs[0]
		}
		diag.ReportError(c.rep, diag.SemaNoThisInContext, ex.Span, "'this' is not defined in this context").Emit()
		return e.errorType()
	case ast.ExprParen:
		data, _ := exprs.Paren(id)
		return c.typeOf(v, data.Inner, expected)
	case ast.ExprMember:
		data, _ := exprs.Member(id)
		return c.resolveCall(v, &callSite{
			expr:     id,
			span:     ex.Span,
			nameSpan: data.NameSpan,
			name:     data.Name,
			kind:     callProperty,
			receiver: data.Receiver,
			safe:     data.Safe,
			expected: expected,
		})
	case ast.ExprCall:
		return c.resolveCall(v, c.callSiteOf(id, ex, expected))
	case ast.ExprLambda:
		return c.lambdaType(v, id, e.lambdaExpectOf(expected))
	}
	return e.errorType()
}

func (c *exprChecker) callSiteOf(id ast.ExprID, ex *ast.Expr, expected types.TypeID) *callSite {
	data, _ := c.e.Index.AST.Exprs.Call(id)
	site := &callSite{
		expr:     id,
		span:     ex.Span,
		nameSpan: data.NameSpan,
		name:     data.Name,
		kind:     callFunction,
		receiver: data.Receiver,
		safe:     data.Safe,
		typeArgs: data.TypeArgs,
		argsSpan: data.ArgsClosed,
		expected: expected,
	}
	if !data.Name.IsValid() {
		site.target = data.Target
		site.receiver = ast.NoExprID
		if site.nameSpan.Empty() {
			site.nameSpan = c.e.Index.AST.Exprs.Get(data.Target).Span
		}
	}
	for _, a := range data.Args {
		site.args = append(site.args, callArg{name: a.Name, nameSpan: a.NameSpan, expr: a.Value, trailing: a.Trailing})
	}
	return site
}

func (c *exprChecker) literalType(k ast.LitKind) types.TypeID {
	b := &c.e.builtin
	switch k {
	case ast.LitInt:
		return c.e.classType(b.Int, false)
	case ast.LitLong:
		return c.e.classType(b.Long, false)
	case ast.LitFloat:
		return c.e.classType(b.Double, false)
	case ast.LitString:
		return c.e.classType(b.String, false)
	case ast.LitBool:
		return c.e.classType(b.Boolean, false)
	}
	return c.e.Types.Builtins().NullableNothing
}

// lambdaExpect is what the expected function type tells about a lambda.
type lambdaExpect struct {
	known  bool
	recv   types.TypeID
	params []types.TypeID
	result types.TypeID
	// degraded: the call did not resolve, unknown parameters silently become errors
	degraded bool
}

func (e *Engine) lambdaExpectOf(t types.TypeID) lambdaExpect {
	if !t.IsValid() {
		return lambdaExpect{}
	}
	info, ok := e.Types.FnInfo(e.Types.WithNullable(t, false))
	if !ok {
		return lambdaExpect{}
	}
	params := make([]types.TypeID, len(info.Params))
	copy(params, info.Params)
	return lambdaExpect{known: true, recv: info.Receiver, params: params, result: info.Result}
}

func (c *exprChecker) lambdaType(v *env, id ast.ExprID, exp lambdaExpect) types.TypeID {
	e := c.e
	ex := e.Index.AST.Exprs.Get(id)
	data, _ := e.Index.AST.Exprs.Lambda(id)
	inner := v.child()
	inner.receiver = exp.recv

	var params []types.TypeID
	if data.ExplicitParams {
		if exp.known && len(exp.params) != len(data.Params) && !exp.degraded {
			diag.ReportError(c.rep, diag.SemaTypeMismatch, ex.Span,
				fmt.Sprintf("expected %d parameters of types %s, but the lambda declares %d",
					len(exp.params), e.typeList(exp.params), len(data.Params))).Emit()
		}
		ts := typeScope{scope: v.scope, file: v.file}
		for i, p := range data.Params {
			var t types.TypeID
			switch {
			case p.Type.IsValid():
				t = e.resolveType(c.ctx, ts, p.Type, c.rep)
			case exp.known && i < len(exp.params):
				t = exp.params[i]
			default:
				t = e.errorType()
				if !exp.degraded {
					diag.ReportError(c.rep, diag.SemaCannotInferTypeParameter, p.Span,
						fmt.Sprintf("cannot infer a type for this parameter: %s", e.str(p.Name))).Emit()
				}
			}
			params = append(params, t)
			inner.define(p.Name, t)
		}
	} else {
		switch {
		case exp.known:
			params = exp.params
			if len(params) == 1 {
				inner.define(e.itName, params[0])
			}
		case exp.degraded:
			inner.define(e.itName, e.errorType())
		}
	}

	want := types.NoTypeID
	if exp.known && exp.result.IsValid() && !e.isUnit(exp.result) {
		want = exp.result
	}
	result := e.classType(e.builtin.Unit, false)
	last, lastExpr := c.block(inner, data.Body, want)
	switch {
	case want.IsValid():
		if lastExpr.IsValid() {
			c.expectAssignable(last, want, e.Index.AST.Exprs.Get(lastExpr).Span, diag.SemaTypeMismatch)
		}
		result = want
	case exp.known && exp.result.IsValid():
	case lastExpr.IsValid():
		result = last
	}
	return e.Types.Fn(exp.recv, params, result, false)
}

// block types statements in order. The last expression statement gives the
// block value and is typed against want.
func (c *exprChecker) block(v *env, body []ast.StmtID, want types.TypeID) (types.TypeID, ast.ExprID) {
	stmts := c.e.Index.AST.Stmts
	for i, id := range body {
		st := stmts.Get(id)
		if i == len(body)-1 && st.Kind == ast.StmtExpr {
			return c.typeOf(v, st.Expr, want), st.Expr
		}
		c.stmt(v, st)
	}
	return types.NoTypeID, ast.NoExprID
}

func (c *exprChecker) stmt(v *env, st *ast.Stmt) {
	e := c.e
	switch st.Kind {
	case ast.StmtLocal:
		declared := types.NoTypeID
		if st.Type.IsValid() {
			declared = e.resolveType(c.ctx, typeScope{scope: v.scope, file: v.file}, st.Type, c.rep)
		}
		t := declared
		if st.Expr.IsValid() {
			init := c.typeOf(v, st.Expr, declared)
			if declared.IsValid() {
				c.expectAssignable(init, declared, e.Index.AST.Exprs.Get(st.Expr).Span, diag.SemaTypeMismatch)
			} else {
				t = init
			}
		}
		if !t.IsValid() {
			t = e.errorType()
		}
		v.define(st.Name, t)
	case ast.StmtReturn:
		rt, ok := v.returnType()
		if !st.Expr.IsValid() {
			if ok && rt.IsValid() && !e.isUnit(rt) {
				diag.ReportError(c.rep, diag.SemaReturnTypeMismatch, st.Span,
					fmt.Sprintf("return type mismatch: expected %s, actual Unit", e.TypeString(rt))).Emit()
			}
			return
		}
		t := c.typeOf(v, st.Expr, rt)
		if ok && rt.IsValid() {
			c.expectAssignable(t, rt, e.Index.AST.Exprs.Get(st.Expr).Span, diag.SemaReturnTypeMismatch)
		}
	default:
		c.typeOf(v, st.Expr, types.NoTypeID)
	}
}

func (e *Engine) isUnit(t types.TypeID) bool {
	return e.builtin.Unit.IsValid() && t == e.classType(e.builtin.Unit, false)
}

func (e *Engine) typeList(ts []types.TypeID) string {
	s := "("
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += e.TypeString(t)
	}
	return s + ")"
}
