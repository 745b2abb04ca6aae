package sema

import (
	"strconv"

	"tern/internal/diag"
	"tern/internal/trace"
	"tern/internal/types"
)

// resolveCall runs the whole pipeline for one call site and returns the type
// of the call expression. The resolved call, if any, goes to the sink.
func (c *exprChecker) resolveCall(v *env, site *callSite) types.TypeID {
	e := c.e
	sp, ctx := trace.StartSpan(c.ctx, trace.ScopeNode, "resolve.call")
	name := e.str(site.name)
	defer func() { sp.End(name) }()
	c = c.withContext(ctx)

	r := &resolution{c: c, e: e, ctx: ctx, v: v, site: site}

	recv := site.recvType
	switch {
	case site.receiver.IsValid():
		recv = c.typeOf(v, site.receiver, types.NoTypeID)
	case site.target.IsValid():
		recv = c.typeOf(v, site.target, types.NoTypeID)
	}
	if (site.receiver.IsValid() || site.target.IsValid()) && e.Types.IsError(recv) {
		// the receiver already reported its error; arguments are checked without a call
		r.degradeArgs()
		return e.errorType()
	}

	ts := typeScope{scope: v.scope, file: v.file}
	for _, ta := range site.typeArgs {
		r.typeArgs = append(r.typeArgs, e.resolveType(ctx, ts, ta, c.rep))
	}
	r.prepass()

	var all, pool []*candidate
	for _, t := range e.prioritize(v, site, recv) {
		var applicable []*candidate
		for _, cand := range r.gather(t) {
			r.evaluate(cand)
			all = append(all, cand)
			if cand.status.applicable() {
				applicable = append(applicable, cand)
			}
		}
		if len(applicable) > 0 {
			pool = applicable
			break
		}
	}
	sp.WithExtra("candidates", strconv.Itoa(len(all)))

	if len(pool) == 0 {
		return r.fail(all)
	}
	w, ok := r.choose(pool)
	if !ok {
		r.degradeArgs()
		return e.errorType()
	}
	return r.complete(w)
}

// prepass types arguments once for all candidates. Lambdas and arguments whose
// type cannot be inferred without an expected type wait for the second pass.
func (r *resolution) prepass() {
	r.args = make([]argInfo, len(r.site.args))
	for i, a := range r.site.args {
		switch {
		case a.typ.IsValid():
			r.args[i] = argInfo{typ: a.typ}
		case r.isLambda(a.expr):
			r.args[i] = argInfo{lambda: true, postponed: true}
		default:
			sc, col := r.c.scratch()
			t := sc.typeOf(r.v, a.expr, types.NoTypeID)
			if col.has(diag.SemaCannotInferTypeParameter) {
				r.args[i] = argInfo{postponed: true}
				continue
			}
			r.args[i] = argInfo{typ: t}
		}
	}
}

// typePostponed types a postponed argument against the partially inferred
// parameter type pt; unresolved variables in lambda parameters become errors.
func (r *resolution) typePostponed(i int, pt types.TypeID, hasVars func(types.TypeID) bool) types.TypeID {
	e := r.e
	a := r.site.args[i]
	sc, _ := r.c.scratch()
	if !r.args[i].lambda {
		expected := pt
		if hasVars(pt) {
			expected = types.NoTypeID
		}
		return sc.typeOf(r.v, a.expr, expected)
	}
	exp := e.lambdaExpectOf(pt)
	for j, p := range exp.params {
		if hasVars(p) {
			exp.params[j] = e.errorType()
		}
	}
	if exp.recv.IsValid() && hasVars(exp.recv) {
		exp.recv = e.errorType()
	}
	if exp.result.IsValid() && hasVars(exp.result) {
		exp.result = types.NoTypeID
	}
	return sc.lambdaType(r.v, a.expr, exp)
}

// degradeArgs types arguments of a call that did not resolve. Diagnostics
// inside the arguments are kept; unknown lambda parameters silently become errors.
func (r *resolution) degradeArgs() {
	for _, a := range r.site.args {
		if !a.expr.IsValid() {
			continue
		}
		if r.isLambda(a.expr) {
			r.c.lambdaType(r.v, a.expr, lambdaExpect{degraded: true})
			continue
		}
		r.c.typeOf(r.v, a.expr, types.NoTypeID)
	}
}

// finalArgs types arguments with the winner's substitution and the real reporter.
func (r *resolution) finalArgs(w *candidate) []types.TypeID {
	in := r.e.Types
	out := make([]types.TypeID, len(r.site.args))
	for i, a := range r.site.args {
		if a.typ.IsValid() {
			out[i] = a.typ
			continue
		}
		p := w.argParam[i]
		if p < 0 {
			out[i] = r.c.typeOf(r.v, a.expr, types.NoTypeID)
			continue
		}
		pt := in.Substitute(w.paramType(p), w.subst)
		switch {
		case r.args[i].lambda:
			exp := r.e.lambdaExpectOf(pt)
			exp.degraded = w.status == StatusError
			out[i] = r.c.lambdaType(r.v, a.expr, exp)
		case r.args[i].postponed && !in.ContainsError(pt):
			out[i] = r.c.typeOf(r.v, a.expr, pt)
		default:
			out[i] = r.c.typeOf(r.v, a.expr, types.NoTypeID)
		}
	}
	return out
}
