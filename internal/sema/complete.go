package sema

import (
	"fmt"
	"sort"

	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/types"
)

// choose picks the winner among applicable candidates of one task. SUCCESS
// candidates push out the weakly applicable ones; the rest must have a unique maximum.
func (r *resolution) choose(pool []*candidate) (*candidate, bool) {
	var success, weak []*candidate
	for _, c := range pool {
		if c.status == StatusSuccess {
			success = append(success, c)
		} else {
			weak = append(weak, c)
		}
	}
	if len(success) > 0 {
		pool = success
	} else {
		pool = weak
	}
	if len(pool) == 1 {
		return pool[0], true
	}
	for _, a := range pool {
		best := true
		for _, b := range pool {
			if a != b && !r.better(a, b) {
				best = false
				break
			}
		}
		if best {
			return a, true
		}
	}
	r.reportAmbiguity(pool)
	return nil, false
}

func (r *resolution) reportAmbiguity(pool []*candidate) {
	e := r.e
	b := diag.ReportError(r.c.rep, diag.SemaAmbiguousCall, r.site.nameSpan,
		fmt.Sprintf("overload resolution ambiguity between %d candidates", len(pool)))
	for _, c := range pool {
		b.WithNote(e.declSpan(c), "candidate: "+e.signature(c))
	}
	b.Emit()
}

func (e *Engine) declSpan(c *candidate) (sp source.Span) {
	if c.sym.IsValid() {
		return e.sym(c.sym).Span
	}
	return sp
}

// better: a is strictly more specific than b, or both are equally specific and a
// uses no defaults (vararg) where b does.
func (r *resolution) better(a, b *candidate) bool {
	ab, ba := r.moreSpecific(a, b), r.moreSpecific(b, a)
	switch {
	case ab && !ba:
		return true
	case ab && ba:
		if a.defaults != b.defaults {
			return !a.defaults
		}
		if a.vararg != b.vararg {
			return !a.vararg
		}
	}
	return false
}

// moreSpecific reports whether every argument position of a could be passed to
// b: type parameters of b are inferred, those of a stay rigid.
func (r *resolution) moreSpecific(a, b *candidate) bool {
	ck := r.e.checker(r.ctx)
	sys := newSystem(ck, b.typeParams)
	type pair struct{ from, to types.TypeID }
	var pairs []pair
	if a.declRecv.IsValid() && b.declRecv.IsValid() {
		pairs = append(pairs, pair{a.declRecv, b.declRecv})
	}
	for i := range r.site.args {
		pa, pb := a.argParam[i], b.argParam[i]
		if pa < 0 || pb < 0 {
			continue
		}
		pairs = append(pairs, pair{a.paramType(pa), b.paramType(pb)})
	}
	for _, p := range pairs {
		sys.constrain(p.from, p.to)
	}
	subst := sys.partial()
	for _, p := range pairs {
		if !ck.IsSubtype(p.from, r.e.Types.Substitute(p.to, subst)) {
			return false
		}
	}
	return true
}

// complete finalizes the winner: arguments are typed again, the result computed,
// extra checkers run and a ResolvedCall is recorded.
func (r *resolution) complete(w *candidate) types.TypeID {
	e, in, site := r.e, r.e.Types, r.site
	degraded := w.status == StatusError
	if w.argParam == nil {
		// opaque candidate: arguments were never mapped
		r.degradeArgs()
		rc := &ResolvedCall{Expr: site.expr, Span: site.span, Name: w.name, Callee: w.sym, Kind: w.kind,
			Status: w.status, Result: w.result, Safe: site.safe}
		r.c.record(rc)
		return w.result
	}
	if !degraded {
		diag.Replay(r.c.rep, w.late.diags)
	}
	argTypes := r.finalArgs(w)
	if !degraded {
		for _, i := range w.weak {
			p := w.argParam[i]
			diag.ReportInfo(r.c.rep, diag.SemaImplicitConversion, r.argSpan(i),
				fmt.Sprintf("argument of type %s is implicitly converted to %s",
					e.TypeString(argTypes[i]), e.TypeString(in.Substitute(w.paramType(p), w.subst)))).Emit()
		}
	}

	var result types.TypeID
	switch w.kind {
	case CalleeFunction, CalleeConstructor:
		result = e.returnType(r.ctx, w.desc, site.nameSpan, r.c.rep)
		result = in.Substitute(in.Substitute(result, w.dispatch), w.subst)
	case CalleeProperty:
		result = e.propertyType(r.ctx, w.sym, site.nameSpan, r.c.rep)
		result = in.Substitute(in.Substitute(result, w.dispatch), w.subst)
	default:
		result = w.result
	}
	if site.safe && !in.IsError(result) {
		result = in.WithNullable(result, true)
	}

	rc := &ResolvedCall{
		Expr:           site.expr,
		Span:           site.span,
		Name:           w.name,
		Callee:         w.sym,
		Kind:           w.kind,
		Status:         w.status,
		TypeArgs:       w.typeArgs,
		Args:           r.bindings(w),
		Receiver:       w.recv,
		Result:         result,
		Safe:           site.safe,
		UnsafeReceiver: w.unsafe,
	}
	if !degraded {
		cc := &CallContext{Engine: e, Ctx: r.ctx, Call: rc, Site: site.span, NameSpan: site.nameSpan}
		if enclosing := r.v.classes(); len(enclosing) > 0 {
			cc.Owner = enclosing[0]
		}
		e.checkers.runCall(cc, r.c.rep)
	}
	r.c.record(rc)
	return result
}

func (r *resolution) bindings(w *candidate) []ArgBinding {
	in := r.e.Types
	out := make([]ArgBinding, len(w.params))
	for p, prm := range w.params {
		name := r.e.str(prm.Name)
		if name == "" {
			name = fmt.Sprintf("p%d", p+1)
		}
		out[p] = ArgBinding{Param: name, Type: in.Substitute(prm.Type, w.subst), Vararg: prm.Vararg}
	}
	for i, a := range r.site.args {
		if p := w.argParam[i]; p >= 0 {
			out[p].Args = append(out[p].Args, a.expr)
		}
	}
	for p := range out {
		out[p].Default = len(out[p].Args) == 0 && w.params[p].HasDefault
	}
	return out
}

// fail reports why no candidate applies and returns the degraded result.
func (r *resolution) fail(all []*candidate) types.TypeID {
	e, site := r.e, r.site
	for _, c := range all {
		if c.status == StatusError {
			// an argument is already an error: quietly take the first such candidate
			return r.complete(c)
		}
	}
	wrongRecv := len(all) > 0
	for _, c := range all {
		if !c.wrongReceiver {
			wrongRecv = false
			break
		}
	}
	switch {
	case site.operator && (len(all) == 0 || wrongRecv):
		diag.ReportError(r.c.rep, diag.SemaDelegateAccessorMissing, site.span,
			fmt.Sprintf("property delegate of type %s must have a '%s' method", e.TypeString(site.recvType), e.str(site.name))).Emit()
	case len(all) == 0 || wrongRecv:
		b := diag.ReportError(r.c.rep, diag.SemaUnresolvedReference, site.nameSpan,
			fmt.Sprintf("unresolved reference: %s", e.str(site.name)))
		if len(all) == 0 && !site.hasReceiver() {
			if hint := suggest(e.str(site.name), r.visibleNames()); hint != "" {
				b.WithNote(site.nameSpan, fmt.Sprintf("did you mean '%s'?", hint))
			}
		}
		b.Emit()
	case len(all) == 1:
		diag.Replay(r.c.rep, all[0].fail.diags)
	default:
		b := diag.ReportError(r.c.rep, diag.SemaNoneApplicable, site.nameSpan,
			fmt.Sprintf("none of the following %d candidates is applicable", len(all)))
		for _, c := range all {
			msg := "candidate: " + e.signature(c)
			if len(c.fail.diags) > 0 {
				msg += ": " + c.fail.diags[0].Message
			}
			b.WithNote(e.declSpan(c), msg)
		}
		b.Emit()
	}
	r.degradeArgs()
	return e.errorType()
}

func (r *resolution) visibleNames() []string {
	var out []string
	for cur := r.v; cur != nil; cur = cur.parent {
		for name := range cur.locals {
			out = append(out, r.e.str(name))
		}
	}
	sort.Strings(out)
	for _, name := range r.e.Index.Names(r.v.scope) {
		out = append(out, r.e.str(name))
	}
	return out
}
