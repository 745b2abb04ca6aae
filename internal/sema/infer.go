package sema

import (
	"fmt"

	"tern/internal/diag"
	"tern/internal/symbols"
	"tern/internal/types"
)

// system collects constraints on the type variables of one candidate:
// lower bounds come from arguments, upper bounds from the expected type and lambdas.
type system struct {
	c     *types.Checker
	in    *types.Interner
	vars  map[types.ParamID]bool
	fixed types.Subst
	lower map[types.ParamID][]types.TypeID
	upper map[types.ParamID][]types.TypeID
}

func newSystem(c *types.Checker, params []symbols.SymbolID) *system {
	s := &system{
		c:     c,
		in:    c.In,
		vars:  make(map[types.ParamID]bool, len(params)),
		fixed: make(types.Subst),
		lower: make(map[types.ParamID][]types.TypeID),
		upper: make(map[types.ParamID][]types.TypeID),
	}
	for _, p := range params {
		s.vars[types.ParamID(p)] = true
	}
	return s
}

func (s *system) variable(t types.Type) (types.ParamID, bool) {
	if t.Kind != types.KindParam {
		return 0, false
	}
	p := types.ParamID(t.Sym)
	if !s.vars[p] {
		return 0, false
	}
	_, fixed := s.fixed[p]
	return p, !fixed
}

// constrain records sub <: super.
func (s *system) constrain(sub, super types.TypeID) {
	ts, okS := s.in.Lookup(sub)
	tp, okP := s.in.Lookup(super)
	if !okS || !okP {
		return
	}
	if p, ok := s.variable(tp); ok {
		if tp.Nullable {
			sub = s.in.WithNullable(sub, false)
		}
		s.lower[p] = append(s.lower[p], sub)
		return
	}
	if p, ok := s.variable(ts); ok {
		if tp.Kind != types.KindError {
			s.upper[p] = append(s.upper[p], super)
		}
		return
	}
	if ts.Kind == types.KindError || tp.Kind == types.KindError {
		return
	}
	if ts.Kind == types.KindFlexible {
		info, _ := s.in.FlexInfo(sub)
		s.constrain(info.Lower, super)
		return
	}
	if tp.Kind == types.KindFlexible {
		info, _ := s.in.FlexInfo(super)
		s.constrain(sub, info.Upper)
		return
	}
	switch {
	case ts.Kind == types.KindClass && tp.Kind == types.KindClass:
		cls := types.ClassID(tp.Sym)
		sup, ok := s.c.AsSupertype(s.in.WithNullable(sub, false), cls)
		if !ok {
			return
		}
		as, bs := s.in.Args(sup), s.in.Args(super)
		params := s.c.H.ClassParams(cls)
		for i := 0; i < len(as) && i < len(bs); i++ {
			v := types.Invariant
			if i < len(params) {
				v = s.c.H.Variance(params[i])
			}
			switch v {
			case types.Covariant:
				s.constrain(as[i], bs[i])
			case types.Contravariant:
				s.constrain(bs[i], as[i])
			default:
				s.constrain(as[i], bs[i])
				s.constrain(bs[i], as[i])
			}
		}
	case ts.Kind == types.KindFn && tp.Kind == types.KindFn:
		ai, _ := s.in.FnInfo(s.in.WithNullable(sub, false))
		bi, _ := s.in.FnInfo(s.in.WithNullable(super, false))
		ap, bp := s.in.FlatParams(ai), s.in.FlatParams(bi)
		if len(ap) == len(bp) {
			for i := range ap {
				s.constrain(bp[i], ap[i])
			}
		}
		s.constrain(ai.Result, bi.Result)
	case ts.Kind == types.KindParam && tp.Kind != types.KindParam:
		// rigid parameter: constraints go through its bounds
		for _, b := range s.c.H.Bounds(types.ParamID(ts.Sym)) {
			s.constrain(b, super)
		}
	}
}

// solve picks a solution for p: the explicit argument, else the least common
// supertype of the lower bounds, else the first upper bound free of variables.
func (s *system) solve(p types.ParamID) (types.TypeID, bool) {
	if t, ok := s.fixed[p]; ok {
		return t, true
	}
	if lows := s.lower[p]; len(lows) > 0 {
		return s.c.CommonSupertype(lows), true
	}
	for _, up := range s.upper[p] {
		if !s.mentionsVars(up) {
			return up, true
		}
	}
	return types.NoTypeID, false
}

// partial returns the substitution known so far (for the second pass).
func (s *system) partial() types.Subst {
	out := make(types.Subst, len(s.vars))
	for p := range s.vars {
		if t, ok := s.solve(p); ok {
			out[p] = t
		}
	}
	return out
}

func (s *system) mentionsVars(t types.TypeID) bool {
	return s.in.Mentions(t, func(p types.ParamID) bool { return s.vars[p] })
}

// infer runs both passes of argument typing for c and checks the result.
func (r *resolution) infer(c *candidate) {
	e, in, site := r.e, r.e.Types, r.site
	ck := e.checker(r.ctx)
	sys := newSystem(ck, c.typeParams)
	if len(r.typeArgs) == len(c.typeParams) {
		for i, tp := range c.typeParams {
			sys.fixed[types.ParamID(tp)] = r.typeArgs[i]
		}
	}

	recv := c.recv
	if c.declRecv.IsValid() && recv.IsValid() {
		if in.IsNullable(recv) && !in.IsNullable(c.declRecv) {
			recv = in.WithNullable(recv, false)
			if !site.safe {
				c.unsafe = true
			}
		}
		sys.constrain(recv, c.declRecv)
	} else if c.kind != CalleeInvoke && recv.IsValid() && in.IsNullable(recv) && !site.safe {
		// member on a nullable receiver
		c.unsafe = true
	}

	if site.expected.IsValid() {
		if decl := r.declaredResult(c); decl.IsValid() {
			sys.constrain(decl, site.expected)
		}
	}

	c.argTypes = make([]types.TypeID, len(site.args))
	// first pass: arguments that do not depend on the expected type
	for i, a := range r.args {
		p := c.argParam[i]
		if p < 0 || a.postponed {
			continue
		}
		c.argTypes[i] = a.typ
		sys.constrain(a.typ, c.paramType(p))
	}
	// second pass: lambdas and nested generic calls against the parameters known so far
	for i, a := range r.args {
		p := c.argParam[i]
		if p < 0 || !a.postponed {
			continue
		}
		pt := in.Substitute(c.paramType(p), sys.partial())
		t := r.typePostponed(i, pt, sys.mentionsVars)
		c.argTypes[i] = t
		sys.constrain(t, c.paramType(p))
	}

	c.subst = make(types.Subst, len(c.typeParams))
	c.typeArgs = make([]types.TypeID, len(c.typeParams))
	var unresolved []symbols.SymbolID
	for i, tp := range c.typeParams {
		t, ok := sys.solve(types.ParamID(tp))
		if !ok {
			t = e.errorType()
			unresolved = append(unresolved, tp)
		}
		c.subst[types.ParamID(tp)] = t
		c.typeArgs[i] = t
	}
	for i, tp := range c.typeParams {
		t := in.Substitute(c.typeArgs[i], c.subst)
		c.typeArgs[i] = t
		c.subst[types.ParamID(tp)] = t
	}
	for _, tp := range unresolved {
		diag.ReportError(&c.late, diag.SemaCannotInferTypeParameter, site.nameSpan,
			fmt.Sprintf("not enough information to infer type parameter '%s'", e.Index.Name(tp))).Emit()
	}

	for i, tp := range c.typeParams {
		arg := c.typeArgs[i]
		if in.IsError(arg) {
			continue
		}
		hd := e.header(r.ctx, tp)
		if hd == nil {
			continue
		}
		for _, b := range hd.Bounds {
			bound := in.Substitute(b, c.subst)
			if !ck.IsSubtype(arg, bound) {
				c.reject(diag.SemaUpperBoundViolated, site.nameSpan,
					fmt.Sprintf("type argument %s is not within its bounds: should be subtype of %s",
						e.TypeString(arg), e.TypeString(bound)))
			}
		}
	}

	if c.declRecv.IsValid() && recv.IsValid() {
		want := in.Substitute(c.declRecv, c.subst)
		if !ck.IsSubtype(recv, want) {
			c.wrongReceiver = true
			c.reject(diag.SemaTypeMismatch, site.nameSpan,
				fmt.Sprintf("receiver type mismatch: %s is not a subtype of %s", e.TypeString(recv), e.TypeString(want)))
		}
	}

	for i := range site.args {
		p := c.argParam[i]
		if p < 0 {
			continue
		}
		at := c.argTypes[i]
		pt := in.Substitute(c.paramType(p), c.subst)
		switch {
		case in.IsError(at):
			c.demote(StatusError)
		case ck.IsSubtype(at, pt):
		case ck.Convertible(at, pt):
			c.demote(StatusWeak)
			c.weak = append(c.weak, i)
		default:
			c.reject(diag.SemaTypeMismatch, r.argSpan(i),
				fmt.Sprintf("type mismatch: inferred type is %s but %s was expected", e.TypeString(at), e.TypeString(pt)))
		}
	}
}

// declaredResult is the declared result of a candidate, without body inference.
func (r *resolution) declaredResult(c *candidate) types.TypeID {
	switch c.kind {
	case CalleeInvoke:
		return c.result
	case CalleeProperty:
		return types.NoTypeID
	}
	if c.desc == nil || !c.desc.Result.IsValid() {
		return types.NoTypeID
	}
	return r.e.Types.Substitute(c.desc.Result, c.dispatch)
}
