package types

// Checker answers subtyping questions over one interner and hierarchy.
type Checker struct {
	In  *Interner
	H   Hierarchy
	Any ClassID // top of the hierarchy; every class and function type is a subtype of Any
	// Widening: implicit numeric widenings (Int -> Long, Double).
	Widening map[ClassID][]ClassID
}

// IsSubtype reports a <: b. The error type is compatible both ways,
// and a platform type takes its most permissive bound.
func (c *Checker) IsSubtype(a, b TypeID) bool {
	if a == b {
		return true
	}
	ta, okA := c.In.Lookup(a)
	tb, okB := c.In.Lookup(b)
	if !okA || !okB || ta.Kind == KindError || tb.Kind == KindError {
		return true
	}
	if tb.Kind == KindFlexible {
		info, _ := c.In.FlexInfo(b)
		return c.IsSubtype(a, info.Upper)
	}
	if ta.Kind == KindFlexible {
		info, _ := c.In.FlexInfo(a)
		return c.IsSubtype(info.Lower, b)
	}
	if ta.Nullable && !tb.Nullable {
		return false
	}
	if ta.Kind == KindNothing {
		return true
	}
	switch tb.Kind {
	case KindNothing:
		return false
	case KindParam:
		return ta.Kind == KindParam && ta.Sym == tb.Sym
	}

	switch ta.Kind {
	case KindParam:
		bounds := c.H.Bounds(ParamID(ta.Sym))
		for _, bound := range bounds {
			if ta.Nullable {
				bound = c.In.WithNullable(bound, true)
			}
			if c.IsSubtype(bound, b) {
				return true
			}
		}
		if len(bounds) == 0 {
			// implicit Any? bound
			return tb.Kind == KindClass && ClassID(tb.Sym) == c.Any && tb.Nullable
		}
		return false
	case KindFn:
		if tb.Kind == KindClass {
			return ClassID(tb.Sym) == c.Any
		}
		return tb.Kind == KindFn && c.fnSubtype(a, b)
	case KindClass:
		if tb.Kind != KindClass {
			return false
		}
		if ClassID(tb.Sym) == c.Any {
			return true
		}
		sup, ok := c.AsSupertype(c.In.WithNullable(a, false), ClassID(tb.Sym))
		if !ok {
			return false
		}
		return c.argsSubtype(ClassID(tb.Sym), c.In.Args(sup), c.In.Args(b))
	}
	return false
}

func (c *Checker) argsSubtype(cls ClassID, as, bs []TypeID) bool {
	params := c.H.ClassParams(cls)
	for i := 0; i < len(as) && i < len(bs); i++ {
		v := Invariant
		if i < len(params) {
			v = c.H.Variance(params[i])
		}
		switch v {
		case Covariant:
			if !c.IsSubtype(as[i], bs[i]) {
				return false
			}
		case Contravariant:
			if !c.IsSubtype(bs[i], as[i]) {
				return false
			}
		default:
			if !c.Equal(as[i], bs[i]) {
				return false
			}
		}
	}
	return true
}

// FlatParams flattens `R.(A) -> T` into (R, A): receiver and plain function types are interchangeable.
func (in *Interner) FlatParams(info FnInfo) []TypeID {
	if !info.Receiver.IsValid() {
		return info.Params
	}
	out := make([]TypeID, 0, len(info.Params)+1)
	out = append(out, info.Receiver)
	return append(out, info.Params...)
}

func (c *Checker) fnSubtype(a, b TypeID) bool {
	fa, _ := c.In.FnInfo(a)
	fb, _ := c.In.FnInfo(b)
	pa, pb := c.In.FlatParams(fa), c.In.FlatParams(fb)
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if !c.IsSubtype(pb[i], pa[i]) {
			return false
		}
	}
	return c.IsSubtype(fa.Result, fb.Result)
}

// Equal reports mutual subtyping.
func (c *Checker) Equal(a, b TypeID) bool {
	return a == b || (c.IsSubtype(a, b) && c.IsSubtype(b, a))
}

// AsSupertype finds the supertype of t with classifier cls, arguments substituted.
func (c *Checker) AsSupertype(t TypeID, cls ClassID) (TypeID, bool) {
	seen := make(map[ClassID]bool)
	queue := []TypeID{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		tt, ok := c.In.Lookup(cur)
		if !ok || tt.Kind != KindClass {
			continue
		}
		if ClassID(tt.Sym) == cls {
			return cur, true
		}
		if seen[ClassID(tt.Sym)] {
			continue
		}
		seen[ClassID(tt.Sym)] = true
		queue = append(queue, c.DirectSupertypes(cur)...)
	}
	return NoTypeID, false
}

// DirectSupertypes of a class type with its arguments substituted.
func (c *Checker) DirectSupertypes(t TypeID) []TypeID {
	tt, ok := c.In.Lookup(t)
	if !ok || tt.Kind != KindClass {
		return nil
	}
	cls := ClassID(tt.Sym)
	supers := c.H.Supertypes(cls)
	if len(supers) == 0 {
		return nil
	}
	s := c.classSubst(cls, c.In.Args(t))
	out := make([]TypeID, len(supers))
	for i, st := range supers {
		out[i] = c.In.Substitute(st, s)
	}
	return out
}

// ClassSubst maps declared parameters of cls to args.
func (c *Checker) classSubst(cls ClassID, args []TypeID) Subst {
	params := c.H.ClassParams(cls)
	if len(params) == 0 {
		return nil
	}
	s := make(Subst, len(params))
	for i, p := range params {
		if i < len(args) {
			s[p] = args[i]
		} else {
			s[p] = c.In.Builtins().Error
		}
	}
	return s
}

// MemberSubst returns the substitution that views members of cls through receiver type recv.
func (c *Checker) MemberSubst(recv TypeID, cls ClassID) Subst {
	sup, ok := c.AsSupertype(c.In.WithNullable(recv, false), cls)
	if !ok {
		return nil
	}
	return c.classSubst(cls, c.In.Args(sup))
}

// Convertible reports whether a value of type a can be passed where b is
// expected through an implicit numeric widening.
func (c *Checker) Convertible(a, b TypeID) bool {
	ta, okA := c.In.Lookup(a)
	tb, okB := c.In.Lookup(b)
	if !okA || !okB || ta.Kind != KindClass || tb.Kind != KindClass {
		return false
	}
	if ta.Nullable && !tb.Nullable {
		return false
	}
	for _, to := range c.Widening[ClassID(ta.Sym)] {
		if to == ClassID(tb.Sym) {
			return true
		}
	}
	return false
}
