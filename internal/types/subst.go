package types

// Subst maps type parameters to their arguments.
type Subst map[ParamID]TypeID

// WithNullable returns t with the nullability flag forced to nullable.
// A platform type is replaced by the matching bound.
func (in *Interner) WithNullable(t TypeID, nullable bool) TypeID {
	tt, ok := in.Lookup(t)
	if !ok {
		return t
	}
	switch tt.Kind {
	case KindError:
		return t
	case KindFlexible:
		info, _ := in.FlexInfo(t)
		if nullable {
			return info.Upper
		}
		return info.Lower
	}
	if tt.Nullable == nullable {
		return t
	}
	tt.Nullable = nullable
	return in.Intern(tt)
}

// IsNullable reports whether values of t may be null (platform types count as not-null).
func (in *Interner) IsNullable(t TypeID) bool {
	tt, ok := in.Lookup(t)
	return ok && tt.Nullable
}

// IsError reports whether t is the error type.
func (in *Interner) IsError(t TypeID) bool {
	tt, ok := in.Lookup(t)
	return !ok || tt.Kind == KindError
}

// Substitute replaces type parameters in t according to s.
func (in *Interner) Substitute(t TypeID, s Subst) TypeID {
	if len(s) == 0 || !t.IsValid() {
		return t
	}
	tt, ok := in.Lookup(t)
	if !ok {
		return t
	}
	switch tt.Kind {
	case KindParam:
		repl, ok := s[ParamID(tt.Sym)]
		if !ok || !repl.IsValid() {
			return t
		}
		if tt.Nullable {
			return in.WithNullable(repl, true)
		}
		return repl
	case KindClass:
		args := in.Args(t)
		if len(args) == 0 {
			return t
		}
		out := make([]TypeID, len(args))
		changed := false
		for i, a := range args {
			out[i] = in.Substitute(a, s)
			changed = changed || out[i] != a
		}
		if !changed {
			return t
		}
		return in.Class(ClassID(tt.Sym), out, tt.Nullable)
	case KindFn:
		info, _ := in.FnInfo(t)
		params := make([]TypeID, len(info.Params))
		for i, p := range info.Params {
			params[i] = in.Substitute(p, s)
		}
		recv := NoTypeID
		if info.Receiver.IsValid() {
			recv = in.Substitute(info.Receiver, s)
		}
		return in.Fn(recv, params, in.Substitute(info.Result, s), tt.Nullable)
	case KindFlexible:
		info, _ := in.FlexInfo(t)
		return in.Flexible(in.Substitute(info.Lower, s))
	}
	return t
}

// Mentions reports whether t refers to any parameter accepted by pred.
func (in *Interner) Mentions(t TypeID, pred func(ParamID) bool) bool {
	tt, ok := in.Lookup(t)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindParam:
		return pred(ParamID(tt.Sym))
	case KindClass:
		for _, a := range in.Args(t) {
			if in.Mentions(a, pred) {
				return true
			}
		}
	case KindFn:
		info, _ := in.FnInfo(t)
		if info.Receiver.IsValid() && in.Mentions(info.Receiver, pred) {
			return true
		}
		for _, p := range info.Params {
			if in.Mentions(p, pred) {
				return true
			}
		}
		return in.Mentions(info.Result, pred)
	case KindFlexible:
		info, _ := in.FlexInfo(t)
		return in.Mentions(info.Lower, pred)
	}
	return false
}

// ContainsError reports whether the error type occurs anywhere in t.
func (in *Interner) ContainsError(t TypeID) bool {
	tt, ok := in.Lookup(t)
	if !ok || tt.Kind == KindError {
		return true
	}
	switch tt.Kind {
	case KindClass:
		for _, a := range in.Args(t) {
			if in.ContainsError(a) {
				return true
			}
		}
	case KindFn:
		info, _ := in.FnInfo(t)
		if info.Receiver.IsValid() && in.ContainsError(info.Receiver) {
			return true
		}
		for _, p := range info.Params {
			if in.ContainsError(p) {
				return true
			}
		}
		return in.ContainsError(info.Result)
	case KindFlexible:
		info, _ := in.FlexInfo(t)
		return in.ContainsError(info.Lower)
	}
	return false
}
