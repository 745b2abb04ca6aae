package sema

import (
	"context"

	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

type taskKind uint8

const (
	taskLocals taskKind = iota
	taskMembers
	taskExtensions
	taskTopLevel
	taskTarget
	taskFixed
)

func (k taskKind) String() string {
	switch k {
	case taskLocals:
		return "locals"
	case taskMembers:
		return "members"
	case taskExtensions:
		return "extensions"
	case taskTarget:
		return "target"
	case taskFixed:
		return "fixed"
	}
	return "top-level"
}

// task is one lookup mode: a receiver (or none) and a scope level.
type task struct {
	kind     taskKind
	recv     types.TypeID
	implicit bool
	level    symbols.ScopeID
}

// prioritize orders the lookup tasks of a call. Members of the near receiver come
// before its extensions, the near receiver before the far one, receivers before
// the top level. The first task with an applicable candidate stops the search.
func (e *Engine) prioritize(v *env, site *callSite, recv types.TypeID) []task {
	levels := e.Index.Levels(v.scope)
	var out []task
	switch {
	case site.only.IsValid():
		return []task{{kind: taskFixed}}
	case site.target.IsValid():
		return []task{{kind: taskTarget, recv: recv}}
	}
	if site.hasReceiver() {
		out = append(out, task{kind: taskMembers, recv: recv})
		for _, level := range levels {
			out = append(out, task{kind: taskExtensions, recv: recv, level: level})
		}
		return out
	}
	if site.kind == callFunction {
		out = append(out, task{kind: taskLocals})
	}
	for _, r := range v.receivers() {
		out = append(out, task{kind: taskMembers, recv: r, implicit: true})
		for _, level := range levels {
			out = append(out, task{kind: taskExtensions, recv: r, implicit: true, level: level})
		}
	}
	for _, level := range levels {
		out = append(out, task{kind: taskTopLevel, level: level})
	}
	return out
}

// memberRef is a member found on a receiver type with the substitution that
// views it through that receiver.
type memberRef struct {
	sym   symbols.SymbolID
	subst types.Subst
}

// members finds members named name on recv, walking supertypes. Superclass
// members overridden in a subclass are hidden.
func (e *Engine) members(ctx context.Context, recv types.TypeID, name source.StringID) []memberRef {
	c := e.checker(ctx)
	t := e.Types.WithNullable(recv, false)
	tt, ok := e.Types.Lookup(t)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case types.KindClass:
		return e.classMembers(ctx, c, t, name)
	case types.KindParam:
		var out []memberRef
		bounds := c.H.Bounds(types.ParamID(tt.Sym))
		if len(bounds) == 0 {
			bounds = []types.TypeID{e.classType(e.builtin.Any, false)}
		}
		for _, b := range bounds {
			out = append(out, e.members(ctx, b, name)...)
		}
		return out
	case types.KindFn:
		return e.classMembers(ctx, c, e.classType(e.builtin.Any, false), name)
	}
	return nil
}

func (e *Engine) classMembers(ctx context.Context, c *types.Checker, t types.TypeID, name source.StringID) []memberRef {
	var out []memberRef
	seen := make(map[types.ClassID]bool)
	queue := []types.TypeID{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		ct, ok := e.Types.Lookup(cur)
		if !ok || ct.Kind != types.KindClass || seen[types.ClassID(ct.Sym)] {
			continue
		}
		cls := types.ClassID(ct.Sym)
		seen[cls] = true
		subst := c.MemberSubst(t, cls)
		for _, m := range e.Index.Members(symbols.SymbolID(cls), name) {
			if e.sym(m).Kind == symbols.SymbolClass {
				continue
			}
			ref := memberRef{sym: m, subst: subst}
			if e.overridden(ctx, ref, out) {
				continue
			}
			out = append(out, ref)
		}
		queue = append(queue, c.DirectSupertypes(cur)...)
	}
	return out
}

// overridden reports whether a member found earlier (in a subclass) has the same signature.
func (e *Engine) overridden(ctx context.Context, m memberRef, found []memberRef) bool {
	ms := e.sym(m.sym)
	for _, f := range found {
		fs := e.sym(f.sym)
		if fs.Kind != ms.Kind {
			continue
		}
		if ms.Kind == symbols.SymbolProperty {
			return true
		}
		a, b := e.functionDesc(ctx, f.sym), e.functionDesc(ctx, m.sym)
		if len(a.Params) != len(b.Params) {
			continue
		}
		same := true
		for i := range a.Params {
			pa := e.Types.Substitute(a.Params[i].Type, f.subst)
			pb := e.Types.Substitute(b.Params[i].Type, m.subst)
			if pa != pb {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// gather expands the declarations a task sees into candidates.
func (r *resolution) gather(t task) []*candidate {
	e, site := r.e, r.site
	var out []*candidate
	switch t.kind {
	case taskFixed:
		if c := r.declCandidate(site.only, nil, t); c != nil {
			out = append(out, c)
		}
	case taskTarget:
		out = append(out, r.invokeCandidate(symbols.NoSymbolID, t.recv, t))
	case taskLocals:
		if lt, ok := r.v.lookupLocal(site.name); ok {
			out = append(out, r.invokeCandidate(symbols.NoSymbolID, lt, t))
		}
	case taskMembers:
		for _, m := range e.members(r.ctx, t.recv, site.name) {
			if c := r.declCandidate(m.sym, m.subst, t); c != nil {
				out = append(out, c)
			}
		}
	case taskExtensions, taskTopLevel:
		for _, id := range e.Index.Lookup(t.level, site.name) {
			sym := e.sym(id)
			if sym.IsExtension() != (t.kind == taskExtensions) {
				continue
			}
			// class members in a lexical scope are nested classes and member extensions
			if t.kind == taskTopLevel && sym.IsMember() && sym.Kind != symbols.SymbolClass {
				continue
			}
			if c := r.declCandidate(id, nil, t); c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}
