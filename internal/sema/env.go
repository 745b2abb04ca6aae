package sema

import (
	"context"

	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

// env is the lexical environment of an analysis point: local names, the implicit
// receiver of the level and the index scope chain for declaration lookup.
type env struct {
	parent *env
	scope  symbols.ScopeID
	file   symbols.FileRef
	locals map[source.StringID]types.TypeID

	receiver types.TypeID
	class    symbols.SymbolID
	// nested: body of a nested (not inner) class, outer receivers are out of reach
	nested bool

	fn     bool
	result types.TypeID
}

func (v *env) child() *env {
	return &env{parent: v, scope: v.scope, file: v.file}
}

func (v *env) define(name source.StringID, t types.TypeID) {
	if !name.IsValid() {
		return
	}
	if v.locals == nil {
		v.locals = make(map[source.StringID]types.TypeID)
	}
	v.locals[name] = t
}

func (v *env) lookupLocal(name source.StringID) (types.TypeID, bool) {
	for cur := v; cur != nil; cur = cur.parent {
		if t, ok := cur.locals[name]; ok {
			return t, true
		}
	}
	return types.NoTypeID, false
}

// receivers lists implicit receivers, nearest first.
func (v *env) receivers() []types.TypeID {
	var out []types.TypeID
	for cur := v; cur != nil; cur = cur.parent {
		if cur.receiver.IsValid() {
			out = append(out, cur.receiver)
		}
		if cur.nested {
			break
		}
	}
	return out
}

// classes lists lexically enclosing classes for visibility checks.
func (v *env) classes() []symbols.SymbolID {
	var out []symbols.SymbolID
	for cur := v; cur != nil; cur = cur.parent {
		if cur.class.IsValid() {
			out = append(out, cur.class)
		}
	}
	return out
}

func (v *env) returnType() (types.TypeID, bool) {
	for cur := v; cur != nil; cur = cur.parent {
		if cur.fn {
			return cur.result, true
		}
	}
	return types.NoTypeID, false
}

func (e *Engine) rootEnv(sym *symbols.Symbol) *env {
	return &env{scope: sym.Scope, file: sym.File}
}

// classEnv builds the body environment of a class.
func (e *Engine) classEnv(ctx context.Context, cls symbols.SymbolID) *env {
	sym := e.sym(cls)
	var parent *env
	if sym.Owner.IsValid() {
		parent = e.classEnv(ctx, sym.Owner)
	}
	return &env{
		parent:   parent,
		scope:    sym.Scope,
		file:     sym.File,
		receiver: e.classDesc(ctx, cls).SelfType,
		class:    cls,
		nested:   !sym.Has(symbols.SymbolFlagInner),
	}
}

func (e *Engine) ownerEnv(ctx context.Context, sym *symbols.Symbol) *env {
	if sym.Owner.IsValid() {
		return e.classEnv(ctx, sym.Owner)
	}
	return nil
}

// functionEnv: parameters become locals, the extension receiver is closer than the class one.
func (e *Engine) functionEnv(ctx context.Context, id symbols.SymbolID, desc *FunctionDesc) *env {
	sym := e.sym(id)
	v := &env{
		parent:   e.ownerEnv(ctx, sym),
		scope:    sym.Scope,
		file:     sym.File,
		receiver: desc.Receiver,
		fn:       true,
		result:   desc.Result,
	}
	for _, p := range desc.Params {
		t := p.Type
		if p.Vararg {
			t = e.varargType(t)
		}
		v.define(p.Name, t)
	}
	return v
}

func (e *Engine) propertyEnv(ctx context.Context, id symbols.SymbolID, recv types.TypeID) *env {
	sym := e.sym(id)
	return &env{
		parent:   e.ownerEnv(ctx, sym),
		scope:    sym.Scope,
		file:     sym.File,
		receiver: recv,
	}
}

// varargType is the type of a vararg parameter inside the body: List<element>.
func (e *Engine) varargType(elem types.TypeID) types.TypeID {
	if !e.builtin.List.IsValid() {
		return e.errorType()
	}
	return e.Types.Class(types.ClassID(e.builtin.List), []types.TypeID{elem}, false)
}
