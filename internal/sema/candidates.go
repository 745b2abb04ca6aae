package sema

import (
	"context"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

// resolution is the state of one call resolution pass.
type resolution struct {
	c    *exprChecker
	e    *Engine
	ctx  context.Context
	v    *env
	site *callSite

	typeArgs []types.TypeID
	args     []argInfo
}

// candidate is one declaration considered for the call site, with its receiver
// binding and inferred substitution.
type candidate struct {
	sym        symbols.SymbolID
	kind       CalleeKind
	task       task
	name       string
	typeParams []symbols.SymbolID
	params     []ParamDesc
	declRecv   types.TypeID
	recv       types.TypeID
	desc       *FunctionDesc
	dispatch   types.Subst
	result     types.TypeID // known upfront for invoke
	vararg     bool
	// opaque: mapping arguments is pointless, the status is already decided
	opaque bool

	status        Status
	fail          collector
	late          collector
	argParam      []int
	defaults      bool
	subst         types.Subst
	typeArgs      []types.TypeID
	argTypes      []types.TypeID
	weak          []int
	wrongReceiver bool
	unsafe        bool
}

func (c *candidate) demote(s Status) {
	if s > c.status {
		c.status = s
	}
}

func (c *candidate) reject(code diag.Code, at source.Span, msg string) {
	c.demote(StatusInapplicable)
	diag.ReportError(&c.fail, code, at, msg).Emit()
}

// paramType returns the declared type a parameter accepts per argument.
func (c *candidate) paramType(p int) types.TypeID {
	return c.params[p].Type
}

func (r *resolution) argSpan(i int) source.Span {
	a := r.site.args[i]
	if a.expr.IsValid() {
		return r.e.Index.AST.Exprs.Get(a.expr).Span
	}
	if !a.span.Empty() {
		return a.span
	}
	return r.site.span
}

func (r *resolution) declCandidate(id symbols.SymbolID, dispatch types.Subst, t task) *candidate {
	e, site := r.e, r.site
	sym := e.sym(id)
	c := &candidate{sym: id, task: t, recv: t.recv, dispatch: dispatch, name: e.str(sym.Name)}
	switch sym.Kind {
	case symbols.SymbolFunction:
		if site.kind != callFunction {
			return nil
		}
		c.kind = CalleeFunction
		c.desc = e.functionDesc(r.ctx, id)
		c.typeParams = c.desc.TypeParams
		c.declRecv = e.Types.Substitute(c.desc.Receiver, dispatch)
		c.setParams(e, c.desc.Params)
		if site.operator && !sym.Has(symbols.SymbolFlagOperator) {
			c.reject(diag.SemaDelegateAccessorMissing, site.span,
				fmt.Sprintf("'%s' must be marked 'operator' to be used as a delegate accessor", c.name))
		}
	case symbols.SymbolClass:
		if site.kind != callFunction {
			return nil
		}
		c.kind = CalleeConstructor
		c.desc = e.functionDesc(r.ctx, id)
		c.typeParams = c.desc.TypeParams
		c.setParams(e, c.desc.Params)
		switch {
		case sym.Has(symbols.SymbolFlagInterface):
			c.reject(diag.SemaNotCallable, site.nameSpan, fmt.Sprintf("interface '%s' does not have constructors", c.name))
		case sym.Has(symbols.SymbolFlagAbstract):
			c.reject(diag.SemaNotCallable, site.nameSpan, fmt.Sprintf("cannot create an instance of abstract class '%s'", c.name))
		case sym.Has(symbols.SymbolFlagAnnotation) && site.only != id:
			c.reject(diag.SemaNotCallable, site.nameSpan, fmt.Sprintf("annotation class '%s' cannot be instantiated", c.name))
		}
	case symbols.SymbolProperty:
		if site.kind == callProperty {
			c.kind = CalleeProperty
			c.typeParams = sym.TypeParams
			c.declRecv = e.Types.Substitute(e.propertyReceiver(r.ctx, id), dispatch)
			return c
		}
		if sym.IsExtension() {
			return nil
		}
		pt := e.Types.Substitute(e.propertyType(r.ctx, id, site.nameSpan, r.c.rep), dispatch)
		inv := r.invokeCandidate(id, pt, t)
		inv.dispatch = dispatch
		return inv
	default:
		return nil
	}
	return c
}

func (c *candidate) setParams(e *Engine, params []ParamDesc) {
	c.params = make([]ParamDesc, len(params))
	for i, p := range params {
		p.Type = e.Types.Substitute(p.Type, c.dispatch)
		c.params[i] = p
		if p.Vararg {
			c.vararg = true
		}
	}
}

// invokeCandidate: a call on a value of function type (variable + invoke).
func (r *resolution) invokeCandidate(id symbols.SymbolID, fnType types.TypeID, t task) *candidate {
	e := r.e
	c := &candidate{sym: id, kind: CalleeInvoke, task: t, name: e.str(r.site.name)}
	if !id.IsValid() && !r.site.name.IsValid() {
		c.name = "invoke"
	}
	if e.Types.IsError(fnType) {
		c.opaque = true
		c.demote(StatusError)
		c.result = e.errorType()
		return c
	}
	info, ok := e.Types.FnInfo(e.Types.WithNullable(fnType, false))
	if !ok {
		c.opaque = true
		c.result = e.errorType()
		c.reject(diag.SemaNotCallable, r.site.nameSpan,
			fmt.Sprintf("expression '%s' of type %s cannot be invoked as a function", c.name, e.TypeString(fnType)))
		return c
	}
	if e.Types.IsNullable(fnType) && !r.site.safe {
		c.unsafe = true
	}
	for _, p := range e.Types.FlatParams(info) {
		c.params = append(c.params, ParamDesc{Type: p})
	}
	c.result = info.Result
	return c
}

// evaluate decides applicability of one candidate.
func (r *resolution) evaluate(c *candidate) {
	if c.opaque {
		return
	}
	e, site := r.e, r.site
	if c.sym.IsValid() && !e.Index.VisibleFrom(c.sym, r.v.file, r.v.classes()) {
		c.reject(diag.SemaInvisibleMember, site.nameSpan,
			fmt.Sprintf("cannot access '%s': it is private in '%s'", c.name, e.ownerName(c.sym)))
	}
	if n := len(r.typeArgs); n > 0 && n != len(c.typeParams) {
		c.reject(diag.SemaWrongNumberOfTypeArgs, site.nameSpan,
			fmt.Sprintf("%d type arguments expected for '%s', got %d", len(c.typeParams), c.name, n))
	}
	r.mapArgs(c)
	if c.status == StatusInapplicable {
		return
	}
	r.infer(c)
}

func (e *Engine) ownerName(id symbols.SymbolID) string {
	sym := e.sym(id)
	if sym.Owner.IsValid() {
		return e.Index.Name(sym.Owner)
	}
	if info := e.Index.FileOf(sym.Scope); info != nil {
		return info.Package
	}
	return ""
}

// mapArgs binds value arguments to parameters: named ones directly, positional
// ones left to right, a vararg takes the tail, a trailing lambda the last parameter.
func (r *resolution) mapArgs(c *candidate) {
	n := len(c.params)
	assigned := bitset.New(uint(n))
	c.argParam = make([]int, len(r.site.args))
	pos, named := 0, false
	tooMany := func(i int) {
		c.reject(diag.SemaTooManyArguments, r.argSpan(i),
			fmt.Sprintf("too many arguments for '%s'", r.e.signature(c)))
	}
	for i, a := range r.site.args {
		c.argParam[i] = -1
		switch {
		case a.trailing:
			last := n - 1
			if n == 0 || (assigned.Test(uint(last)) && !c.params[last].Vararg) {
				tooMany(i)
				continue
			}
			c.argParam[i] = last
			assigned.Set(uint(last))
		case a.name.IsValid():
			named = true
			idx := -1
			for p := range c.params {
				if c.params[p].Name == a.name {
					idx = p
					break
				}
			}
			switch {
			case idx < 0:
				c.reject(diag.SemaNamedArgumentNotFound, a.nameSpan,
					fmt.Sprintf("cannot find a parameter with this name: %s", r.e.str(a.name)))
			case assigned.Test(uint(idx)) && !c.params[idx].Vararg:
				c.reject(diag.SemaArgumentPassedTwice, a.nameSpan,
					fmt.Sprintf("an argument is already passed for parameter '%s'", r.e.str(a.name)))
			default:
				c.argParam[i] = idx
				assigned.Set(uint(idx))
			}
		default:
			if named {
				c.reject(diag.SemaMixingNamedPositional, r.argSpan(i),
					"mixing named and positioned arguments is not allowed")
				continue
			}
			if pos >= n {
				tooMany(i)
				continue
			}
			c.argParam[i] = pos
			assigned.Set(uint(pos))
			if !c.params[pos].Vararg {
				pos++
			}
		}
	}
	missing := r.site.argsSpan
	if missing.Empty() {
		missing = r.site.span
	}
	for p := range c.params {
		if assigned.Test(uint(p)) {
			continue
		}
		switch {
		case c.params[p].HasDefault:
			c.defaults = true
		case c.params[p].Vararg:
		default:
			name := r.e.str(c.params[p].Name)
			if name == "" {
				name = fmt.Sprintf("p%d", p+1)
			}
			c.reject(diag.SemaNoValueForParameter, missing, fmt.Sprintf("no value passed for parameter '%s'", name))
		}
	}
}

// signature renders `name(a: Int, b: String = ...)` for notes.
func (e *Engine) signature(c *candidate) string {
	s := c.name + "("
	for i, p := range c.params {
		if i > 0 {
			s += ", "
		}
		if p.Vararg {
			s += "vararg "
		}
		if p.Name.IsValid() {
			s += e.str(p.Name) + ": "
		}
		s += e.TypeString(p.Type)
		if p.HasDefault {
			s += " = ..."
		}
	}
	s += ")"
	if c.declRecv.IsValid() {
		s = e.TypeString(c.declRecv) + "." + s
	}
	return s
}

func (r *resolution) isLambda(id ast.ExprID) bool {
	ex := r.e.Index.AST.Exprs.Get(id)
	return ex != nil && ex.Kind == ast.ExprLambda
}
