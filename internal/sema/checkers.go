package sema

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

// CallContext is what a call checker sees after a call site resolved.
type CallContext struct {
	Engine   *Engine
	Ctx      context.Context
	Call     *ResolvedCall
	Site     source.Span
	NameSpan source.Span
	// Owner is the closest class enclosing the call site, or NoSymbolID.
	Owner symbols.SymbolID
}

// DeclarationContext carries a fully built declaration descriptor. Exactly one
// of Function, Property and Class is set.
type DeclarationContext struct {
	Engine   *Engine
	Ctx      context.Context
	Sym      symbols.SymbolID
	Function *FunctionDesc
	Property *PropertyDesc
	Class    *ClassDesc
}

// AnnotationContext describes one resolved annotation on a declaration.
type AnnotationContext struct {
	Engine     *Engine
	Ctx        context.Context
	Target     symbols.SymbolID
	Annotation *AnnotationDesc
}

// CallChecker validates resolved calls.
type CallChecker interface {
	CheckCall(cc *CallContext, rep diag.Reporter)
}

// DeclarationChecker validates declarations once their descriptors are built.
type DeclarationChecker interface {
	CheckDeclaration(dc *DeclarationContext, rep diag.Reporter)
}

// AnnotationChecker validates resolved annotations.
type AnnotationChecker interface {
	CheckAnnotation(ac *AnnotationContext, rep diag.Reporter)
}

type CallCheckerFunc func(cc *CallContext, rep diag.Reporter)

func (f CallCheckerFunc) CheckCall(cc *CallContext, rep diag.Reporter) { f(cc, rep) }

type DeclarationCheckerFunc func(dc *DeclarationContext, rep diag.Reporter)

func (f DeclarationCheckerFunc) CheckDeclaration(dc *DeclarationContext, rep diag.Reporter) {
	f(dc, rep)
}

type AnnotationCheckerFunc func(ac *AnnotationContext, rep diag.Reporter)

func (f AnnotationCheckerFunc) CheckAnnotation(ac *AnnotationContext, rep diag.Reporter) { f(ac, rep) }

var (
	// ErrUnknownChecker is returned by CheckersFor for a name with no builtin checker.
	ErrUnknownChecker = errors.New("unknown checker")
	// ErrNoCapability is returned when a registered value implements none of the checker interfaces.
	ErrNoCapability  = errors.New("checker implements no checker interface")
	ErrDuplicateName = errors.New("checker already registered")
)

// Checkers is the registry of additional checks, invoked at fixed points of
// the pipeline in registration order. It does not change once an Engine is built.
type Checkers struct {
	names []string
	calls []CallChecker
	decls []DeclarationChecker
	annos []AnnotationChecker
}

// NewCheckers returns an empty registry.
func NewCheckers() *Checkers { return &Checkers{} }

// Register adds checker under name; checker must implement at least one of
// CallChecker, DeclarationChecker, AnnotationChecker.
func (c *Checkers) Register(name string, checker any) error {
	for _, n := range c.names {
		if n == name {
			return fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
	}
	ok := false
	if cc, is := checker.(CallChecker); is {
		c.calls = append(c.calls, cc)
		ok = true
	}
	if dc, is := checker.(DeclarationChecker); is {
		c.decls = append(c.decls, dc)
		ok = true
	}
	if ac, is := checker.(AnnotationChecker); is {
		c.annos = append(c.annos, ac)
		ok = true
	}
	if !ok {
		return fmt.Errorf("%w: %s (%T)", ErrNoCapability, name, checker)
	}
	c.names = append(c.names, name)
	return nil
}

// Names lists registered checker names in registration order.
func (c *Checkers) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func (c *Checkers) runCall(cc *CallContext, rep diag.Reporter) {
	if c == nil {
		return
	}
	for _, ch := range c.calls {
		ch.CheckCall(cc, rep)
	}
}

func (c *Checkers) runDeclaration(dc *DeclarationContext, rep diag.Reporter) {
	if c == nil {
		return
	}
	for _, ch := range c.decls {
		ch.CheckDeclaration(dc, rep)
	}
}

func (c *Checkers) runAnnotation(ac *AnnotationContext, rep diag.Reporter) {
	if c == nil {
		return
	}
	for _, ch := range c.annos {
		ch.CheckAnnotation(ac, rep)
	}
}

var builtinCheckers = map[string]any{
	"reified":             CallCheckerFunc(checkReified),
	"deprecation":         CallCheckerFunc(checkDeprecation),
	"unsafe-call":         CallCheckerFunc(checkUnsafeCall),
	"annotation-class":    AnnotationCheckerFunc(checkAnnotationClass),
	"duplicate-signature": DeclarationCheckerFunc(checkDuplicateSignature),
}

// BuiltinCheckerNames lists names accepted by CheckersFor.
func BuiltinCheckerNames() []string {
	out := make([]string, 0, len(builtinCheckers))
	for name := range builtinCheckers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultCheckers enables every builtin checker.
func DefaultCheckers() *Checkers {
	c, err := CheckersFor(BuiltinCheckerNames())
	if err != nil {
		panic(err)
	}
	return c
}

// CheckersFor builds a registry from builtin checker names (tern.toml `checkers`).
func CheckersFor(names []string) (*Checkers, error) {
	c := NewCheckers()
	for _, name := range names {
		ch, ok := builtinCheckers[name]
		if !ok {
			return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownChecker, name, BuiltinCheckerNames())
		}
		if err := c.Register(name, ch); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// checkReified: a reified parameter cannot be substituted by a platform type or
// by a non-reified type parameter. Error arguments were already reported.
func checkReified(cc *CallContext, rep diag.Reporter) {
	e, rc := cc.Engine, cc.Call
	if !rc.Callee.IsValid() || rc.Kind == CalleeInvoke {
		return
	}
	params := e.sym(rc.Callee).TypeParams
	for i, tp := range params {
		if i >= len(rc.TypeArgs) || !e.sym(tp).Has(symbols.SymbolFlagReified) {
			continue
		}
		arg := rc.TypeArgs[i]
		t, ok := e.Types.Lookup(arg)
		if !ok {
			continue
		}
		bad := false
		switch t.Kind {
		case types.KindFlexible:
			bad = true
		case types.KindParam:
			bad = !e.sym(symbols.SymbolID(t.Sym)).Has(symbols.SymbolFlagReified)
		}
		if bad {
			diag.ReportError(rep, diag.SemaReifiedTypeArgument, cc.NameSpan,
				fmt.Sprintf("cannot use '%s' as reified type parameter '%s'", e.TypeString(arg), e.Index.Name(tp))).Emit()
		}
	}
}

func checkDeprecation(cc *CallContext, rep diag.Reporter) {
	e, rc := cc.Engine, cc.Call
	if !rc.Callee.IsValid() || !e.builtin.Deprecated.IsValid() {
		return
	}
	for _, a := range e.annotationsOf(cc.Ctx, rc.Callee) {
		if a.Class != e.builtin.Deprecated {
			continue
		}
		msg := fmt.Sprintf("'%s' is deprecated", e.Index.Name(rc.Callee))
		if a.Message != "" {
			msg += ". " + a.Message
		}
		diag.ReportWarning(rep, diag.SemaDeprecatedUsage, cc.NameSpan, msg).
			WithNote(e.sym(rc.Callee).Span, "deprecated here").
			Emit()
		return
	}
}

func checkUnsafeCall(cc *CallContext, rep diag.Reporter) {
	rc := cc.Call
	if !rc.UnsafeReceiver {
		return
	}
	diag.ReportError(rep, diag.SemaUnsafeCall, cc.NameSpan,
		fmt.Sprintf("only safe (?.) calls are allowed on a nullable receiver of type %s", cc.Engine.TypeString(rc.Receiver))).Emit()
}

func checkAnnotationClass(ac *AnnotationContext, rep diag.Reporter) {
	e, a := ac.Engine, ac.Annotation
	if !a.Class.IsValid() || e.sym(a.Class).Has(symbols.SymbolFlagAnnotation) {
		return
	}
	diag.ReportError(rep, diag.SemaNotAnAnnotationClass, a.Span,
		fmt.Sprintf("'%s' is not an annotation class", e.Index.Name(a.Class))).Emit()
}

// checkDuplicateSignature reports a function whose signature repeats an
// earlier function with the same name in the same class or package.
func checkDuplicateSignature(dc *DeclarationContext, rep diag.Reporter) {
	e, fn := dc.Engine, dc.Function
	if fn == nil || fn.Constructor {
		return
	}
	sym := e.sym(dc.Sym)
	var peers []symbols.SymbolID
	switch {
	case sym.Owner.IsValid():
		peers = e.Index.Members(sym.Owner, sym.Name)
	default:
		pkg, ok := e.Index.Package(sym.Package)
		if !ok {
			return
		}
		peers = e.Index.Lookup(pkg.Scope, sym.Name)
	}
	for _, other := range peers {
		if other >= dc.Sym {
			continue
		}
		os := e.sym(other)
		if os.Kind != symbols.SymbolFunction {
			continue
		}
		if os.Vis == ast.VisPrivate && sym.Vis == ast.VisPrivate && os.File != sym.File {
			continue
		}
		if e.sameSignature(e.functionDesc(dc.Ctx, other), fn) {
			diag.ReportError(rep, diag.SemaDuplicateDeclaration, sym.Span,
				fmt.Sprintf("conflicting overloads: '%s' is already declared with the same parameter types", e.str(sym.Name))).
				WithNote(os.Span, "previous declaration").
				Emit()
			return
		}
	}
}

func (e *Engine) sameSignature(a, b *FunctionDesc) bool {
	if len(a.Params) != len(b.Params) || len(a.TypeParams) != len(b.TypeParams) {
		return false
	}
	if a.Receiver.IsValid() != b.Receiver.IsValid() {
		return false
	}
	// type parameters are matched by position
	subst := make(types.Subst, len(b.TypeParams))
	for i, tp := range b.TypeParams {
		subst[types.ParamID(tp)] = e.Types.Param(types.ParamID(a.TypeParams[i]), false)
	}
	if a.Receiver.IsValid() && a.Receiver != e.Types.Substitute(b.Receiver, subst) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Vararg != b.Params[i].Vararg || a.Params[i].Type != e.Types.Substitute(b.Params[i].Type, subst) {
			return false
		}
	}
	return true
}
