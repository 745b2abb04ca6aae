package sema

import (
	"context"

	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/storage"
	"tern/internal/symbols"
	"tern/internal/types"
)

// Options configures an Engine.
type Options struct {
	// Checkers are the extra checkers; nil means DefaultCheckers().
	Checkers *Checkers
	// Storage lets the driver share memo table counters.
	Storage *storage.Storage
	Types   *types.Interner
}

type builtinClasses struct {
	Any, Nothing, Unit, Boolean symbols.SymbolID
	Int, Long, Double, String   symbols.SymbolID
	List, KProperty, Deprecated symbols.SymbolID
}

// Engine is the call resolution core over a sealed declaration index.
// Descriptors are built lazily and memoized. An Engine is safe for
// concurrent use by several goroutines (one task per file).
type Engine struct {
	Index *symbols.Index
	Types *types.Interner

	checkers *Checkers
	store    *storage.Storage
	builtin  builtinClasses
	widening map[types.ClassID][]types.ClassID
	itName   source.StringID
	getValue source.StringID
	setValue source.StringID

	headers     *storage.Memo[symbols.SymbolID, *headerDesc]
	functions   *storage.Memo[symbols.SymbolID, *FunctionDesc]
	results     *storage.Memo[symbols.SymbolID, *bodyResult]
	propTypes   *storage.Memo[symbols.SymbolID, *propAnalysis]
	properties  *storage.Memo[symbols.SymbolID, *PropertyDesc]
	classes     *storage.Memo[symbols.SymbolID, *ClassDesc]
	annotations *storage.Memo[symbols.SymbolID, *annotationSet]
}

// NewEngine wires the resolver components over ix. The index must be finished.
func NewEngine(ix *symbols.Index, opts Options) *Engine {
	if opts.Checkers == nil {
		opts.Checkers = DefaultCheckers()
	}
	if opts.Storage == nil {
		opts.Storage = storage.New()
	}
	if opts.Types == nil {
		opts.Types = types.NewInterner()
	}
	e := &Engine{
		Index:    ix,
		Types:    opts.Types,
		checkers: opts.Checkers,
		store:    opts.Storage,
	}
	e.lookupBuiltins()
	e.itName = ix.Strings.Intern("it")
	e.getValue = ix.Strings.Intern("getValue")
	e.setValue = ix.Strings.Intern("setValue")

	s := e.store
	e.headers = storage.NewMemo[symbols.SymbolID, *headerDesc](s, "headers", nil)
	e.functions = storage.NewMemo[symbols.SymbolID, *FunctionDesc](s, "functions", nil)
	e.results = storage.NewMemo[symbols.SymbolID, *bodyResult](s, "results", nil)
	e.propTypes = storage.NewMemo[symbols.SymbolID, *propAnalysis](s, "property-types", nil)
	e.properties = storage.NewMemo[symbols.SymbolID, *PropertyDesc](s, "properties", nil)
	e.classes = storage.NewMemo[symbols.SymbolID, *ClassDesc](s, "classes", nil)
	e.annotations = storage.NewMemo[symbols.SymbolID, *annotationSet](s, "annotations", nil)
	return e
}

// Storage returns the memo manager (for stats).
func (e *Engine) Storage() *storage.Storage { return e.store }

func (e *Engine) lookupBuiltins() {
	pkg, ok := e.Index.Package(e.Index.BuiltinPackage())
	if !ok {
		return
	}
	find := func(name string) symbols.SymbolID {
		id, ok := e.Index.Strings.Find(name)
		if !ok {
			return symbols.NoSymbolID
		}
		for _, sym := range e.Index.Lookup(pkg.Scope, id) {
			if e.Index.Syms.Get(sym).Kind == symbols.SymbolClass {
				return sym
			}
		}
		return symbols.NoSymbolID
	}
	b := &e.builtin
	b.Any, b.Nothing, b.Unit, b.Boolean = find("Any"), find("Nothing"), find("Unit"), find("Boolean")
	b.Int, b.Long, b.Double, b.String = find("Int"), find("Long"), find("Double"), find("String")
	b.List, b.KProperty, b.Deprecated = find("List"), find("KProperty"), find("Deprecated")

	// Int -> Long -> Double: implicit widenings make a candidate weakly applicable
	e.widening = make(map[types.ClassID][]types.ClassID)
	if b.Int.IsValid() && b.Long.IsValid() && b.Double.IsValid() {
		e.widening[types.ClassID(b.Int)] = []types.ClassID{types.ClassID(b.Long), types.ClassID(b.Double)}
		e.widening[types.ClassID(b.Long)] = []types.ClassID{types.ClassID(b.Double)}
	}
}

func (e *Engine) errorType() types.TypeID { return e.Types.Builtins().Error }

// classType returns the non-generic type of a builtin class, or the error type
// when the prelude does not declare it.
func (e *Engine) classType(sym symbols.SymbolID, nullable bool) types.TypeID {
	if !sym.IsValid() {
		return e.errorType()
	}
	if sym == e.builtin.Nothing {
		if nullable {
			return e.Types.Builtins().NullableNothing
		}
		return e.Types.Builtins().Nothing
	}
	return e.Types.Class(types.ClassID(sym), nil, nullable)
}

// checker binds the subtype checker to ctx: the hierarchy reads memo tables lazily
// on behalf of the current task.
func (e *Engine) checker(ctx context.Context) *types.Checker {
	return &types.Checker{
		In:       e.Types,
		H:        hierarchy{e: e, ctx: ctx},
		Any:      types.ClassID(e.builtin.Any),
		Widening: e.widening,
	}
}

// TypeString renders t with declaration names.
func (e *Engine) TypeString(t types.TypeID) string {
	return e.Types.Format(t, e)
}

// ClassName implements types.Namer.
func (e *Engine) ClassName(cls types.ClassID) string {
	return e.Index.Name(symbols.SymbolID(cls))
}

// ParamName implements types.Namer.
func (e *Engine) ParamName(p types.ParamID) string {
	return e.Index.Name(symbols.SymbolID(p))
}

func (e *Engine) str(id source.StringID) string {
	if !id.IsValid() {
		return ""
	}
	return e.Index.Strings.MustLookup(id)
}

func (e *Engine) sym(id symbols.SymbolID) *symbols.Symbol {
	return e.Index.Syms.Get(id)
}

// hierarchy adapts the descriptor layer to types.Hierarchy.
type hierarchy struct {
	e   *Engine
	ctx context.Context
}

func (h hierarchy) Supertypes(cls types.ClassID) []types.TypeID {
	hd := h.e.header(h.ctx, symbols.SymbolID(cls))
	if hd == nil {
		return nil
	}
	return hd.Supertypes
}

func (h hierarchy) ClassParams(cls types.ClassID) []types.ParamID {
	sym := h.e.sym(symbols.SymbolID(cls))
	if sym == nil {
		return nil
	}
	out := make([]types.ParamID, len(sym.TypeParams))
	for i, tp := range sym.TypeParams {
		out[i] = types.ParamID(tp)
	}
	return out
}

func (h hierarchy) Variance(p types.ParamID) types.Variance {
	sym := h.e.sym(symbols.SymbolID(p))
	if sym == nil {
		return types.Invariant
	}
	return variance(sym.Variance)
}

func (h hierarchy) Bounds(p types.ParamID) []types.TypeID {
	hd := h.e.header(h.ctx, symbols.SymbolID(p))
	if hd == nil {
		return nil
	}
	return hd.Bounds
}

// collector gathers diagnostics into a slice. Memo tables use it so the
// declaration owner replays them exactly once.
type collector struct {
	diags []diag.Diagnostic
}

func (c *collector) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	c.diags = append(c.diags, diag.Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes})
}

func (c *collector) hasErrors() bool {
	for _, d := range c.diags {
		if d.Severity == diag.SevError {
			return true
		}
	}
	return false
}

func (c *collector) has(code diag.Code) bool {
	for _, d := range c.diags {
		if d.Code == code {
			return true
		}
	}
	return false
}
