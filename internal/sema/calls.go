package sema

import (
	"tern/internal/ast"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

// Status is the applicability verdict of a candidate.
type Status uint8

const (
	StatusSuccess Status = iota
	// StatusWeak: applicable only through an implicit conversion.
	StatusWeak
	// StatusError: an argument has no type of its own; the candidate is neither dropped nor a winner.
	StatusError
	StatusInapplicable
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusWeak:
		return "WEAKLY_APPLICABLE"
	case StatusError:
		return "ERROR"
	default:
		return "INAPPLICABLE"
	}
}

// applicable reports whether the candidate can take part in disambiguation.
func (s Status) applicable() bool { return s == StatusSuccess || s == StatusWeak }

// CalleeKind classifies what a call resolved to.
type CalleeKind uint8

const (
	CalleeFunction CalleeKind = iota
	CalleeConstructor
	CalleeProperty
	// CalleeInvoke is a call on a value of function type (property, local variable or expression).
	CalleeInvoke
)

func (k CalleeKind) String() string {
	switch k {
	case CalleeConstructor:
		return "constructor"
	case CalleeProperty:
		return "property"
	case CalleeInvoke:
		return "invoke"
	}
	return "function"
}

// ArgBinding maps one formal parameter to the argument expressions bound to it.
type ArgBinding struct {
	Param   string
	Type    types.TypeID
	Args    []ast.ExprID
	Default bool
	Vararg  bool
}

// ResolvedCall is the immutable outcome of resolving one call site.
type ResolvedCall struct {
	Expr     ast.ExprID // NoExprID for synthetic delegate calls
	Span     source.Span
	Name     string
	Callee   symbols.SymbolID // NoSymbolID for invoke on a local value
	Kind     CalleeKind
	Status   Status
	TypeArgs []types.TypeID
	Args     []ArgBinding
	Receiver types.TypeID
	Result   types.TypeID
	Safe     bool
	// UnsafeReceiver: the receiver is nullable but the call does not use `?.`.
	UnsafeReceiver bool
}

type callKind uint8

const (
	callFunction callKind = iota
	callProperty
)

// callSite is the syntactic call site in a shape the resolver likes. Synthetic
// calls (delegate accessors) set receiver and argument types directly.
type callSite struct {
	expr     ast.ExprID
	span     source.Span
	nameSpan source.Span
	name     source.StringID
	kind     callKind

	receiver ast.ExprID
	recvType types.TypeID
	target   ast.ExprID
	safe     bool

	typeArgs []ast.TypeID
	args     []callArg
	argsSpan source.Span
	expected types.TypeID

	operator bool
	// only restricts candidates to a single symbol (annotation constructor)
	only symbols.SymbolID
}

func (s *callSite) hasReceiver() bool {
	return s.receiver.IsValid() || s.recvType.IsValid()
}

type callArg struct {
	name     source.StringID
	nameSpan source.Span
	expr     ast.ExprID
	typ      types.TypeID
	span     source.Span
	trailing bool
}

// argInfo is the first-pass result for an argument, shared by all candidates.
type argInfo struct {
	typ       types.TypeID
	lambda    bool
	postponed bool
}
