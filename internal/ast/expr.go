package ast

import (
	"tern/internal/source"
)

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota // заглушка после синтаксической ошибки
	ExprIdent
	ExprLit
	ExprCall
	ExprMember
	ExprLambda
	ExprThis
	ExprParen
)

// Expr represents an expression node in the AST.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type ExprIdentData struct {
	Name source.StringID
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitLong
	LitFloat
	LitString
	LitBool
	LitNull
)

type ExprLitData struct {
	Kind LitKind
	Text string
}

// CallArg — аргумент вызова; Name == NoStringID для позиционного.
type CallArg struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID
	Trailing bool // лямбда после скобок
}

// ExprCallData описывает вызов. Если Name задан, callee ищется по имени
// (с явным ресивером Receiver или без него); иначе вызывается Target (invoke).
type ExprCallData struct {
	Receiver   ExprID
	Safe       bool // a?.f()
	Name       source.StringID
	NameSpan   source.Span
	Target     ExprID
	TypeArgs   []TypeID
	Args       []CallArg
	ArgsClosed source.Span // от '(' до ')' либо пустой
}

type ExprMemberData struct {
	Receiver ExprID
	Safe     bool
	Name     source.StringID
	NameSpan source.Span
}

type LambdaParam struct {
	Span source.Span
	Name source.StringID
	Type TypeID
}

// ExprLambdaData: значение лямбды — последнее выражение тела.
type ExprLambdaData struct {
	Params         []LambdaParam
	ExplicitParams bool // есть `->`; иначе единственный параметр доступен как `it`
	Body           []StmtID
}

type ExprParenData struct {
	Inner ExprID
}
