package ast

import (
	"tern/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena    *Arena[Expr]
	Idents   *Arena[ExprIdentData]
	Literals *Arena[ExprLitData]
	Calls    *Arena[ExprCallData]
	Members  *Arena[ExprMemberData]
	Lambdas  *Arena[ExprLambdaData]
	Parens   *Arena[ExprParenData]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:    NewArena[Expr](capHint),
		Idents:   NewArena[ExprIdentData](capHint),
		Literals: NewArena[ExprLitData](capHint / 2),
		Calls:    NewArena[ExprCallData](capHint / 2),
		Members:  NewArena[ExprMemberData](capHint / 4),
		Lambdas:  NewArena[ExprLambdaData](capHint / 8),
		Parens:   NewArena[ExprParenData](capHint / 8),
	}
}

func (e *Exprs) new(kind ExprKind, sp source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: sp, Payload: payload}))
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) NewInvalid(sp source.Span) ExprID {
	return e.new(ExprInvalid, sp, NoPayloadID)
}

func (e *Exprs) NewIdent(sp source.Span, name source.StringID) ExprID {
	return e.new(ExprIdent, sp, PayloadID(e.Idents.Allocate(ExprIdentData{Name: name})))
}

func (e *Exprs) NewLit(sp source.Span, kind LitKind, text string) ExprID {
	return e.new(ExprLit, sp, PayloadID(e.Literals.Allocate(ExprLitData{Kind: kind, Text: text})))
}

func (e *Exprs) NewCall(sp source.Span, data ExprCallData) ExprID {
	return e.new(ExprCall, sp, PayloadID(e.Calls.Allocate(data)))
}

func (e *Exprs) NewMember(sp source.Span, data ExprMemberData) ExprID {
	return e.new(ExprMember, sp, PayloadID(e.Members.Allocate(data)))
}

func (e *Exprs) NewLambda(sp source.Span, data ExprLambdaData) ExprID {
	return e.new(ExprLambda, sp, PayloadID(e.Lambdas.Allocate(data)))
}

func (e *Exprs) NewThis(sp source.Span) ExprID {
	return e.new(ExprThis, sp, NoPayloadID)
}

func (e *Exprs) NewParen(sp source.Span, inner ExprID) ExprID {
	return e.new(ExprParen, sp, PayloadID(e.Parens.Allocate(ExprParenData{Inner: inner})))
}

func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIdent {
		return nil, false
	}
	return e.Idents.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Lit(id ExprID) (*ExprLitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLit {
		return nil, false
	}
	return e.Literals.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Member(id ExprID) (*ExprMemberData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprMember {
		return nil, false
	}
	return e.Members.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Lambda(id ExprID) (*ExprLambdaData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLambda {
		return nil, false
	}
	return e.Lambdas.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Paren(id ExprID) (*ExprParenData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprParen {
		return nil, false
	}
	return e.Parens.Get(uint32(expr.Payload)), true
}
