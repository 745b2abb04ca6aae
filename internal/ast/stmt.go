package ast

import (
	"tern/internal/source"
)

type StmtKind uint8

const (
	StmtExpr StmtKind = iota
	StmtLocal
	StmtReturn
)

type Stmt struct {
	Kind StmtKind
	Span source.Span
	Expr ExprID // value for StmtExpr/StmtReturn, initializer for StmtLocal
	// StmtLocal only
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID
	Mutable  bool
}

type Stmts struct {
	Arena *Arena[Stmt]
}

func NewStmts(capHint uint) *Stmts {
	return &Stmts{Arena: NewArena[Stmt](capHint)}
}

func (s *Stmts) New(stmt Stmt) StmtID {
	return StmtID(s.Arena.Allocate(stmt))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}
