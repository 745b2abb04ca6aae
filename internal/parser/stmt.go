package parser

import (
	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/token"
)

// parseBlock: `{ stmts }` тела функции.
func (p *Parser) parseBlock() []ast.StmtID {
	p.advance() // {
	stmts := p.parseStmtsUntilBrace()
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close block")
	return stmts
}

func (p *Parser) parseStmtsUntilBrace() []ast.StmtID {
	var out []ast.StmtID
	for !p.atOr(token.RBrace, token.EOF) {
		if p.at(token.Semicolon) {
			p.advance()
			continue
		}
		before := p.pos
		out = append(out, p.parseStmt())
		if p.pos == before {
			// защита от зацикливания на нераспознанном токене
			p.advance()
		}
	}
	return out
}

func (p *Parser) parseStmt() ast.StmtID {
	start := p.peek().Span
	switch p.peek().Kind {
	case token.KwVal, token.KwVar:
		mutable := p.advance().Kind == token.KwVar
		stmt := ast.Stmt{Kind: ast.StmtLocal, Mutable: mutable}
		nameTok := p.peek()
		if id, ok := p.parseIdent(); ok {
			stmt.Name, stmt.NameSpan = id, nameTok.Span
		}
		if p.at(token.Colon) {
			p.advance()
			stmt.Type = p.parseType()
		}
		if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' and initializer for local"); ok {
			stmt.Expr = p.parseExpr()
		}
		stmt.Span = start.Cover(p.lastSpan)
		return p.arenas.Stmts.New(stmt)
	case token.KwReturn:
		p.advance()
		stmt := ast.Stmt{Kind: ast.StmtReturn}
		next := p.peek()
		if !next.NewlineBefore() && next.Kind != token.RBrace && next.Kind != token.Semicolon && next.Kind != token.EOF {
			stmt.Expr = p.parseExpr()
		}
		stmt.Span = start.Cover(p.lastSpan)
		return p.arenas.Stmts.New(stmt)
	}
	expr := p.parseExpr()
	return p.arenas.Stmts.New(ast.Stmt{Kind: ast.StmtExpr, Span: p.arenas.Exprs.Get(expr).Span, Expr: expr})
}
