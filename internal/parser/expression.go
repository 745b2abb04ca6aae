package parser

import (
	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/token"
)

// parseExpr: в языке нет бинарных операторов, выражение — первичное плюс постфиксы.
func (p *Parser) parseExpr() ast.ExprID {
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parsePrimary() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		name := p.intern(tok.Text)
		if p.startsCallSuffix() {
			return p.parseCallSuffix(tok.Span, ast.ExprCallData{Name: name, NameSpan: tok.Span})
		}
		return p.arenas.Exprs.NewIdent(tok.Span, name)
	case token.IntLit, token.LongLit, token.FloatLit, token.StringLit, token.BoolLit, token.NullLit:
		p.advance()
		return p.arenas.Exprs.NewLit(tok.Span, litKind(tok.Kind), tok.Text)
	case token.KwThis:
		p.advance()
		return p.arenas.Exprs.NewThis(tok.Span)
	case token.LParen:
		p.advance()
		inner := p.parseExpr()
		p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'")
		return p.arenas.Exprs.NewParen(tok.Span.Cover(p.lastSpan), inner)
	case token.LBrace:
		return p.parseLambda()
	}
	p.err(diag.SynExpectExpression, "expected expression, got "+tok.Kind.String())
	sp := p.diagnosticSpan()
	if tok.Kind != token.EOF && tok.Kind != token.RBrace && tok.Kind != token.RParen {
		p.advance()
	}
	return p.arenas.Exprs.NewInvalid(sp)
}

func litKind(k token.Kind) ast.LitKind {
	switch k {
	case token.LongLit:
		return ast.LitLong
	case token.FloatLit:
		return ast.LitFloat
	case token.StringLit:
		return ast.LitString
	case token.BoolLit:
		return ast.LitBool
	case token.NullLit:
		return ast.LitNull
	}
	return ast.LitInt
}

// startsCallSuffix: `<`, `(` или трейлинг-лямбда на той же строке.
func (p *Parser) startsCallSuffix() bool {
	return p.atSameLine(token.Lt) || p.atSameLine(token.LParen) || p.atSameLine(token.LBrace)
}

func (p *Parser) parsePostfix(expr ast.ExprID) ast.ExprID {
	for {
		start := p.arenas.Exprs.Get(expr).Span
		switch {
		case p.atOr(token.Dot, token.SafeDot) && p.peekN(1).Kind == token.Ident:
			safe := p.advance().Kind == token.SafeDot
			nameTok := p.advance()
			name := p.intern(nameTok.Text)
			if p.startsCallSuffix() {
				expr = p.parseCallSuffix(start, ast.ExprCallData{
					Receiver: expr, Safe: safe, Name: name, NameSpan: nameTok.Span,
				})
				continue
			}
			expr = p.arenas.Exprs.NewMember(start.Cover(nameTok.Span), ast.ExprMemberData{
				Receiver: expr, Safe: safe, Name: name, NameSpan: nameTok.Span,
			})
		case p.atSameLine(token.LParen):
			// invoke: (f)(1), g(1)(2)
			expr = p.parseCallSuffix(start, ast.ExprCallData{Target: expr, NameSpan: start})
		default:
			return expr
		}
	}
}

// parseCallSuffix разбирает `<T>(args) { lambda }` после callee.
func (p *Parser) parseCallSuffix(start source.Span, data ast.ExprCallData) ast.ExprID {
	if p.atSameLine(token.Lt) {
		p.advance()
		for !p.atOr(token.Gt, token.EOF) {
			if t := p.parseType(); t.IsValid() {
				data.TypeArgs = append(data.TypeArgs, t)
			} else {
				p.resyncUntil(token.Gt, token.Comma, token.LParen)
			}
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		p.expect(token.Gt, diag.SynUnclosedAngle, "expected '>' to close type arguments")
	}
	if p.atSameLine(token.LParen) {
		open := p.peek().Span
		data.Args, _ = p.parseCallArgs()
		data.ArgsClosed = open.Cover(p.lastSpan)
	}
	if p.atSameLine(token.LBrace) {
		lambda := p.parseLambda()
		data.Args = append(data.Args, ast.CallArg{Value: lambda, Trailing: true})
	}
	return p.arenas.Exprs.NewCall(start.Cover(p.lastSpan), data)
}

// parseCallArgs: `(a, name = b)`.
func (p *Parser) parseCallArgs() ([]ast.CallArg, bool) {
	p.advance() // (
	var args []ast.CallArg
	for !p.atOr(token.RParen, token.EOF) {
		arg := ast.CallArg{}
		if p.at(token.Ident) && p.peekN(1).Kind == token.Assign {
			nameTok := p.advance()
			p.advance() // =
			arg.Name, arg.NameSpan = p.intern(nameTok.Text), nameTok.Span
		}
		arg.Value = p.parseExpr()
		args = append(args, arg)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	_, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close argument list")
	return args, ok
}

// parseLambda: `{ a, b: T -> stmts }`, `{ -> stmts }` или `{ stmts }` (параметр `it`).
func (p *Parser) parseLambda() ast.ExprID {
	start := p.advance().Span // {
	data := ast.ExprLambdaData{}
	if p.lambdaHasParams() {
		data.ExplicitParams = true
		for !p.at(token.Arrow) {
			ptok := p.advance()
			param := ast.LambdaParam{Span: ptok.Span, Name: p.intern(ptok.Text)}
			if p.at(token.Colon) {
				p.advance()
				param.Type = p.parseType()
			}
			data.Params = append(data.Params, param)
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.advance() // ->
	}
	data.Body = p.parseStmtsUntilBrace()
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close lambda")
	return p.arenas.Exprs.NewLambda(start.Cover(p.lastSpan), data)
}

// lambdaHasParams сканирует вперёд: Ident [':' type] {',' ...} '->'.
func (p *Parser) lambdaHasParams() bool {
	i := 0
	if p.peekN(i).Kind == token.Arrow {
		return true
	}
	for {
		if p.peekN(i).Kind != token.Ident {
			return false
		}
		i++
		if p.peekN(i).Kind == token.Colon {
			next, ok := p.skipTypeTokens(i + 1)
			if !ok {
				return false
			}
			i = next
		}
		switch p.peekN(i).Kind {
		case token.Arrow:
			return true
		case token.Comma:
			i++
		default:
			return false
		}
	}
}

// skipTypeTokens пропускает токены типа до ',' или '->' на нулевой глубине.
func (p *Parser) skipTypeTokens(i int) (int, bool) {
	depth := 0
	for ; ; i++ {
		switch p.peekN(i).Kind {
		case token.LParen, token.Lt:
			depth++
		case token.RParen, token.Gt:
			depth--
			if depth < 0 {
				return i, false
			}
		case token.Comma:
			if depth == 0 {
				return i, true
			}
		case token.Arrow:
			// стрелка внутри скобок относится к функциональному типу
			if depth == 0 {
				return i, true
			}
		case token.EOF, token.LBrace, token.RBrace:
			return i, false
		}
	}
}
