package parser

import (
	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/token"
)

// parseType разбирает ссылку на тип:
//
//	a.b.Name<Args>?   Name!   (A, B) -> R   Recv.(A) -> R   ((A) -> R)?
func (p *Parser) parseType() ast.TypeID {
	start := p.peek().Span
	switch p.peek().Kind {
	case token.LParen:
		return p.parseParenOrFuncType(ast.NoTypeID)
	case token.Ident:
	default:
		p.err(diag.SynExpectType, "expected type, got "+p.peek().Kind.String())
		return ast.NoTypeID
	}

	path, _ := p.parseDottedPath()
	ref := ast.TypeRef{Kind: ast.TypePath, Span: start.Cover(p.lastSpan), Path: path}
	dotted := p.parseTypeSuffix(&ref, false)
	id := p.arenas.Types.New(ref)

	if dotted {
		// `R?.(A) -> T`: '?.' уже съеден
		return p.parseParenOrFuncType(id)
	}
	if p.at(token.Dot) && p.peekN(1).Kind == token.LParen {
		p.advance()
		return p.parseParenOrFuncType(id)
	}
	return id
}

// parseTypeSuffix parses `<...>` arguments and a trailing `?` or `!`.
// The lexer folds `?.` into one SafeDot token. When it follows the type and
// starts a receiver function type, or a member name in receiver position,
// the type is nullable and the token is consumed as the separator; the
// result reports that case.
func (p *Parser) parseTypeSuffix(ref *ast.TypeRef, receiver bool) (dotted bool) {
	if p.atSameLine(token.Lt) {
		p.advance()
		for !p.atOr(token.Gt, token.EOF) {
			arg := p.parseType()
			if !arg.IsValid() {
				p.resyncUntil(token.Gt, token.Comma, token.RParen)
			} else {
				ref.Args = append(ref.Args, arg)
			}
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		p.expect(token.Gt, diag.SynUnclosedAngle, "expected '>' to close type arguments")
	}
	switch {
	case p.atSameLine(token.Question):
		p.advance()
		ref.Nullable = true
	case p.atSameLine(token.SafeDot) && (p.peekN(1).Kind == token.LParen || receiver && p.peekN(1).Kind == token.Ident):
		ref.Nullable = true
		ref.Span = ref.Span.Cover(p.peek().Span)
		p.advance()
		return true
	case p.atSameLine(token.Bang):
		p.advance()
		ref.Flexible = true
	}
	ref.Span = ref.Span.Cover(p.lastSpan)
	return false
}

func (p *Parser) parseParenOrFuncType(receiver ast.TypeID) ast.TypeID {
	start := p.peek().Span
	if receiver.IsValid() {
		start = p.arenas.Types.Get(receiver).Span
	}
	p.advance() // (
	var params []ast.TypeID
	for !p.atOr(token.RParen, token.EOF) {
		t := p.parseType()
		if !t.IsValid() {
			p.resyncUntil(token.Comma, token.RParen)
		} else {
			params = append(params, t)
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' in type")

	if !p.at(token.Arrow) {
		if receiver.IsValid() || len(params) != 1 {
			p.err(diag.SynExpectType, "expected '->' in function type")
			return ast.NoTypeID
		}
		// (T)? — скобки только группируют
		inner := *p.arenas.Types.Get(params[0])
		switch {
		case p.atSameLine(token.Question):
			p.advance()
			inner.Nullable = true
		case p.atSameLine(token.Bang):
			p.advance()
			inner.Flexible = true
		default:
			return params[0]
		}
		inner.Span = start.Cover(p.lastSpan)
		return p.arenas.Types.New(inner)
	}
	p.advance() // ->
	result := p.parseType()
	return p.arenas.Types.New(ast.TypeRef{
		Kind:     ast.TypeFunc,
		Span:     start.Cover(p.lastSpan),
		Receiver: receiver,
		Params:   params,
		Result:   result,
	})
}
