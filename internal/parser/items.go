package parser

import (
	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/token"
)

// parseItem: аннотации, модификаторы и затем class/interface/fun/val/var.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	start := p.peek().Span
	annots := p.parseAnnotations()
	mods, modSpan := p.parseModifiers()
	head := ast.Item{Mods: mods, Annotations: annots}

	switch p.peek().Kind {
	case token.KwClass, token.KwInterface, token.KwAnnotation:
		return p.parseClass(start, head)
	case token.KwFun:
		return p.parseFun(start, head)
	case token.KwVal, token.KwVar:
		return p.parseProp(start, head)
	}
	if mods != 0 {
		p.report(diag.SynExpectDeclaration, diag.SevError, modSpan, "expected declaration after modifiers")
		return ast.NoItemID, false
	}
	p.report(diag.SynUnexpectedTopLevel, diag.SevError, p.diagnosticSpan(), "unexpected "+p.peek().Kind.String()+", expected declaration")
	return ast.NoItemID, false
}

func (p *Parser) parseModifiers() (ast.Modifiers, source.Span) {
	var mods ast.Modifiers
	sp := p.peek().Span
	for p.peek().Kind.IsModifier() {
		tok := p.advance()
		sp = sp.Cover(tok.Span)
		mods |= modifierFlag(tok.Kind)
	}
	return mods, sp
}

func modifierFlag(k token.Kind) ast.Modifiers {
	switch k {
	case token.KwPrivate:
		return ast.ModPrivate
	case token.KwInternal:
		return ast.ModInternal
	case token.KwPublic:
		return ast.ModPublic
	case token.KwOpen:
		return ast.ModOpen
	case token.KwAbstract:
		return ast.ModAbstract
	case token.KwInner:
		return ast.ModInner
	case token.KwOperator:
		return ast.ModOperator
	case token.KwVararg:
		return ast.ModVararg
	case token.KwReified:
		return ast.ModReified
	}
	return 0
}

// @a.b.Name или @Name(args)
func (p *Parser) parseAnnotations() []ast.Annotation {
	var out []ast.Annotation
	for p.at(token.At) {
		start := p.advance().Span
		path, ok := p.parseDottedPath()
		if !ok {
			continue
		}
		ann := ast.Annotation{Path: path}
		if p.atSameLine(token.LParen) {
			ann.Args, _ = p.parseCallArgs()
		}
		ann.Span = start.Cover(p.lastSpan)
		out = append(out, ann)
	}
	return out
}

func (p *Parser) parseClass(start source.Span, head ast.Item) (ast.ItemID, bool) {
	data := ast.ClassItem{}
	if p.at(token.KwAnnotation) {
		p.advance()
		data.Kind = ast.ClassAnnotation
		if _, ok := p.expect(token.KwClass, diag.SynUnexpectedToken, "expected 'class' after 'annotation'"); !ok {
			return ast.NoItemID, false
		}
	} else if p.advance().Kind == token.KwInterface {
		data.Kind = ast.ClassInterface
	}

	nameTok := p.peek()
	name, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	head.Name, head.NameSpan = name, nameTok.Span

	if p.at(token.Lt) {
		data.TypeParams = p.parseTypeParams()
	}
	if p.atSameLine(token.LParen) {
		data.HasCtor = true
		data.CtorParams = p.parseParams(true)
	}
	if p.at(token.Colon) {
		p.advance()
		for {
			st := p.parseType()
			if st.IsValid() {
				data.Supertypes = append(data.Supertypes, st)
			}
			// аргументы суперконструктора: типы уже достаточно для иерархии
			if p.atSameLine(token.LParen) {
				p.parseCallArgs()
			}
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	if p.atSameLine(token.LBrace) {
		p.advance()
		for !p.atOr(token.RBrace, token.EOF) {
			if p.at(token.Semicolon) {
				p.advance()
				continue
			}
			member, ok := p.parseItem()
			if !ok {
				p.resyncMember()
				continue
			}
			data.Members = append(data.Members, member)
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close class body")
	}
	head.Span = start.Cover(p.lastSpan)
	return p.arenas.Items.NewClass(head, data), true
}

func (p *Parser) resyncMember() {
	p.advance()
	for !p.atOr(token.EOF, token.RBrace) && !isItemStarter(p.peek().Kind) {
		p.advance()
	}
}

// <in T, out R : Bound, reified E>
func (p *Parser) parseTypeParams() []ast.TypeParam {
	p.advance() // <
	var out []ast.TypeParam
	for !p.atOr(token.Gt, token.EOF) {
		start := p.peek().Span
		tp := ast.TypeParam{}
	mods:
		for {
			switch p.peek().Kind {
			case token.KwIn:
				tp.Variance = ast.Contravariant
			case token.KwOut:
				tp.Variance = ast.Covariant
			case token.KwReified:
				tp.Reified = true
			default:
				break mods
			}
			p.advance()
		}
		id, ok := p.parseIdent()
		if !ok {
			p.resyncUntil(token.Gt, token.LParen)
			break
		}
		tp.Name = id
		if p.at(token.Colon) {
			p.advance()
			if b := p.parseType(); b.IsValid() {
				tp.Bounds = append(tp.Bounds, b)
			}
		}
		tp.Span = start.Cover(p.lastSpan)
		out = append(out, tp)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	p.expect(token.Gt, diag.SynUnclosedAngle, "expected '>' to close type parameters")
	return out
}

// parseParams разбирает `(a: Int, vararg xs: String = "")`; ctor разрешает val/var.
func (p *Parser) parseParams(ctor bool) []ast.Param {
	p.advance() // (
	var out []ast.Param
	for !p.atOr(token.RParen, token.EOF) {
		start := p.peek().Span
		p.parseAnnotations()
		mods, modSpan := p.parseModifiers()
		param := ast.Param{Mods: mods, Vararg: mods.Has(ast.ModVararg)}
		if p.atOr(token.KwVal, token.KwVar) {
			if !ctor {
				p.report(diag.SynModifierNotAllowed, diag.SevError, p.peek().Span, "val/var is only allowed on constructor parameters")
			}
			if p.advance().Kind == token.KwVal {
				param.Prop = ast.ParamVal
			} else {
				param.Prop = ast.ParamVar
			}
		} else if mods&^ast.ModVararg != 0 && !ctor {
			p.report(diag.SynModifierNotAllowed, diag.SevError, modSpan, "modifier not allowed on parameter")
		}
		id, ok := p.parseIdent()
		if !ok {
			p.resyncUntil(token.Comma, token.RParen)
		} else {
			param.Name = id
			if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' and parameter type"); ok {
				param.Type = p.parseType()
			}
			if p.at(token.Assign) {
				p.advance()
				param.Default = p.parseExpr()
			}
			param.Span = start.Cover(p.lastSpan)
			out = append(out, param)
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close parameter list")
	return out
}

func (p *Parser) parseFun(start source.Span, head ast.Item) (ast.ItemID, bool) {
	p.advance() // fun
	data := ast.FunItem{}
	if p.at(token.Lt) {
		data.TypeParams = p.parseTypeParams()
	}
	recv, name, nameSpan, ok := p.parseReceiverAndName()
	if !ok {
		return ast.NoItemID, false
	}
	data.Receiver = recv
	head.Name, head.NameSpan = name, nameSpan

	if !p.at(token.LParen) {
		p.err(diag.SynUnexpectedToken, "expected '(' to start parameter list")
		return ast.NoItemID, false
	}
	data.Params = p.parseParams(false)
	if p.at(token.Colon) {
		p.advance()
		data.Result = p.parseType()
	}
	switch {
	case p.at(token.Assign):
		p.advance()
		data.ExprBody = p.parseExpr()
	case p.atSameLine(token.LBrace):
		data.HasBlock = true
		data.Block = p.parseBlock()
	}
	head.Span = start.Cover(p.lastSpan)
	return p.arenas.Items.NewFun(head, data), true
}

func (p *Parser) parseProp(start source.Span, head ast.Item) (ast.ItemID, bool) {
	data := ast.PropItem{Mutable: p.advance().Kind == token.KwVar}
	if p.at(token.Lt) {
		data.TypeParams = p.parseTypeParams()
	}
	recv, name, nameSpan, ok := p.parseReceiverAndName()
	if !ok {
		return ast.NoItemID, false
	}
	data.Receiver = recv
	head.Name, head.NameSpan = name, nameSpan
	if p.at(token.Colon) {
		p.advance()
		data.Type = p.parseType()
	}
	switch {
	case p.at(token.Assign):
		p.advance()
		data.Init = p.parseExpr()
	case p.at(token.KwBy):
		p.advance()
		data.Delegate = p.parseExpr()
	}
	head.Span = start.Cover(p.lastSpan)
	return p.arenas.Items.NewProp(head, data), true
}

// parseReceiverAndName различает `name`, `Recv.name`, `a.b.Recv.name`,
// `List<T>.name` и `T?.name`. Имя — последний сегмент пути.
func (p *Parser) parseReceiverAndName() (ast.TypeID, source.StringID, source.Span, bool) {
	var segs []source.StringID
	var spans []source.Span
	for {
		tok := p.peek()
		id, ok := p.parseIdent()
		if !ok {
			return ast.NoTypeID, source.NoStringID, source.Span{}, false
		}
		segs = append(segs, id)
		spans = append(spans, tok.Span)
		if !p.at(token.Dot) || p.peekN(1).Kind != token.Ident {
			break
		}
		p.advance()
	}

	if p.atOr(token.Lt, token.Question, token.SafeDot, token.Bang) {
		// у ресивера есть аргументы или маркер nullability, имя идёт после '.'
		ref := ast.TypeRef{Kind: ast.TypePath, Span: spans[0].Cover(spans[len(spans)-1]), Path: segs}
		dotted := p.parseTypeSuffix(&ref, true)
		recv := p.arenas.Types.New(ref)
		if !dotted {
			if _, ok := p.expect(token.Dot, diag.SynUnexpectedToken, "expected '.' after receiver type"); !ok {
				return ast.NoTypeID, source.NoStringID, source.Span{}, false
			}
		}
		nameTok := p.peek()
		name, ok := p.parseIdent()
		return recv, name, nameTok.Span, ok
	}

	last := len(segs) - 1
	if last == 0 {
		return ast.NoTypeID, segs[0], spans[0], true
	}
	recv := p.arenas.Types.New(ast.TypeRef{
		Kind: ast.TypePath,
		Span: spans[0].Cover(spans[last-1]),
		Path: segs[:last],
	})
	return recv, segs[last], spans[last], true
}
