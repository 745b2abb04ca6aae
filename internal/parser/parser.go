package parser

import (
	"slices"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/lexer"
	"tern/internal/source"
	"tern/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Errors uint
}

// Parser — состояние парсера на один файл
type Parser struct {
	toks     []token.Token
	pos      int
	arenas   *ast.Builder
	file     ast.FileID
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
}

// ParseFile — входная точка для разбора одного файла.
func ParseFile(file *source.File, arenas *ast.Builder, opts Options) Result {
	toks := lexer.Tokenize(file, lexer.Options{Reporter: opts.Reporter})
	p := Parser{
		toks:   toks,
		arenas: arenas,
		opts:   opts,
	}
	p.file = arenas.NewFile(source.Span{File: file.ID})
	p.lastSpan = source.Span{File: file.ID}

	p.parseHeader()
	p.parseItems()
	return Result{File: p.file, Errors: p.opts.CurrentErrors}
}

func (p *Parser) peek() token.Token {
	return p.peekN(0)
}

func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// atSameLine: токен k стоит на той же строке, что и предыдущий.
func (p *Parser) atSameLine(k token.Kind) bool {
	tok := p.peek()
	return tok.Kind == k && !tok.NewlineBefore()
}

func (p *Parser) intern(s string) source.StringID {
	return p.arenas.Strings.Intern(s)
}

// parseHeader: `package a.b` и импорты.
func (p *Parser) parseHeader() {
	f := p.arenas.Files.Get(p.file)
	if p.at(token.KwPackage) {
		p.advance()
		path, _ := p.parseDottedPath()
		f.Package = path
	}
	for p.at(token.KwImport) {
		start := p.advance().Span
		imp := ast.Import{}
		id, ok := p.parseIdent()
		if !ok {
			p.resyncUntil(token.KwImport, token.KwFun, token.KwClass, token.KwVal, token.KwVar)
			continue
		}
		imp.Path = append(imp.Path, id)
		for p.at(token.Dot) {
			p.advance()
			if p.at(token.Star) {
				p.advance()
				imp.Star = true
				break
			}
			seg, ok := p.parseIdent()
			if !ok {
				break
			}
			imp.Path = append(imp.Path, seg)
		}
		imp.Span = start.Cover(p.lastSpan)
		f.Imports = append(f.Imports, imp)
	}
}

// parseItems — основной цикл верхнего уровня: пока не EOF — parseItem.
func (p *Parser) parseItems() {
	startSpan := p.peek().Span
	for !p.at(token.EOF) {
		if p.at(token.Semicolon) {
			p.advance()
			continue
		}
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		p.arenas.PushItem(p.file, itemID)
	}
	f := p.arenas.Files.Get(p.file)
	f.Span = startSpan.Cover(p.lastSpan)
}

// resyncTop — восстановление после ошибки на верхнем уровне:
// прокручиваем до стартового токена следующего item или EOF.
func (p *Parser) resyncTop() {
	p.advance()
	for !p.at(token.EOF) && !isItemStarter(p.peek().Kind) {
		p.advance()
	}
}

func isItemStarter(k token.Kind) bool {
	switch k {
	case token.KwFun, token.KwVal, token.KwVar, token.KwClass, token.KwInterface, token.KwAnnotation, token.At:
		return true
	}
	return k.IsModifier()
}

// parseIdent ожидает Ident и интернирует его.
func (p *Parser) parseIdent() (source.StringID, bool) {
	if p.at(token.Ident) {
		return p.intern(p.advance().Text), true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got \""+p.peek().Kind.String()+"\"")
	return source.NoStringID, false
}

func (p *Parser) parseDottedPath() ([]source.StringID, bool) {
	id, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	path := []source.StringID{id}
	for p.at(token.Dot) && p.peekN(1).Kind == token.Ident {
		p.advance()
		path = append(path, p.intern(p.advance().Text))
	}
	return path, true
}
