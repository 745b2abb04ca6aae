package lexer

import (
	"golang.org/x/text/unicode/norm"

	"tern/internal/diag"
	"tern/internal/token"
)

const utf8RuneSelf = 0x80

// scanIdentOrKeyword сканирует [Ident] и проверяет через LookupKeyword.
// Не-ASCII идентификаторы приводятся к NFC в Token.Text, Span остаётся исходным.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	unicodeSeen := false

	r, sz := lx.peekRune()
	if sz == 0 {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.Invalid, Span: sp}
	}
	if r >= utf8RuneSelf {
		if !isIdentStartRune(r) {
			lx.bumpRune()
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexUnknownChar, sp, "unknown character "+lx.text(sp))
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		unicodeSeen = true
	}
	lx.bumpRune()
	for {
		r2, sz2 := lx.peekRune()
		if sz2 == 0 || !isIdentContinueRune(r2) {
			break
		}
		if r2 >= utf8RuneSelf {
			unicodeSeen = true
		}
		lx.bumpRune()
	}

	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	if unicodeSeen {
		text = norm.NFC.String(text)
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}

// scanQuotedIdent: `name` позволяет использовать ключевое слово как имя.
func (lx *Lexer) scanQuotedIdent() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.SkipWhile(func(b byte) bool { return b != '`' && b != '\n' })
	if !lx.cursor.Eat('`') {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "unterminated quoted identifier")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	sp := lx.cursor.SpanFrom(start)
	name := lx.text(sp)
	return token.Token{Kind: token.Ident, Span: sp, Text: norm.NFC.String(name[1 : len(name)-1])}
}
