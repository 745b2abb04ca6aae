package lexer

import (
	"tern/internal/diag"
	"tern/internal/token"
)

// Поддержка: 123, 1_000, 1L, 1.5, 1e-3, 2.5e10.
// Суффикс L делает литерал Long; Token.Text сохраняет исходный вид.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	lx.cursor.SkipWhile(isDigitOrSep)

	// дробная часть: только если после точки цифра, иначе это вызов члена (1.toString())
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.cursor.SkipWhile(isDigitOrSep)
	}

	if lx.cursor.Peek() == 'e' || lx.cursor.Peek() == 'E' {
		kind = token.FloatLit
		lx.cursor.Bump()
		if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexBadNumber, sp, "expected digit after exponent")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		lx.cursor.SkipWhile(isDigitOrSep)
	}

	if lx.cursor.Peek() == 'L' {
		lx.cursor.Bump()
		if kind == token.FloatLit {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexBadNumber, sp, "'L' suffix is not allowed on floating point literals")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		kind = token.LongLit
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func isDigitOrSep(b byte) bool { return isDec(b) || b == '_' }
