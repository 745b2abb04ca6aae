package lexer

import (
	"bytes"

	"tern/internal/diag"
	"tern/internal/token"
)

var rawQuote = []byte(`"""`)

// scanString читает "..." (escape и шаблоны ${...}, без перевода строки)
// или сырую """...""", которая может занимать несколько строк.
// Содержимое шаблонов не разбирается, только балансируются скобки.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	if bytes.HasPrefix(lx.file.Content[lx.cursor.Off:], rawQuote) {
		lx.cursor.Off += 3
		end := bytes.Index(lx.file.Content[lx.cursor.Off:], rawQuote)
		if end < 0 {
			lx.cursor.Off = lx.cursor.Limit
			return lx.badString(start, "unterminated raw string literal")
		}
		lx.cursor.Off += uint32(end) + 3
		// """"x"""" : лишние кавычки в конце принадлежат содержимому
		lx.cursor.SkipWhile(func(b byte) bool { return b == '"' })
		return lx.stringTok(start)
	}

	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		switch lx.cursor.Bump() {
		case '"':
			return lx.stringTok(start)
		case '\\':
			lx.cursor.Bump()
		case '\n':
			lx.cursor.Off--
			return lx.badString(start, "newline in string literal")
		case '$':
			if lx.cursor.Eat('{') && !lx.skipTemplate() {
				return lx.badString(start, "unterminated string template")
			}
		}
	}
	return lx.badString(start, "unterminated string literal")
}

// skipTemplate stops after the '}' closing an already opened "${"; nested
// string literals are skipped whole.
func (lx *Lexer) skipTemplate() bool {
	for depth := 1; !lx.cursor.EOF(); {
		switch lx.cursor.Peek() {
		case '{':
			depth++
		case '}':
			if depth--; depth == 0 {
				lx.cursor.Bump()
				return true
			}
		case '"':
			if lx.scanString().Kind != token.StringLit {
				return false
			}
			continue
		case '\n':
			return false
		}
		lx.cursor.Bump()
	}
	return false
}

func (lx *Lexer) stringTok(start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) badString(start Mark, msg string) token.Token {
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
