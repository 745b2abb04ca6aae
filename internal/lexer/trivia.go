package lexer

import (
	"tern/internal/diag"
	"tern/internal/token"
)

func isBlank(b byte) bool { return b == ' ' || b == '\t' || b == '\r' }

// collectLeadingTrivia складывает в hold всё незначимое перед следующим
// токеном. Подряд идущие пробелы и подряд идущие '\n' склеиваются, так что
// NewlineBefore у токена — просто поиск TriviaNewline в Leading.
func (lx *Lexer) collectLeadingTrivia() {
	lx.trivia = lx.trivia[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		kind, ok := lx.skipTrivia()
		if !ok {
			return
		}
		sp := lx.cursor.SpanFrom(start)
		lx.trivia = append(lx.trivia, token.Trivia{Kind: kind, Span: sp, Text: lx.text(sp)})
	}
}

// skipTrivia consumes one trivia run; a lone '/' is left for the operator
// scanner.
func (lx *Lexer) skipTrivia() (token.TriviaKind, bool) {
	b := lx.cursor.Peek()
	switch {
	case isBlank(b):
		lx.cursor.SkipWhile(isBlank)
		return token.TriviaSpace, true
	case b == '\n':
		lx.cursor.SkipWhile(func(c byte) bool { return c == '\n' })
		return token.TriviaNewline, true
	}
	if b != '/' {
		return 0, false
	}
	switch _, next, ok := lx.cursor.Peek2(); {
	case ok && next == '/':
		lx.cursor.SkipWhile(func(c byte) bool { return c != '\n' })
		return token.TriviaLineComment, true
	case ok && next == '*':
		lx.skipBlockComment()
		return token.TriviaBlockComment, true
	}
	return 0, false
}

// skipBlockComment: /* ... */ с вложенностью; незакрытый тянется до EOF.
func (lx *Lexer) skipBlockComment() {
	start := lx.cursor.Mark()
	lx.try2('/', '*')
	for depth := 1; depth > 0; {
		switch {
		case lx.cursor.EOF():
			lx.errLex(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
			return
		case lx.try2('/', '*'):
			depth++
		case lx.try2('*', '/'):
			depth--
		default:
			lx.cursor.Bump()
		}
	}
}
