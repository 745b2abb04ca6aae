package lexer

import (
	"tern/internal/diag"
	"tern/internal/token"
)

// singlePunct maps one-byte punctuation to its kind; Invalid marks bytes
// that are not punctuation.
var singlePunct = [256]token.Kind{
	'(': token.LParen, ')': token.RParen, '{': token.LBrace, '}': token.RBrace,
	'<': token.Lt, '>': token.Gt, ',': token.Comma, '.': token.Dot,
	':': token.Colon, ';': token.Semicolon, '?': token.Question, '!': token.Bang,
	'=': token.Assign, '@': token.At, '*': token.Star,
}

// scanOperatorOrPunct: двухсимвольные (?. ->) проверяются раньше одиночных.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	var kind token.Kind
	switch {
	case lx.try2('?', '.'):
		kind = token.SafeDot
	case lx.try2('-', '>'):
		kind = token.Arrow
	default:
		kind = singlePunct[lx.cursor.Bump()]
	}
	sp := lx.cursor.SpanFrom(start)
	if kind == token.Invalid {
		lx.errLex(diag.LexUnknownChar, sp, "unknown character "+lx.text(sp))
	}
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}
