// Package lexer turns a .tn file into tokens. Comments and whitespace are
// not tokens; they ride along as Leading trivia of the next token so the
// parser can see line breaks (a call's trailing lambda must start on the
// same line).
package lexer

import (
	"tern/internal/source"
	"tern/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	peeked *token.Token
	trivia []token.Trivia // leading trivia of the token being scanned
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{file: file, cursor: NewCursor(file), opts: opts}
}

// Next returns the next token with its Leading trivia. Once the input is
// exhausted every call yields EOF.
func (lx *Lexer) Next() token.Token {
	if tok := lx.peeked; tok != nil {
		lx.peeked = nil
		return *tok
	}
	lx.collectLeadingTrivia()
	tok := lx.scan()
	tok.Leading, lx.trivia = lx.trivia, nil
	return tok
}

// scan dispatches on the first byte; non-ASCII always starts an identifier.
func (lx *Lexer) scan() token.Token {
	if lx.cursor.EOF() {
		// trivia до EOF тоже отдаём: парсеру нужен NewlineBefore
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}
	switch ch := lx.cursor.Peek(); {
	case ch >= utf8RuneSelf || isIdentStartByte(ch):
		return lx.scanIdentOrKeyword()
	case isDec(ch):
		return lx.scanNumber()
	case ch == '"':
		return lx.scanString()
	case ch == '`':
		return lx.scanQuotedIdent()
	default:
		return lx.scanOperatorOrPunct()
	}
}

// Peek returns what Next would, without consuming it.
func (lx *Lexer) Peek() token.Token {
	if lx.peeked == nil {
		tok := lx.Next()
		lx.peeked = &tok
	}
	return *lx.peeked
}

// Tokenize lexes the whole file; the result always ends with EOF.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	out := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		out = append(out, lx.Next())
		if out[len(out)-1].Kind == token.EOF {
			return out
		}
	}
}

func (lx *Lexer) emptySpan() source.Span {
	at := lx.cursor.Off
	return source.Span{File: lx.file.ID, Start: at, End: at}
}
