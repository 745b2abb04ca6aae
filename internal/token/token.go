package token

import (
	"strings"

	"tern/internal/source"
)

// Token is a significant token; comments and whitespace before it live in Leading.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, LongLit, FloatLit, StringLit, BoolLit, NullLit:
		return true
	}
	return false
}

func (t Token) IsIdent() bool { return t.Kind == Ident }

// NewlineBefore reports a line break between this token and the previous
// one, including one hidden inside a block comment. A trailing lambda or
// an argument list on the next line does not belong to the call.
func (t Token) NewlineBefore() bool {
	for _, tr := range t.Leading {
		switch tr.Kind {
		case TriviaNewline:
			return true
		case TriviaBlockComment:
			if strings.Contains(tr.Text, "\n") {
				return true
			}
		}
	}
	return false
}
