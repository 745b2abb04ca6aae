package lexer

import (
	"testing"

	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/token"
)

func lexString(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.tn", []byte(src))
	bag := diag.NewBag(16)
	toks := Tokenize(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func expectKinds(t *testing.T, src string, want ...token.Kind) []token.Token {
	t.Helper()
	toks, bag := lexString(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics for %q: %+v", src, bag.Items())
	}
	got := kinds(toks)
	want = append(want, token.EOF)
	if len(got) != len(want) {
		t.Fatalf("%q: got %v, want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: token %d is %v, want %v (all: %v)", src, i, got[i], want[i], got)
		}
	}
	return toks
}

func TestFunctionHeader(t *testing.T) {
	expectKinds(t, "fun <T> List<T>.map(f: (T) -> R): R",
		token.KwFun, token.Lt, token.Ident, token.Gt, token.Ident, token.Lt, token.Ident, token.Gt,
		token.Dot, token.Ident, token.LParen, token.Ident, token.Colon, token.LParen, token.Ident,
		token.RParen, token.Arrow, token.Ident, token.RParen, token.Colon, token.Ident)
}

func TestSafeCallAndFlexible(t *testing.T) {
	expectKinds(t, "a?.b(x!)", token.Ident, token.SafeDot, token.Ident, token.LParen,
		token.Ident, token.Bang, token.RParen)
	expectKinds(t, "String?", token.Ident, token.Question)
}

func TestNumberLiterals(t *testing.T) {
	toks := expectKinds(t, "1 1_000 2L 1.5 3e2 4.toString()",
		token.IntLit, token.IntLit, token.LongLit, token.FloatLit, token.FloatLit,
		token.IntLit, token.Dot, token.Ident, token.LParen, token.RParen)
	if toks[2].Text != "2L" {
		t.Fatalf("long literal text = %q", toks[2].Text)
	}
}

func TestKeywordsAndLiterals(t *testing.T) {
	expectKinds(t, `val x by lazy { "s" } true null`,
		token.KwVal, token.Ident, token.KwBy, token.Ident, token.LBrace, token.StringLit,
		token.RBrace, token.BoolLit, token.NullLit)
	toks := expectKinds(t, "`fun`", token.Ident)
	if toks[0].Text != "fun" {
		t.Fatalf("quoted ident text = %q", toks[0].Text)
	}
}

func TestCommentsAreTrivia(t *testing.T) {
	toks := expectKinds(t, "f // tail\n/* block /* nested */ */ { }", token.Ident, token.LBrace, token.RBrace)
	if !toks[1].NewlineBefore() {
		t.Fatalf("expected newline before '{'")
	}
	if toks[2].NewlineBefore() {
		t.Fatalf("no newline before '}'")
	}
}

func TestUnicodeIdentNormalized(t *testing.T) {
	toks := expectKinds(t, "cafe\u0301", token.Ident)
	if toks[0].Text != "caf\u00e9" {
		t.Fatalf("expected NFC text, got %q", toks[0].Text)
	}
	if toks[0].Span.Len() != 6 {
		t.Fatalf("span must cover source bytes, got %d", toks[0].Span.Len())
	}
}

func TestLexErrors(t *testing.T) {
	_, bag := lexString(t, `"open`)
	if bag.Count(diag.LexUnterminatedString) != 1 {
		t.Fatalf("expected unterminated string, got %+v", bag.Items())
	}
	_, bag = lexString(t, "a # b")
	if bag.Count(diag.LexUnknownChar) != 1 {
		t.Fatalf("expected unknown char, got %+v", bag.Items())
	}
	_, bag = lexString(t, "1.5L")
	if bag.Count(diag.LexBadNumber) != 1 {
		t.Fatalf("expected bad number, got %+v", bag.Items())
	}
}

func TestStringTemplatesAndRaw(t *testing.T) {
	toks := expectKinds(t, `"a ${ f("}") } b" x`, token.StringLit, token.Ident)
	if toks[0].Text != `"a ${ f("}") } b"` {
		t.Fatalf("template string text = %q", toks[0].Text)
	}
	toks = expectKinds(t, "\"\"\"line1\n\"q\" line2\"\"\" y", token.StringLit, token.Ident)
	if toks[0].Span.Len() != 21 {
		t.Fatalf("raw string span = %d", toks[0].Span.Len())
	}
	_, bag := lexString(t, "\"\"\"never closed")
	if bag.Count(diag.LexUnterminatedString) != 1 {
		t.Fatalf("expected unterminated raw string, got %+v", bag.Items())
	}
	_, bag = lexString(t, `"${ open"`)
	if bag.Count(diag.LexUnterminatedString) == 0 {
		t.Fatalf("expected unterminated template")
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("p.tn", []byte("a b"))
	lx := New(fs.Get(id), Options{})
	if lx.Peek().Text != "a" || lx.Peek().Text != "a" {
		t.Fatalf("peek must be stable")
	}
	if lx.Next().Text != "a" || lx.Next().Text != "b" || lx.Next().Kind != token.EOF || lx.Next().Kind != token.EOF {
		t.Fatalf("unexpected token sequence")
	}
}
