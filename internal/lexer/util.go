package lexer

import (
	"unicode"
	"unicode/utf8"

	"tern/internal/source"
)

// peekRune decodes the rune at the cursor; size 0 means EOF.
func (lx *Lexer) peekRune() (rune, int) {
	if lx.cursor.EOF() {
		return utf8.RuneError, 0
	}
	if b := lx.cursor.Peek(); b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRune(lx.file.Content[lx.cursor.Off:lx.cursor.Limit])
}

func (lx *Lexer) bumpRune() {
	// size <= utf8.UTFMax
	_, size := lx.peekRune()
	lx.cursor.Off += uint32(size)
}

// Идентификаторы Tern: буквы Unicode, '_', цифры и combining marks после
// первого символа. ASCII проверяется побайтно.
func isIdentStartByte(b byte) bool {
	return b == '_' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func isIdentContinueByte(b byte) bool { return isIdentStartByte(b) || isDec(b) }

func isIdentStartRune(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentContinueRune(r rune) bool {
	return isIdentStartRune(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isDec(b byte) bool { return '0' <= b && b <= '9' }

// try2 consumes a two-byte sequence if it is next.
func (lx *Lexer) try2(a, b byte) bool {
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == a && b1 == b {
		lx.cursor.Off += 2
		return true
	}
	return false
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}
