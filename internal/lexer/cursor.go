package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"tern/internal/source"
)

// Cursor — байтовая позиция в .tn файле; сканеры двигают её только вперёд.
type Cursor struct {
	File  *source.File
	Off   uint32
	Limit uint32 // len(File.Content)
}

func NewCursor(f *source.File) Cursor {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("%s: file too large for uint32 offsets: %w", f.Path, err))
	}
	return Cursor{File: f, Limit: n}
}

func (c *Cursor) EOF() bool { return c.Off >= c.Limit }

// at returns the byte k positions ahead, 0 past the end.
func (c *Cursor) at(k uint32) byte {
	if c.Off+k >= c.Limit {
		return 0
	}
	return c.File.Content[c.Off+k]
}

// Peek returns the current byte, 0 at EOF.
func (c *Cursor) Peek() byte { return c.at(0) }

// Peek2 returns the current and next byte; ok is false when fewer than two
// bytes remain.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	return c.at(0), c.at(1), c.Off+1 < c.Limit
}

// Bump consumes one byte; at EOF it returns 0 and stays put.
func (c *Cursor) Bump() byte {
	b := c.at(0)
	if !c.EOF() {
		c.Off++
	}
	return b
}

// Mark is a saved offset, the start of a token being scanned.
type Mark uint32

func (c *Cursor) Mark() Mark { return Mark(c.Off) }

func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File.ID, Start: uint32(m), End: c.Off}
}

// Eat consumes b if it is next.
func (c *Cursor) Eat(b byte) bool {
	if c.EOF() || c.at(0) != b {
		return false
	}
	c.Off++
	return true
}

// SkipWhile advances past bytes satisfying pred and reports how many.
func (c *Cursor) SkipWhile(pred func(byte) bool) uint32 {
	from := c.Off
	for !c.EOF() && pred(c.File.Content[c.Off]) {
		c.Off++
	}
	return c.Off - from
}
