// Package testkit holds structural checks shared by parser tests and fuzz
// harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"tern/internal/ast"
	"tern/internal/source"
	"tern/internal/token"
)

// CheckSpanInvariants validates spans of a parsed file:
//   - the file span lies within the content and points at sf;
//   - every item span is non-empty and inside the file span;
//   - items follow each other without overlap;
//   - a present name span lies inside its item.
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	if f.Span.End > lenContent || f.Span.Start > f.Span.End {
		return fmt.Errorf("file span %v outside content of %d bytes", f.Span, lenContent)
	}

	var prevEnd uint32
	for i, it := range f.Items {
		item := b.Items.Get(it)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", it)
		}
		sp := item.Span
		if sp.Empty() {
			return fmt.Errorf("empty item span: %v", sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("item span file mismatch: got=%d want=%d", sp.File, sf.ID)
		}
		if !f.Span.Contains(sp) {
			return fmt.Errorf("item span %v is outside file span %v", sp, f.Span)
		}
		if i > 0 && sp.Start < prevEnd {
			return fmt.Errorf("item %d span %v overlaps previous item ending at %d", i, sp, prevEnd)
		}
		prevEnd = sp.End
		if !item.NameSpan.Empty() && !sp.Contains(item.NameSpan) {
			return fmt.Errorf("name span %v is outside item span %v", item.NameSpan, sp)
		}
	}
	return nil
}

// CheckTokenInvariants: spans are ordered, inside the content, and the
// stream ends with exactly one EOF.
func CheckTokenInvariants(toks []token.Token, sf *source.File) error {
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		return fmt.Errorf("token stream must end with EOF")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	var prevEnd uint32
	for i, tok := range toks {
		if tok.Kind == token.EOF && i != len(toks)-1 {
			return fmt.Errorf("EOF at %d before the end", i)
		}
		if tok.Span.Start < prevEnd || tok.Span.End < tok.Span.Start || tok.Span.End > lenContent {
			return fmt.Errorf("token %d span %v out of order (prev end %d, len %d)", i, tok.Span, prevEnd, lenContent)
		}
		prevEnd = tok.Span.End
	}
	return nil
}
