package ast

import (
	"cmp"

	"tern/internal/source"
)

// Hints — начальные ёмкости арен; нули заменяются умолчаниями.
type Hints struct{ Files, Items, Stmts, Exprs, Types uint }

// HintsForSource estimates arena sizes from the total source size in bytes:
// roughly one expression per 8 bytes and one declaration per 64.
func HintsForSource(files int, bytes int) Hints {
	n := uint(max(bytes, 0))
	return Hints{
		Files: uint(max(files, 0)),
		Items: n / 64,
		Stmts: n / 32,
		Exprs: n / 8,
		Types: n / 32,
	}
}

// Builder владеет всеми аренами прогона. После разбора деревья только
// читаются, поэтому задачи резолва разделяют их без блокировок.
type Builder struct {
	Files *Files
	Items *Items
	Stmts *Stmts
	Exprs *Exprs
	Types *Types

	Strings *source.Interner
}

// NewBuilder creates the arenas; a nil interner gets a private one.
func NewBuilder(hints Hints, strings *source.Interner) *Builder {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Files:   NewFiles(cmp.Or(hints.Files, 1<<4)),
		Items:   NewItems(cmp.Or(hints.Items, 1<<7)),
		Stmts:   NewStmts(cmp.Or(hints.Stmts, 1<<7)),
		Exprs:   NewExprs(cmp.Or(hints.Exprs, 1<<8)),
		Types:   NewTypes(cmp.Or(hints.Types, 1<<7)),
		Strings: strings,
	}
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return b.Files.New(sp)
}

// PushItem appends a top-level declaration to file in source order.
func (b *Builder) PushItem(file FileID, item ItemID) {
	f := b.Files.Get(file)
	f.Items = append(f.Items, item)
}
