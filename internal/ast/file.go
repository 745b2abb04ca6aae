package ast

import (
	"tern/internal/source"
)

type Import struct {
	Span source.Span
	Path []source.StringID // a.b.Name, or a.b for a star import
	Star bool
}

type File struct {
	Span    source.Span
	Package []source.StringID
	Imports []Import
	Items   []ItemID
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{Arena: NewArena[File](capHint)}
}

func (f *Files) New(sp source.Span) FileID {
	return FileID(f.Arena.Allocate(File{Span: sp}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}
