package ast

import (
	"tern/internal/source"
)

type TypeKind uint8

const (
	TypePath TypeKind = iota // a.b.Name<Args>
	TypeFunc                 // R.(A, B) -> T
)

// TypeRef is the syntax of a type reference before name resolution.
type TypeRef struct {
	Kind     TypeKind
	Span     source.Span
	Path     []source.StringID
	Args     []TypeID
	Nullable bool // T?
	Flexible bool // T! is a platform type
	Receiver TypeID
	Params   []TypeID
	Result   TypeID
}

type Types struct {
	Arena *Arena[TypeRef]
}

func NewTypes(capHint uint) *Types {
	return &Types{Arena: NewArena[TypeRef](capHint)}
}

func (t *Types) New(ref TypeRef) TypeID {
	return TypeID(t.Arena.Allocate(ref))
}

func (t *Types) Get(id TypeID) *TypeRef {
	return t.Arena.Get(uint32(id))
}
