package ast

import (
	"tern/internal/source"
)

type ItemKind uint8

const (
	ItemClass ItemKind = iota
	ItemFun
	ItemProp
)

func (k ItemKind) String() string {
	switch k {
	case ItemClass:
		return "class"
	case ItemFun:
		return "fun"
	case ItemProp:
		return "property"
	}
	return "item"
}

type Item struct {
	Kind        ItemKind
	Span        source.Span
	Name        source.StringID
	NameSpan    source.Span
	Mods        Modifiers
	Annotations []Annotation
	Payload     PayloadID
}

// Annotation is `@a.b.Name(args)`; arguments resolve as a constructor call.
type Annotation struct {
	Span source.Span
	Path []source.StringID
	Args []CallArg
}

type TypeParam struct {
	Span     source.Span
	Name     source.StringID
	Variance Variance
	Reified  bool
	Bounds   []TypeID
}

// ParamProp: a primary constructor parameter may declare a property.
type ParamProp uint8

const (
	ParamPlain ParamProp = iota
	ParamVal
	ParamVar
)

type Param struct {
	Span    source.Span
	Name    source.StringID
	Type    TypeID
	Default ExprID
	Vararg  bool
	Prop    ParamProp
	Mods    Modifiers
}

type ClassKind uint8

const (
	ClassPlain ClassKind = iota
	ClassInterface
	ClassAnnotation
)

type ClassItem struct {
	Kind       ClassKind
	TypeParams []TypeParam
	HasCtor    bool
	CtorParams []Param
	Supertypes []TypeID
	Members    []ItemID
}

type FunItem struct {
	TypeParams []TypeParam
	Receiver   TypeID
	Params     []Param
	Result     TypeID
	ExprBody   ExprID   // fun f() = expr
	Block      []StmtID // fun f() { ... }
	HasBlock   bool
}

type PropItem struct {
	Mutable    bool
	TypeParams []TypeParam
	Receiver   TypeID
	Type       TypeID
	Init       ExprID
	Delegate   ExprID
}

type Items struct {
	Arena   *Arena[Item]
	Classes *Arena[ClassItem]
	Funs    *Arena[FunItem]
	Props   *Arena[PropItem]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Items{
		Arena:   NewArena[Item](capHint),
		Classes: NewArena[ClassItem](capHint / 4),
		Funs:    NewArena[FunItem](capHint),
		Props:   NewArena[PropItem](capHint / 2),
	}
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) NewClass(head Item, data ClassItem) ItemID {
	head.Kind = ItemClass
	head.Payload = PayloadID(i.Classes.Allocate(data))
	return ItemID(i.Arena.Allocate(head))
}

func (i *Items) NewFun(head Item, data FunItem) ItemID {
	head.Kind = ItemFun
	head.Payload = PayloadID(i.Funs.Allocate(data))
	return ItemID(i.Arena.Allocate(head))
}

func (i *Items) NewProp(head Item, data PropItem) ItemID {
	head.Kind = ItemProp
	head.Payload = PayloadID(i.Props.Allocate(data))
	return ItemID(i.Arena.Allocate(head))
}

func (i *Items) Class(id ItemID) (*ClassItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemClass {
		return nil, false
	}
	return i.Classes.Get(uint32(item.Payload)), true
}

func (i *Items) Fun(id ItemID) (*FunItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemFun {
		return nil, false
	}
	return i.Funs.Get(uint32(item.Payload)), true
}

func (i *Items) Prop(id ItemID) (*PropItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemProp {
		return nil, false
	}
	return i.Props.Get(uint32(item.Payload)), true
}
