package ast

import (
	"testing"

	"tern/internal/source"
)

func TestArenaIsOneBased(t *testing.T) {
	a := NewArena[int](0)
	if a.Get(0) != nil || a.Get(1) != nil {
		t.Fatalf("empty arena must return nil")
	}
	id := a.Allocate(42)
	if id != 1 || *a.Get(id) != 42 || a.Len() != 1 {
		t.Fatalf("unexpected arena state: id=%d len=%d", id, a.Len())
	}
}

func TestItemPayloadAccessors(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	fn := b.Items.NewFun(Item{Name: source.StringID(3)}, FunItem{HasBlock: true})
	cls := b.Items.NewClass(Item{Name: source.StringID(4)}, ClassItem{Kind: ClassInterface})

	if data, ok := b.Items.Fun(fn); !ok || !data.HasBlock {
		t.Fatalf("Fun accessor failed")
	}
	if _, ok := b.Items.Class(fn); ok {
		t.Fatalf("fun item must not be a class")
	}
	if data, ok := b.Items.Class(cls); !ok || data.Kind != ClassInterface {
		t.Fatalf("Class accessor failed")
	}
}

func TestExprAccessors(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	recv := b.Exprs.NewIdent(source.Span{}, source.StringID(1))
	call := b.Exprs.NewCall(source.Span{Start: 0, End: 5}, ExprCallData{Receiver: recv, Name: source.StringID(2)})

	data, ok := b.Exprs.Call(call)
	if !ok || data.Receiver != recv {
		t.Fatalf("Call accessor failed")
	}
	if _, ok := b.Exprs.Lambda(call); ok {
		t.Fatalf("call is not a lambda")
	}
	if _, ok := b.Exprs.Ident(NoExprID); ok {
		t.Fatalf("invalid id must not resolve")
	}
}

func TestModifiersVisibility(t *testing.T) {
	if (ModPrivate | ModOpen).Visibility() != VisPrivate {
		t.Fatalf("private expected")
	}
	if Modifiers(0).Visibility() != VisPublic {
		t.Fatalf("public is the default")
	}
}

func TestHintsForSource(t *testing.T) {
	h := HintsForSource(3, 640)
	if h.Files != 3 || h.Items != 10 || h.Exprs != 80 {
		t.Fatalf("unexpected hints %+v", h)
	}
	if h := HintsForSource(0, -1); h != (Hints{}) {
		t.Fatalf("negative sizes must give zero hints, got %+v", h)
	}
}
