package ast

import (
	"sysyc/internal/source"
)

type ItemKind uint8

const (
	ItemFunc ItemKind = iota
)

// RetType is the declared result type of a function.
type RetType uint8

const (
	RetInt RetType = iota
	RetVoid
)

func (r RetType) String() string {
	if r == RetVoid {
		return "void"
	}
	return "int"
}

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

// FuncDef is `("int" | "void") IDENT "(" ")" Block`.
type FuncDef struct {
	Name     source.StringID
	NameSpan source.Span
	RetType  RetType
	Body     StmtID
}

type Items struct {
	Arena *Arena[Item]
	Funcs *Arena[FuncDef]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 4
	}
	return &Items{
		Arena: NewArena[Item](capHint),
		Funcs: NewArena[FuncDef](capHint),
	}
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) NewFunc(sp source.Span, fn FuncDef) ItemID {
	payload := i.Funcs.Allocate(fn)
	return ItemID(i.Arena.Allocate(Item{
		Kind:    ItemFunc,
		Span:    sp,
		Payload: PayloadID(payload),
	}))
}

// Func returns the function payload of item id.
func (i *Items) Func(id ItemID) (*FuncDef, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemFunc {
		return nil, false
	}
	return i.Funcs.Get(uint32(item.Payload)), true
}
