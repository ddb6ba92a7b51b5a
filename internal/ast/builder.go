package ast

import (
	"sysyc/internal/source"
)

type Hints struct{ Files, Items, Stmts, Exprs uint }

// Builder owns every arena of one parse.
type Builder struct {
	Files *Files
	Items *Items
	Stmts *Stmts
	Exprs *Exprs

	StringsInterner *source.Interner
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 2
	}
	if hints.Items == 0 {
		hints.Items = 1 << 4
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 6
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	return &Builder{
		Files: NewFiles(hints.Files),
		Items: NewItems(hints.Items),
		Stmts: NewStmts(hints.Stmts),
		Exprs: NewExprs(hints.Exprs),

		StringsInterner: source.NewInterner(),
	}
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return b.Files.New(sp)
}

func (b *Builder) PushItem(file FileID, item ItemID) {
	f := b.Files.Get(file)
	f.Items = append(f.Items, item)
}
