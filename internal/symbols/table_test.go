package symbols

import (
	"errors"
	"testing"

	"sysyc/internal/source"
)

func TestShadowingAndPop(t *testing.T) {
	table := NewTable(nil)
	a := table.Strings.Intern("a")

	if err := table.Declare(a, ConstInt(1, source.Span{})); err != nil {
		t.Fatalf("declare: %v", err)
	}
	table.Push()
	if err := table.Declare(a, ConstInt(2, source.Span{})); err != nil {
		t.Fatalf("shadowing rejected: %v", err)
	}
	if b, _ := table.Lookup(a); b.Value != 2 {
		t.Fatalf("inner lookup = %d, want 2", b.Value)
	}
	if table.Depth() != 2 {
		t.Fatalf("depth = %d", table.Depth())
	}
	table.Pop()
	if b, _ := table.Lookup(a); b.Value != 1 {
		t.Fatalf("outer lookup = %d, want 1", b.Value)
	}
	table.Pop()
	if table.Depth() != 1 {
		t.Fatal("function scope must survive Pop")
	}
}

func TestDuplicateInSameScope(t *testing.T) {
	table := NewTable(nil)
	x := table.Strings.Intern("x")
	_ = table.Declare(x, ConstInt(1, source.Span{Start: 3}))

	err := table.Declare(x, ConstInt(2, source.Span{}))
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want *DuplicateError", err)
	}
	if dup.Name != "x" || dup.Prev.Span.Start != 3 {
		t.Errorf("dup = %+v", dup)
	}
}

func TestLookupMissing(t *testing.T) {
	table := NewTable(nil)
	table.Push()
	if _, ok := table.Lookup(table.Strings.Intern("nope")); ok {
		t.Fatal("found an undeclared name")
	}
}

func TestInnerNameInvisibleAfterPop(t *testing.T) {
	table := NewTable(nil)
	y := table.Strings.Intern("y")
	table.Push()
	_ = table.Declare(y, ConstInt(9, source.Span{}))
	table.Pop()
	if _, ok := table.Lookup(y); ok {
		t.Fatal("block-scoped name leaked out of its block")
	}
}
