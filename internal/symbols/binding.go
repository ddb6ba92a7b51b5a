package symbols

import (
	"fmt"

	"sysyc/internal/source"
)

// BindingKind tags what a name is bound to.
type BindingKind uint8

const (
	// BindConstInt is a compile-time integer constant.
	BindConstInt BindingKind = iota
	// BindInt is reserved for mutable integer variables; nothing produces it yet.
	BindInt
)

func (k BindingKind) String() string {
	switch k {
	case BindConstInt:
		return "const int"
	case BindInt:
		return "int"
	}
	return "invalid"
}

type Binding struct {
	Kind  BindingKind
	Value int32
	Span  source.Span
}

func ConstInt(v int32, sp source.Span) Binding {
	return Binding{Kind: BindConstInt, Value: v, Span: sp}
}

// DuplicateError reports a redeclaration inside one scope.
type DuplicateError struct {
	Name string
	Prev Binding
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("redefinition of %q", e.Name)
}
