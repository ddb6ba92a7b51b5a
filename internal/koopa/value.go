package koopa

import (
	"sysyc/internal/arith"
)

// Value is a handle into a function's value arena. NoValue is the zero handle.
type Value uint32

const NoValue Value = 0

func (v Value) IsValid() bool { return v != NoValue }

// Kind is the payload of a value. The concrete types are the exported
// structs below.
type Kind interface {
	KindName() string
}

type Integer struct{ Value int32 }

// Return terminates a block; Value is NoValue for a bare `ret`.
type Return struct{ Value Value }

type Binary struct {
	Op  arith.Op
	LHS Value
	RHS Value
}

type Alloc struct{ Type string }

type Load struct{ Src Value }

type Store struct {
	Value Value
	Dest  Value
}

type Jump struct{ Target *Block }

type Branch struct {
	Cond  Value
	True  *Block
	False *Block
}

func (Integer) KindName() string { return "integer" }
func (Return) KindName() string  { return "return" }
func (Binary) KindName() string  { return "binary" }
func (Alloc) KindName() string   { return "alloc" }
func (Load) KindName() string    { return "load" }
func (Store) KindName() string   { return "store" }
func (Jump) KindName() string    { return "jump" }
func (Branch) KindName() string  { return "branch" }

// HasValue reports whether the return carries an operand.
func (r Return) HasValue() bool { return r.Value.IsValid() }

// IsTerminator reports whether k ends a basic block.
func IsTerminator(k Kind) bool {
	switch k.(type) {
	case Return, Jump, Branch:
		return true
	}
	return false
}

// ValueData is one arena slot.
type ValueData struct {
	name string // "%0"; empty for inline integers and unnamed instructions
	kind Kind
	line int
}

func (d *ValueData) Kind() Kind   { return d.kind }
func (d *ValueData) Name() string { return d.name }

// Line is the 1-based source line the value was read from.
func (d *ValueData) Line() int { return d.line }
