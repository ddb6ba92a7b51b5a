// Package arith holds the 32-bit integer semantics shared by constant
// evaluation, IR folding and the assembly simulator.
//
// Arithmetic wraps in two's complement. Division truncates toward zero and
// the remainder takes the sign of the dividend, as RV32M does; the one
// overflowing quotient MinInt32 / -1 is MinInt32 with remainder 0.
package arith

import (
	"errors"
	"fmt"
	"math"
)

// ErrDivisionByZero is returned for a zero divisor in div or mod.
var ErrDivisionByZero = errors.New("division by zero")

// Op is a binary operator named after its Koopa IR mnemonic.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpSar
)

var opNames = [...]string{
	OpAdd: "add",
	OpSub: "sub",
	OpMul: "mul",
	OpDiv: "div",
	OpMod: "mod",
	OpLt:  "lt",
	OpGt:  "gt",
	OpLe:  "le",
	OpGe:  "ge",
	OpEq:  "eq",
	OpNe:  "ne",
	OpAnd: "and",
	OpOr:  "or",
	OpXor: "xor",
	OpShl: "shl",
	OpShr: "shr",
	OpSar: "sar",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// LookupOp maps an IR mnemonic to its Op.
func LookupOp(name string) (Op, bool) {
	for i, n := range opNames {
		if n == name {
			return Op(i), true
		}
	}
	return 0, false
}

// Apply evaluates op on two operands. and/or are bitwise, as in the IR;
// logical forms normalise their operands first (see LogicalAnd).
func Apply(op Op, l, r int32) (int32, error) {
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		return Div(l, r)
	case OpMod:
		return Rem(l, r)
	case OpLt:
		return Bool(l < r), nil
	case OpGt:
		return Bool(l > r), nil
	case OpLe:
		return Bool(l <= r), nil
	case OpGe:
		return Bool(l >= r), nil
	case OpEq:
		return Bool(l == r), nil
	case OpNe:
		return Bool(l != r), nil
	case OpAnd:
		return l & r, nil
	case OpOr:
		return l | r, nil
	case OpXor:
		return l ^ r, nil
	case OpShl:
		return l << (uint32(r) & 31), nil
	case OpShr:
		return int32(uint32(l) >> (uint32(r) & 31)), nil
	case OpSar:
		return l >> (uint32(r) & 31), nil
	}
	return 0, fmt.Errorf("unknown operator %s", op)
}

// Div divides truncating toward zero.
func Div(l, r int32) (int32, error) {
	if r == 0 {
		return 0, ErrDivisionByZero
	}
	if l == math.MinInt32 && r == -1 {
		return math.MinInt32, nil
	}
	return l / r, nil
}

// Rem is the remainder matching Div.
func Rem(l, r int32) (int32, error) {
	if r == 0 {
		return 0, ErrDivisionByZero
	}
	if r == -1 {
		return 0, nil
	}
	return l % r, nil
}

// Bool converts a Go bool to 0 or 1.
func Bool(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Neg is 0 - x.
func Neg(x int32) int32 { return 0 - x }

// Not is x == 0.
func Not(x int32) int32 { return Bool(x == 0) }

// LogicalAnd normalises both operands to 0/1 and combines them.
// Both operands are always evaluated by callers; there is no short-circuit.
func LogicalAnd(l, r int32) int32 { return Bool(l != 0) & Bool(r != 0) }

// LogicalOr normalises both operands to 0/1 and combines them.
func LogicalOr(l, r int32) int32 { return Bool(l != 0) | Bool(r != 0) }
