package riscv

import (
	"fmt"
	"strings"

	"sysyc/internal/arith"
)

// mnemonic maps ops that lower to a single three-register instruction.
var mnemonic = map[arith.Op]string{
	arith.OpAdd: "add",
	arith.OpSub: "sub",
	arith.OpMul: "mul",
	arith.OpDiv: "div",
	arith.OpMod: "rem",
	arith.OpLt:  "slt",
	arith.OpGt:  "sgt",
	arith.OpAnd: "and",
	arith.OpOr:  "or",
	arith.OpXor: "xor",
	arith.OpShl: "sll",
	arith.OpShr: "srl",
	arith.OpSar: "sra",
}

// fused are ops built from a compare and a zero test on the result.
var fused = map[arith.Op][2]string{
	arith.OpLe: {"sgt", "seqz"},
	arith.OpGe: {"slt", "seqz"},
	arith.OpEq: {"xor", "seqz"},
	arith.OpNe: {"xor", "snez"},
}

func lower(sb *strings.Builder, op arith.Op, out, l, r Reg) error {
	if m, ok := mnemonic[op]; ok {
		fmt.Fprintf(sb, "  %s %s, %s, %s\n", m, out, l, r)
		return nil
	}
	if pair, ok := fused[op]; ok {
		fmt.Fprintf(sb, "  %s %s, %s, %s\n", pair[0], out, l, r)
		fmt.Fprintf(sb, "  %s %s, %s\n", pair[1], out, out)
		return nil
	}
	return &UnsupportedError{Kind: "binary " + op.String()}
}
