// Package rvsim executes the RV32IM subset produced by the code generator.
//
// Registers are 32 bits wide and x0 reads as zero. Execution starts at a
// label and stops at the first ret, yielding a0.
package rvsim

import (
	"math"
	"strconv"

	"sysyc/internal/arith"
)

// DefaultMaxSteps bounds a run so malformed input cannot spin forever.
const DefaultMaxSteps = 1 << 20

// Machine is the register file plus the program counter.
type Machine struct {
	Regs     [32]int32
	MaxSteps int

	prog  *Program
	pc    int
	steps int
}

// Run assembles text and executes it from entry.
func Run(text, entry string) (int32, error) {
	prog, err := Assemble(text)
	if err != nil {
		return 0, err
	}
	m := NewMachine(prog)
	return m.Call(entry)
}

func NewMachine(prog *Program) *Machine {
	return &Machine{prog: prog, MaxSteps: DefaultMaxSteps}
}

// Steps is the number of instructions retired by the last Call.
func (m *Machine) Steps() int { return m.steps }

// Call runs from label entry until ret and returns a0.
func (m *Machine) Call(entry string) (int32, error) {
	start, ok := m.prog.labels[entry]
	if !ok {
		return 0, trapf(TrapUnknownLabel, 0, "entry label %s not found", entry)
	}
	m.pc, m.steps = start, 0
	for {
		if m.pc >= len(m.prog.insts) {
			return 0, trapf(TrapFellOff, 0, "execution ran past the end of the program")
		}
		if m.MaxSteps > 0 && m.steps >= m.MaxSteps {
			return 0, trapf(TrapStepLimit, m.prog.insts[m.pc].line, "step limit %d reached", m.MaxSteps)
		}
		in := m.prog.insts[m.pc]
		m.pc++
		m.steps++
		done, err := m.step(in)
		if err != nil {
			return 0, err
		}
		if done {
			return m.Regs[10], nil
		}
	}
}

var threeReg = map[string]arith.Op{
	"add": arith.OpAdd,
	"sub": arith.OpSub,
	"mul": arith.OpMul,
	"slt": arith.OpLt,
	"sgt": arith.OpGt,
	"xor": arith.OpXor,
	"and": arith.OpAnd,
	"or":  arith.OpOr,
	"sll": arith.OpShl,
	"srl": arith.OpShr,
	"sra": arith.OpSar,
}

func (m *Machine) step(in inst) (bool, error) {
	switch in.op {
	case "ret":
		return true, m.arity(in, 0)
	case "j":
		if err := m.arity(in, 1); err != nil {
			return false, err
		}
		target, ok := m.prog.labels[in.args[0]]
		if !ok {
			return false, trapf(TrapUnknownLabel, in.line, "unknown label %s", in.args[0])
		}
		m.pc = target
		return false, nil
	case "li":
		if err := m.arity(in, 2); err != nil {
			return false, err
		}
		n, err := strconv.ParseInt(in.args[1], 0, 64)
		if err != nil || n < math.MinInt32 || n > math.MaxUint32 {
			return false, trapf(TrapBadOperand, in.line, "bad immediate %q", in.args[1])
		}
		return false, m.write(in, in.args[0], int32(n))
	case "mv", "seqz", "snez", "neg":
		if err := m.arity(in, 2); err != nil {
			return false, err
		}
		v, err := m.read(in, in.args[1])
		if err != nil {
			return false, err
		}
		switch in.op {
		case "seqz":
			v = arith.Bool(v == 0)
		case "snez":
			v = arith.Bool(v != 0)
		case "neg":
			v = arith.Neg(v)
		}
		return false, m.write(in, in.args[0], v)
	}

	if err := m.arity(in, 3); err != nil {
		return false, err
	}
	l, err := m.read(in, in.args[1])
	if err != nil {
		return false, err
	}
	r, err := m.read(in, in.args[2])
	if err != nil {
		return false, err
	}
	var v int32
	switch in.op {
	case "div":
		v = divide(l, r)
	case "rem":
		v = remainder(l, r)
	default:
		op, ok := threeReg[in.op]
		if !ok {
			return false, trapf(TrapUnknownInstruction, in.line, "unknown instruction %q", in.op)
		}
		v, err = arith.Apply(op, l, r)
		if err != nil {
			return false, trapf(TrapBadOperand, in.line, "%v", err)
		}
	}
	return false, m.write(in, in.args[0], v)
}

// divide and remainder follow RV32M: no trap on a zero divisor.
func divide(l, r int32) int32 {
	if r == 0 {
		return -1
	}
	q, _ := arith.Div(l, r)
	return q
}

func remainder(l, r int32) int32 {
	if r == 0 {
		return l
	}
	rem, _ := arith.Rem(l, r)
	return rem
}

func (m *Machine) arity(in inst, n int) error {
	if len(in.args) != n {
		if _, known := threeReg[in.op]; !known && !isKnown(in.op) {
			return trapf(TrapUnknownInstruction, in.line, "unknown instruction %q", in.op)
		}
		return trapf(TrapBadOperand, in.line, "%s expects %d operand(s), got %d", in.op, n, len(in.args))
	}
	return nil
}

func isKnown(op string) bool {
	switch op {
	case "ret", "j", "li", "mv", "seqz", "snez", "neg", "div", "rem":
		return true
	}
	return false
}

func (m *Machine) read(in inst, name string) (int32, error) {
	idx, ok := regIndex(name)
	if !ok {
		return 0, trapf(TrapBadOperand, in.line, "unknown register %q", name)
	}
	return m.Regs[idx], nil
}

func (m *Machine) write(in inst, name string, v int32) error {
	idx, ok := regIndex(name)
	if !ok {
		return trapf(TrapBadOperand, in.line, "unknown register %q", name)
	}
	if idx != 0 {
		m.Regs[idx] = v
	}
	return nil
}
