package rvsim

import (
	"errors"
	"testing"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		asm  string
		want int32
	}{
		{"literal", "  .text\n  .globl main\nmain:\n  li t0, 7\n  mv a0, t0\n  ret\n", 7},
		{"negate", "main:\n  li t0, 5\n  sub t0, x0, t0\n  mv a0, t0\n  ret\n", -5},
		{"le", "main:\n  li t0, 3\n  li t1, 3\n  sgt t0, t0, t1\n  seqz t0, t0\n  mv a0, t0\n  ret\n", 1},
		{"ne", "main:\n  li t0, 9\n  xor t0, t0, x0\n  snez t0, t0\n  mv a0, t0\n  ret\n", 1},
		{"rem sign", "main:\n  li t0, -7\n  li t1, 2\n  rem t0, t0, t1\n  mv a0, t0\n  ret\n", -1},
		{"div by zero", "main:\n  li t0, 7\n  div t0, t0, x0\n  mv a0, t0\n  ret\n", -1},
		{"rem by zero", "main:\n  li t0, 7\n  rem t0, t0, x0\n  mv a0, t0\n  ret\n", 7},
		{"x0 ignores writes", "main:\n  li x0, 5\n  mv a0, zero\n  ret\n", 0},
		{"comments and labels", "# prologue\nf:\n  li a0, 1 # one\n  ret\nmain: li a0, 2\n  ret\n", 2},
		{"shift", "main:\n  li t0, -8\n  li t1, 1\n  sra t0, t0, t1\n  mv a0, t0\n  ret\n", -4},
		{"jump", "main:\n  j main_end\n  li a0, 1\nmain_end:\n  ret\n", 0},
		{"hex immediate", "main:\n  li a0, 0x10\n  ret\n", 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Run(tt.asm, "main")
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Run = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunTraps(t *testing.T) {
	tests := []struct {
		name string
		asm  string
		code TrapCode
		line int
	}{
		{"missing entry", "f:\n  ret\n", TrapUnknownLabel, 0},
		{"unknown op", "main:\n  frob t0, t1\n  ret\n", TrapUnknownInstruction, 2},
		{"unknown three-operand op", "main:\n  frob t0, t1, t2\n  ret\n", TrapUnknownInstruction, 2},
		{"bad register", "main:\n  mv a0, q9\n  ret\n", TrapBadOperand, 2},
		{"bad arity", "main:\n  add t0, t1\n  ret\n", TrapBadOperand, 2},
		{"bad immediate", "main:\n  li t0, seven\n  ret\n", TrapBadOperand, 2},
		{"fell off", "main:\n  li a0, 1\n", TrapFellOff, 0},
		{"loop", "main:\n  j main\n", TrapStepLimit, 2},
		{"duplicate label", "main:\nmain:\n  ret\n", TrapBadOperand, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.asm, "main")
			var trap *Trap
			if !errors.As(err, &trap) {
				t.Fatalf("err = %v, want *Trap", err)
			}
			if trap.Code != tt.code || trap.Line != tt.line {
				t.Fatalf("trap = %s line %d, want %s line %d", trap.Code, trap.Line, tt.code, tt.line)
			}
		})
	}
}

func TestMachineSteps(t *testing.T) {
	prog, err := Assemble("main:\n  li t0, 1\n  li t1, 2\n  add a0, t0, t1\n  ret\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	m := NewMachine(prog)
	got, err := m.Call("main")
	if err != nil || got != 3 {
		t.Fatalf("Call = %d, %v; want 3", got, err)
	}
	if m.Steps() != 4 {
		t.Fatalf("Steps = %d, want 4", m.Steps())
	}
}
