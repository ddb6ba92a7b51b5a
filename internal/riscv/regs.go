package riscv

import (
	"fortio.org/safecast"

	"sysyc/internal/session"
)

// Reg names a physical register. The zero value is the hard-wired x0.
type Reg uint8

const (
	Zero Reg = 0
	// A0 carries the return value.
	A0 Reg = 8
)

var pool = [...]string{"t0", "t1", "t2", "t3", "t4", "t5", "t6", "a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"}

// PoolSize is the number of allocatable registers.
const PoolSize = len(pool)

func (r Reg) String() string {
	if r == Zero || int(r) > len(pool) {
		return "x0"
	}
	return pool[r-1]
}

// allocate takes the next register off the compilation-wide counter.
func allocate(ctx *session.Context) (Reg, error) {
	idx, ok := ctx.NextRegister(PoolSize)
	if !ok {
		return Zero, ErrRegisterPoolExhausted
	}
	n, err := safecast.Conv[uint8](idx + 1)
	if err != nil {
		return Zero, err
	}
	return Reg(n), nil
}
