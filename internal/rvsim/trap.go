package rvsim

import "fmt"

// TrapCode identifies why the simulator stopped abnormally.
type TrapCode int

// Stable trap codes.
const (
	TrapUnknownInstruction TrapCode = 1001 // SIM1001
	TrapBadOperand         TrapCode = 1002 // SIM1002
	TrapUnknownLabel       TrapCode = 1003 // SIM1003
	TrapFellOff            TrapCode = 1004 // SIM1004: ran past the last instruction
	TrapStepLimit          TrapCode = 1005 // SIM1005
)

func (c TrapCode) String() string {
	return fmt.Sprintf("SIM%d", int(c))
}

// Trap is an assembly or execution failure. Line is 1-based; 0 when the
// failure has no source line.
type Trap struct {
	Code    TrapCode
	Line    int
	Message string
}

func (t *Trap) Error() string {
	if t.Line > 0 {
		return fmt.Sprintf("trap %s at line %d: %s", t.Code, t.Line, t.Message)
	}
	return fmt.Sprintf("trap %s: %s", t.Code, t.Message)
}

func trapf(code TrapCode, line int, format string, args ...any) *Trap {
	return &Trap{Code: code, Line: line, Message: fmt.Sprintf(format, args...)}
}
