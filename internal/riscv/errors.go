package riscv

import (
	"errors"
	"fmt"
)

// ErrRegisterPoolExhausted means a function needed more registers than the
// pool holds. There is no spill path.
var ErrRegisterPoolExhausted = errors.New("register pool exhausted")

// UnsupportedError reports an IR value kind codegen cannot lower.
type UnsupportedError struct {
	Kind string
	Func string
	Line int
}

func (e *UnsupportedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("unsupported IR construct %s in %s (line %d)", e.Kind, e.Func, e.Line)
	}
	return fmt.Sprintf("unsupported IR construct %s in %s", e.Kind, e.Func)
}

// ValueError attaches the IR value being generated to a failure.
type ValueError struct {
	Func  string
	Value string
	Line  int
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: value %s (line %d): %v", e.Func, e.Value, e.Line, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }
