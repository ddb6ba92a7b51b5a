package irgen

import (
	"errors"

	"sysyc/internal/diag"
	"sysyc/internal/source"
)

var (
	ErrReturnMismatch = errors.New("return value does not match the function type")
	ErrDuplicateFunc  = errors.New("function defined twice")
)

// Error is a semantic failure with its source location and diagnostic code.
type Error struct {
	Code diag.Code
	Span source.Span
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
