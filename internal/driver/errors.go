package driver

import (
	"errors"
	"fmt"

	"sysyc/internal/consteval"
	"sysyc/internal/diag"
	"sysyc/internal/irgen"
	"sysyc/internal/koopa"
	"sysyc/internal/riscv"
	"sysyc/internal/source"
)

// ErrDiagnostics means the front end reported errors; they are in the
// result's bag.
var ErrDiagnostics = errors.New("compilation failed with diagnostics")

// Stage names the pipeline step that failed.
type Stage string

const (
	StageLoad    Stage = "load"
	StageParse   Stage = "parse"
	StageIRGen   Stage = "irgen"
	StageKoopa   Stage = "koopa"
	StageCodegen Stage = "riscv"
	StageWrite   Stage = "write"
)

// Error is a failure of one compilation. Span is empty when the failing
// stage has no source position.
type Error struct {
	Stage Stage
	Code  diag.Code
	Span  source.Span
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classify attaches a diagnostic code and span to a core error.
func classify(stage Stage, file source.FileID, err error) *Error {
	out := &Error{Stage: stage, Span: source.Span{File: file}, Err: err}

	var (
		irErr     *irgen.Error
		undefined *consteval.UndefinedSymbolError
		fault     *consteval.FaultError
		unsup     *riscv.UnsupportedError
		parseErr  *koopa.ParseError
	)
	switch {
	case errors.As(err, &irErr):
		out.Code, out.Span = irErr.Code, irErr.Span
	case errors.As(err, &undefined):
		out.Code, out.Span = diag.SemaUndefinedSymbol, undefined.Span
	case errors.As(err, &fault):
		out.Code, out.Span = diag.SemaArithmeticFault, fault.Span
	case errors.As(err, &unsup):
		out.Code = diag.GenUnsupportedConstruct
	case errors.Is(err, riscv.ErrRegisterPoolExhausted):
		out.Code = diag.GenRegisterPoolExhausted
	case errors.As(err, &parseErr):
		out.Code = diag.GenMalformedIR
	case stage == StageLoad:
		out.Code = diag.IOLoadFileError
	case stage == StageWrite:
		out.Code = diag.IOWriteFileError
	}
	return out
}

// Diagnostic renders e for the bag.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code, e.Span, e.Err.Error())
}
