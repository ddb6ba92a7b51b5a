// Package consteval folds constant expressions of the AST to int32 values.
package consteval

import (
	"errors"
	"fmt"

	"sysyc/internal/arith"
	"sysyc/internal/ast"
	"sysyc/internal/source"
	"sysyc/internal/symbols"
)

// UndefinedSymbolError is returned for an identifier with no visible binding.
type UndefinedSymbolError struct {
	Name string
	Span source.Span
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("undefined symbol %q", e.Name)
}

// FaultError attaches the offending expression span to an arithmetic fault.
type FaultError struct {
	Span source.Span
	Err  error
}

func (e *FaultError) Error() string {
	return "constant evaluation: " + e.Err.Error()
}

func (e *FaultError) Unwrap() error { return e.Err }

// NotConstantError is returned for a binding that has no compile-time value.
type NotConstantError struct {
	Name string
	Span source.Span
}

func (e *NotConstantError) Error() string {
	return fmt.Sprintf("%q is not a compile-time constant", e.Name)
}

// Evaluate interprets expression id against table. Both operands of every
// binary operator are evaluated, && and || included.
func Evaluate(exprs *ast.Exprs, table *symbols.Table, id ast.ExprID) (int32, error) {
	expr := exprs.Get(id)
	if expr == nil {
		return 0, errors.New("consteval: missing expression")
	}

	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := exprs.Literal(id)
		return lit.Value, nil

	case ast.ExprIdent:
		ident, _ := exprs.Ident(id)
		return LookupConst(table, ident.Name, expr.Span)

	case ast.ExprGroup:
		group, _ := exprs.Group(id)
		return Evaluate(exprs, table, group.Inner)

	case ast.ExprUnary:
		un, _ := exprs.Unary(id)
		v, err := Evaluate(exprs, table, un.Operand)
		if err != nil {
			return 0, err
		}
		switch un.Op {
		case ast.ExprUnaryNeg:
			return arith.Neg(v), nil
		case ast.ExprUnaryNot:
			return arith.Not(v), nil
		default:
			return v, nil
		}

	case ast.ExprBinary:
		bin, _ := exprs.Binary(id)
		l, err := Evaluate(exprs, table, bin.Left)
		if err != nil {
			return 0, err
		}
		r, err := Evaluate(exprs, table, bin.Right)
		if err != nil {
			return 0, err
		}
		switch bin.Op {
		case ast.ExprBinaryLogicalAnd:
			return arith.LogicalAnd(l, r), nil
		case ast.ExprBinaryLogicalOr:
			return arith.LogicalOr(l, r), nil
		}
		v, err := arith.Apply(BinaryOp(bin.Op), l, r)
		if err != nil {
			return 0, &FaultError{Span: expr.Span, Err: err}
		}
		return v, nil
	}
	return 0, fmt.Errorf("consteval: unexpected expression kind %d", expr.Kind)
}

// LookupConst resolves name to its constant value.
func LookupConst(table *symbols.Table, name source.StringID, sp source.Span) (int32, error) {
	b, ok := table.Lookup(name)
	if !ok {
		return 0, &UndefinedSymbolError{Name: table.Strings.MustLookup(name), Span: sp}
	}
	if b.Kind != symbols.BindConstInt {
		return 0, &NotConstantError{Name: table.Strings.MustLookup(name), Span: sp}
	}
	return b.Value, nil
}

// BinaryOp maps a non-logical AST operator to its IR operator.
func BinaryOp(op ast.ExprBinaryOp) arith.Op {
	switch op {
	case ast.ExprBinaryAdd:
		return arith.OpAdd
	case ast.ExprBinarySub:
		return arith.OpSub
	case ast.ExprBinaryMul:
		return arith.OpMul
	case ast.ExprBinaryDiv:
		return arith.OpDiv
	case ast.ExprBinaryMod:
		return arith.OpMod
	case ast.ExprBinaryLt:
		return arith.OpLt
	case ast.ExprBinaryGt:
		return arith.OpGt
	case ast.ExprBinaryLe:
		return arith.OpLe
	case ast.ExprBinaryGe:
		return arith.OpGe
	case ast.ExprBinaryEq:
		return arith.OpEq
	case ast.ExprBinaryNe:
		return arith.OpNe
	case ast.ExprBinaryLogicalAnd:
		return arith.OpAnd
	case ast.ExprBinaryLogicalOr:
		return arith.OpOr
	}
	panic(fmt.Sprintf("consteval: unknown binary operator %d", op))
}
