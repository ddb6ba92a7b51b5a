package ast

import (
	"sysyc/internal/source"
)

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	// ExprIdent is a reference to a named constant.
	ExprIdent ExprKind = iota
	// ExprLit is an integer literal.
	ExprLit
	ExprBinary
	ExprUnary
	// ExprGroup is a parenthesised expression.
	ExprGroup
)

// Expr represents an expression node in the AST.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// ExprBinaryOp enumerates binary operator kinds.
type ExprBinaryOp uint8

const (
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod

	ExprBinaryLt
	ExprBinaryGt
	ExprBinaryLe
	ExprBinaryGe

	ExprBinaryEq
	ExprBinaryNe

	ExprBinaryLogicalAnd
	ExprBinaryLogicalOr
)

func (op ExprBinaryOp) String() string {
	switch op {
	case ExprBinaryAdd:
		return "+"
	case ExprBinarySub:
		return "-"
	case ExprBinaryMul:
		return "*"
	case ExprBinaryDiv:
		return "/"
	case ExprBinaryMod:
		return "%"
	case ExprBinaryLt:
		return "<"
	case ExprBinaryGt:
		return ">"
	case ExprBinaryLe:
		return "<="
	case ExprBinaryGe:
		return ">="
	case ExprBinaryEq:
		return "=="
	case ExprBinaryNe:
		return "!="
	case ExprBinaryLogicalAnd:
		return "&&"
	case ExprBinaryLogicalOr:
		return "||"
	}
	return "?"
}

// IsLogical reports whether op is && or ||.
func (op ExprBinaryOp) IsLogical() bool {
	return op == ExprBinaryLogicalAnd || op == ExprBinaryLogicalOr
}

// ExprUnaryOp enumerates unary operator kinds.
type ExprUnaryOp uint8

const (
	ExprUnaryPlus ExprUnaryOp = iota
	ExprUnaryNeg
	ExprUnaryNot
)

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryPlus:
		return "+"
	case ExprUnaryNeg:
		return "-"
	case ExprUnaryNot:
		return "!"
	}
	return "?"
}

type ExprIdentData struct {
	Name source.StringID
}

// ExprLiteralData holds the literal's 32-bit pattern; 2147483648 is stored
// as MinInt32 and is only meaningful under negation.
type ExprLiteralData struct {
	Value int32
	Raw   string
}

type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprGroupData struct {
	Inner ExprID
}
