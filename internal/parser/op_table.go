package parser

import (
	"sysyc/internal/ast"
	"sysyc/internal/token"
)

// Higher binds tighter.
const (
	precLogicalOr      = 1 // ||
	precLogicalAnd     = 2 // &&
	precEquality       = 3 // == !=
	precComparison     = 4 // < <= > >=
	precAdditive       = 5 // + -
	precMultiplicative = 6 // * / %
)

// getBinaryOperatorPrec returns the precedence of kind, or -1 if it is not
// a binary operator. All binary operators are left-associative.
func getBinaryOperatorPrec(kind token.Kind) int {
	switch kind {
	case token.OrOr:
		return precLogicalOr
	case token.AndAnd:
		return precLogicalAnd
	case token.EqEq, token.BangEq:
		return precEquality
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative
	default:
		return -1
	}
}

func tokenKindToBinaryOp(kind token.Kind) ast.ExprBinaryOp {
	switch kind {
	case token.Plus:
		return ast.ExprBinaryAdd
	case token.Minus:
		return ast.ExprBinarySub
	case token.Star:
		return ast.ExprBinaryMul
	case token.Slash:
		return ast.ExprBinaryDiv
	case token.Percent:
		return ast.ExprBinaryMod
	case token.Lt:
		return ast.ExprBinaryLt
	case token.Gt:
		return ast.ExprBinaryGt
	case token.LtEq:
		return ast.ExprBinaryLe
	case token.GtEq:
		return ast.ExprBinaryGe
	case token.EqEq:
		return ast.ExprBinaryEq
	case token.BangEq:
		return ast.ExprBinaryNe
	case token.AndAnd:
		return ast.ExprBinaryLogicalAnd
	case token.OrOr:
		return ast.ExprBinaryLogicalOr
	}
	panic("unreachable: not a binary operator: " + kind.String())
}

func tokenKindToUnaryOp(kind token.Kind) (ast.ExprUnaryOp, bool) {
	switch kind {
	case token.Plus:
		return ast.ExprUnaryPlus, true
	case token.Minus:
		return ast.ExprUnaryNeg, true
	case token.Bang:
		return ast.ExprUnaryNot, true
	}
	return 0, false
}
