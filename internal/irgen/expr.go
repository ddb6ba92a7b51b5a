package irgen

import (
	"fmt"
	"strconv"

	"sysyc/internal/arith"
	"sysyc/internal/ast"
	"sysyc/internal/consteval"
)

// emitExpr appends the instructions of expression id and returns its operand:
// either an inline integer or the virtual name holding the result.
func (e *emitter) emitExpr(id ast.ExprID) (string, error) {
	expr := e.b.Exprs.Get(id)
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := e.b.Exprs.Literal(id)
		return strconv.Itoa(int(lit.Value)), nil

	case ast.ExprIdent:
		ident, _ := e.b.Exprs.Ident(id)
		v, err := consteval.LookupConst(e.table, ident.Name, expr.Span)
		if err != nil {
			return "", wrapEvalError(err, expr.Span)
		}
		return strconv.Itoa(int(v)), nil

	case ast.ExprGroup:
		group, _ := e.b.Exprs.Group(id)
		return e.emitExpr(group.Inner)

	case ast.ExprUnary:
		un, _ := e.b.Exprs.Unary(id)
		x, err := e.emitExpr(un.Operand)
		if err != nil {
			return "", err
		}
		switch un.Op {
		case ast.ExprUnaryNeg:
			return e.bind(arith.OpSub, "0", x), nil
		case ast.ExprUnaryNot:
			return e.bind(arith.OpEq, x, "0"), nil
		default:
			return x, nil
		}

	case ast.ExprBinary:
		bin, _ := e.b.Exprs.Binary(id)
		l, err := e.emitExpr(bin.Left)
		if err != nil {
			return "", err
		}
		r, err := e.emitExpr(bin.Right)
		if err != nil {
			return "", err
		}
		if bin.Op.IsLogical() {
			// No short-circuit: both sides are already emitted. Operands with
			// side effects (calls, assignments) will need branches here.
			nl := e.bind(arith.OpNe, l, "0")
			nr := e.bind(arith.OpNe, r, "0")
			return e.bind(consteval.BinaryOp(bin.Op), nl, nr), nil
		}
		return e.bind(consteval.BinaryOp(bin.Op), l, r), nil
	}
	return "", fmt.Errorf("irgen: unexpected expression kind %d", expr.Kind)
}

// bind emits `%n = op l, r` and returns %n.
func (e *emitter) bind(op arith.Op, l, r string) string {
	name := e.ctx.NextValue()
	e.inst(name + " = " + op.String() + " " + l + ", " + r)
	return name
}
