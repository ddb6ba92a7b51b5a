package ast

import (
	"fmt"
	"strings"

	"sysyc/internal/source"
)

// FormatExpr renders an expression fully parenthesised, for tests and tracing.
func FormatExpr(exprs *Exprs, strs *source.Interner, id ExprID) string {
	var sb strings.Builder
	writeExpr(&sb, exprs, strs, id)
	return sb.String()
}

func writeExpr(sb *strings.Builder, exprs *Exprs, strs *source.Interner, id ExprID) {
	expr := exprs.Get(id)
	if expr == nil {
		sb.WriteString("<nil>")
		return
	}
	switch expr.Kind {
	case ExprLit:
		lit, _ := exprs.Literal(id)
		sb.WriteString(lit.Raw)
	case ExprIdent:
		ident, _ := exprs.Ident(id)
		name, ok := strs.Lookup(ident.Name)
		if !ok {
			name = fmt.Sprintf("#%d", ident.Name)
		}
		sb.WriteString(name)
	case ExprGroup:
		group, _ := exprs.Group(id)
		writeExpr(sb, exprs, strs, group.Inner)
	case ExprUnary:
		un, _ := exprs.Unary(id)
		sb.WriteString("(")
		sb.WriteString(un.Op.String())
		writeExpr(sb, exprs, strs, un.Operand)
		sb.WriteString(")")
	case ExprBinary:
		bin, _ := exprs.Binary(id)
		sb.WriteString("(")
		writeExpr(sb, exprs, strs, bin.Left)
		sb.WriteString(" " + bin.Op.String() + " ")
		writeExpr(sb, exprs, strs, bin.Right)
		sb.WriteString(")")
	}
}
