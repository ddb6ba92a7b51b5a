package parser

import (
	"math"

	"sysyc/internal/ast"
	"sysyc/internal/diag"
	"sysyc/internal/lexer"
	"sysyc/internal/token"
)

func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinaryExpr(precLogicalOr)
}

// parseBinaryExpr is a precedence-climbing loop over the operator table.
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for {
		prec := getBinaryOperatorPrec(p.lx.Peek().Kind)
		if prec < 0 || prec < minPrec {
			break
		}
		opTok := p.advance()

		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return ast.NoExprID, false
		}

		op := tokenKindToBinaryOp(opTok.Kind)
		span := p.arenas.Exprs.Get(left).Span.Cover(p.arenas.Exprs.Get(right).Span)
		left = p.arenas.Exprs.NewBinary(span, op, left, right)
	}
	return left, true
}

func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	op, ok := tokenKindToUnaryOp(p.lx.Peek().Kind)
	if !ok {
		return p.parsePrimary(false)
	}
	opTok := p.advance()

	var operand ast.ExprID
	if op == ast.ExprUnaryNeg && p.at(token.IntLit) {
		operand, ok = p.parsePrimary(true)
	} else {
		operand, ok = p.parseUnaryExpr()
	}
	if !ok {
		return ast.NoExprID, false
	}
	span := opTok.Span.Cover(p.arenas.Exprs.Get(operand).Span)
	return p.arenas.Exprs.NewUnary(span, op, operand), true
}

// parsePrimary parses a literal, an identifier or a parenthesised expression.
// negated allows the literal 2147483648, which only exists as -2147483648.
func (p *Parser) parsePrimary(negated bool) (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		bits, err := lexer.ParseIntLiteral(tok.Text)
		if err != nil {
			p.report(diag.LexBadNumber, diag.SevError, tok.Span, err.Error())
			return ast.NoExprID, false
		}
		if bits > math.MaxInt32 && !negated {
			p.report(diag.LexBadNumber, diag.SevError, tok.Span, "integer literal "+tok.Text+" overflows int")
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewLiteral(tok.Span, int32(bits), tok.Text), true

	case token.Ident:
		p.advance()
		name := p.arenas.StringsInterner.Intern(tok.Text)
		return p.arenas.Exprs.NewIdent(tok.Span, name), true

	case token.LParen:
		open := p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'")
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewGroup(open.Span.Cover(closeTok.Span), inner), true

	case token.Invalid:
		// already reported by the lexer
		p.advance()
		return ast.NoExprID, false

	default:
		p.err(diag.SynExpectExpression, "expected expression, got \""+tok.Text+"\"")
		return ast.NoExprID, false
	}
}
