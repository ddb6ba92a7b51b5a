package parser

import (
	"sysyc/internal/ast"
	"sysyc/internal/diag"
	"sysyc/internal/token"
)

// parseBlock parses `"{" { BlockItem } "}"`. Statement errors resync
// inside the block; the block itself fails only when '}' is missing.
func (p *Parser) parseBlock() (ast.StmtID, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return ast.NoStmtID, false
	}
	stmts := make([]ast.StmtID, 0, 4)
	for !p.atOr(token.RBrace, token.EOF) {
		stmt, ok := p.parseStmt()
		if !ok {
			p.resyncStmt()
			continue
		}
		stmts = append(stmts, stmt)
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close block")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewBlock(open.Span.Cover(closeTok.Span), stmts), true
}

func (p *Parser) parseStmt() (ast.StmtID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwConst:
		return p.parseConstDecl()
	case token.KwReturn:
		return p.parseReturn()
	case token.Semicolon:
		tok := p.advance()
		return p.arenas.Stmts.NewEmpty(tok.Span), true
	case token.LBrace:
		return p.parseBlock()
	default:
		expr, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after expression")
		if !ok {
			return ast.NoStmtID, false
		}
		span := p.arenas.Exprs.Get(expr).Span.Cover(semi.Span)
		return p.arenas.Stmts.NewExpr(span, expr), true
	}
}

// parseConstDecl parses `"const" "int" ConstDef { "," ConstDef } ";"`.
func (p *Parser) parseConstDecl() (ast.StmtID, bool) {
	kw := p.advance()
	if _, ok := p.expect(token.KwInt, diag.SynExpectType, "expected 'int' after 'const'"); !ok {
		return ast.NoStmtID, false
	}
	defs := make([]ast.ConstDef, 0, 1)
	for {
		name, nameSpan, ok := p.parseIdent()
		if !ok {
			return ast.NoStmtID, false
		}
		if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in constant definition"); !ok {
			return ast.NoStmtID, false
		}
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		defs = append(defs, ast.ConstDef{Name: name, NameSpan: nameSpan, Value: value})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after constant declaration")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewConstDecl(kw.Span.Cover(semi.Span), defs), true
}

// parseReturn parses `"return" [Exp] ";"`.
func (p *Parser) parseReturn() (ast.StmtID, bool) {
	kw := p.advance()
	expr := ast.NoExprID
	if !p.at(token.Semicolon) {
		var ok bool
		expr, ok = p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after return")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewReturn(kw.Span.Cover(semi.Span), expr), true
}
