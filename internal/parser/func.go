package parser

import (
	"sysyc/internal/ast"
	"sysyc/internal/diag"
	"sysyc/internal/token"
)

// parseFuncDef parses `("int" | "void") IDENT "(" ")" Block`.
func (p *Parser) parseFuncDef() (ast.ItemID, bool) {
	typeTok := p.advance()
	ret := ast.RetInt
	if typeTok.Kind == token.KwVoid {
		ret = ast.RetVoid
	}

	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'; parameters are not supported"); !ok {
		return ast.NoItemID, false
	}
	if !p.at(token.LBrace) {
		p.err(diag.SynUnexpectedToken, "expected '{' to start function body")
		return ast.NoItemID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoItemID, false
	}

	span := typeTok.Span.Cover(p.arenas.Stmts.Get(body).Span)
	return p.arenas.Items.NewFunc(span, ast.FuncDef{
		Name:     name,
		NameSpan: nameSpan,
		RetType:  ret,
		Body:     body,
	}), true
}
