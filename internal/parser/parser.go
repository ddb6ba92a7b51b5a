package parser

import (
	"slices"

	"sysyc/internal/ast"
	"sysyc/internal/diag"
	"sysyc/internal/lexer"
	"sysyc/internal/source"
	"sysyc/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error limit has been reached.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File ast.FileID
	Bag  *diag.Bag
}

// Parser holds the state for one file.
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     ast.FileID
	opts     Options
	lastSpan source.Span
}

// ParseFile parses one compilation unit from lx into arenas.
func ParseFile(lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		file:     arenas.Files.New(lx.EmptySpan()),
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}

	p.parseItems()
	var bag *diag.Bag
	switch r := opts.Reporter.(type) {
	case diag.BagReporter:
		bag = r.Bag
	case *diag.BagReporter:
		bag = r.Bag
	}
	return Result{File: p.file, Bag: bag}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// parseItems is the top-level loop: FuncDef { FuncDef }.
func (p *Parser) parseItems() {
	startSpan := p.lx.Peek().Span
	if p.at(token.EOF) {
		p.err(diag.SynUnexpectedTopLevel, "expected at least one function definition")
	}
	for !p.at(token.EOF) {
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		p.arenas.PushItem(p.file, itemID)
	}
	p.arenas.Files.Get(p.file).Span = startSpan.Cover(p.lx.Peek().Span)
}

func (p *Parser) parseItem() (ast.ItemID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwInt, token.KwVoid:
		return p.parseFuncDef()
	default:
		p.err(diag.SynUnexpectedTopLevel, "unexpected top-level construct \""+p.lx.Peek().Text+"\"")
		return ast.NoItemID, false
	}
}

// resyncTop skips tokens until the start of the next function definition.
func (p *Parser) resyncTop() {
	if !p.at(token.EOF) && !isTopLevelStarter(p.lx.Peek().Kind) {
		p.advance()
	}
	p.resyncUntil(token.KwInt, token.KwVoid)
}

func isTopLevelStarter(k token.Kind) bool {
	return k == token.KwInt || k == token.KwVoid
}

// parseIdent expects an identifier and interns it.
func (p *Parser) parseIdent() (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.arenas.StringsInterner.Intern(tok.Text), tok.Span, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got \""+p.lx.Peek().Text+"\"")
	return source.NoStringID, p.getDiagnosticSpan(), false
}
