package parser

import (
	"slices"

	"sysyc/internal/diag"
	"sysyc/internal/source"
	"sysyc/internal/token"
)

// advance consumes the next token and remembers its span.
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan points at the next token, or just past the last one at EOF.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{
			File:  p.lastSpan.File,
			Start: p.lastSpan.End,
			End:   p.lastSpan.End,
		}
	}
	return peek.Span
}

// expect consumes a token of kind k or reports code.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	p.report(code, diag.SevError, diagSpan, msg)
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.lx.Peek().Text}, false
}

func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if p.opts.Reporter == nil {
		return false
	}
	if sev == diag.SevError {
		if p.opts.Enough() {
			return false
		}
		p.opts.CurrentErrors++
	}
	diag.NewReportBuilder(p.opts.Reporter, sev, code, sp, msg).Emit()
	return true
}

// resyncUntil skips tokens until one of stop or EOF. The stop token is not consumed.
func (p *Parser) resyncUntil(stop ...token.Kind) {
	for !p.at(token.EOF) && !slices.Contains(stop, p.lx.Peek().Kind) {
		p.advance()
	}
}

// resyncStmt skips to the end of the current statement: past ';' or up to '}'.
func (p *Parser) resyncStmt() {
	p.resyncUntil(token.Semicolon, token.RBrace)
	if p.at(token.Semicolon) {
		p.advance()
	}
}
