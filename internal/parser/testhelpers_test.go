package parser

import (
	"fmt"
	"strings"
	"testing"

	"sysyc/internal/ast"
	"sysyc/internal/diag"
	"sysyc/internal/lexer"
	"sysyc/internal/source"
)

func parseSource(t *testing.T, input string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.sy", []byte(input)))
	bag := diag.NewBag(32)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	b := ast.NewBuilder(ast.Hints{})
	res := ParseFile(lx, b, Options{Reporter: rep})
	return b, res.File, bag
}

// returnExpr parses `int main() { return <expr>; }` and formats the returned expression.
func returnExpr(t *testing.T, expr string) string {
	t.Helper()
	b, file, bag := parseSource(t, "int main() { return "+expr+"; }")
	if bag.HasErrors() {
		t.Fatalf("parse %q: %s", expr, diagnosticsSummary(bag))
	}
	fn, _ := b.Items.Func(b.Files.Get(file).Items[0])
	block, _ := b.Stmts.Block(fn.Body)
	ret, ok := b.Stmts.Return(block.Stmts[0])
	if !ok {
		t.Fatalf("first statement is %v", b.Stmts.Get(block.Stmts[0]).Kind)
	}
	return ast.FormatExpr(b.Exprs, b.StringsInterner, ret.Expr)
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}
