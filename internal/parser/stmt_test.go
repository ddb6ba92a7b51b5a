package parser

import (
	"testing"

	"sysyc/internal/ast"
)

func TestFunctionsAndStatements(t *testing.T) {
	src := `
int main() {
  const int a = 3, b = a + 1;
  ;
  { const int a = 5; }
  a + b;
  return a + b;
}

void helper() { return; }
`
	b, file, bag := parseSource(t, src)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(bag))
	}
	items := b.Files.Get(file).Items
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	mainFn, _ := b.Items.Func(items[0])
	if b.StringsInterner.MustLookup(mainFn.Name) != "main" || mainFn.RetType != ast.RetInt {
		t.Errorf("main = %+v", mainFn)
	}
	body, _ := b.Stmts.Block(mainFn.Body)
	wantKinds := []ast.StmtKind{ast.StmtConstDecl, ast.StmtEmpty, ast.StmtBlock, ast.StmtExpr, ast.StmtReturn}
	if len(body.Stmts) != len(wantKinds) {
		t.Fatalf("statements = %d, want %d", len(body.Stmts), len(wantKinds))
	}
	for i, want := range wantKinds {
		if got := b.Stmts.Get(body.Stmts[i]).Kind; got != want {
			t.Errorf("stmt %d = %v, want %v", i, got, want)
		}
	}
	decl, _ := b.Stmts.ConstDecl(body.Stmts[0])
	if len(decl.Defs) != 2 {
		t.Fatalf("const defs = %d", len(decl.Defs))
	}
	if got := ast.FormatExpr(b.Exprs, b.StringsInterner, decl.Defs[1].Value); got != "(a + 1)" {
		t.Errorf("second initializer = %s", got)
	}

	helper, _ := b.Items.Func(items[1])
	if helper.RetType != ast.RetVoid {
		t.Errorf("helper ret = %v", helper.RetType)
	}
	hb, _ := b.Stmts.Block(helper.Body)
	ret, _ := b.Stmts.Return(hb.Stmts[0])
	if ret.Expr.IsValid() {
		t.Error("bare return carries an expression")
	}
}

func TestStatementErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"empty unit", "", "SYN2101"},
		{"top level junk", "x int main() { return 0; }", "SYN2101"},
		{"const without int", "int main() { const a = 1; return a; }", "SYN2202"},
		{"const without name", "int main() { const int = 1; }", "SYN2102"},
		{"unclosed body", "int main() { return 0;", "SYN2007"},
		{"parameters", "int main(int x) { return 0; }", "SYN2006"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := parseSource(t, tt.input)
			if !bag.HasErrors() {
				t.Fatal("expected an error")
			}
			if got := bag.Items()[0].Code.ID(); got != tt.code {
				t.Errorf("code = %s, want %s (%s)", got, tt.code, diagnosticsSummary(bag))
			}
		})
	}
}

func TestRecoveryReportsSeveralErrors(t *testing.T) {
	_, _, bag := parseSource(t, "int main() { 1 + ; return (2; return 3; }")
	if bag.Len() < 2 {
		t.Fatalf("want at least 2 diagnostics, got %s", diagnosticsSummary(bag))
	}
}
