package driver

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"sysyc/internal/arith"
	"sysyc/internal/consteval"
	"sysyc/internal/diag"
	"sysyc/internal/koopa"
	"sysyc/internal/riscv"
	"sysyc/internal/rvsim"
	"sysyc/internal/session"
	"sysyc/internal/source"
	"sysyc/internal/symbols"
)

func compile(t *testing.T, src string, mode Mode) (*Result, error) {
	t.Helper()
	return CompileSource(context.Background(), "test.sy", []byte(src), Options{Mode: mode, MaxDiagnostics: 16})
}

func TestCompileScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ir   string
		asm  string
	}{
		{
			name: "literal return",
			src:  "int main() { return 7; }",
			ir:   "fun @main(): i32 {\n%entry:\n  ret 7\n}\n",
			asm:  "  .text\n  .globl main\nmain:\n  li t0, 7\n  mv a0, t0\n  ret\n",
		},
		{
			name: "unary negate",
			src:  "int main() { return -5; }",
			ir:   "fun @main(): i32 {\n%entry:\n  %0 = sub 0, 5\n  ret %0\n}\n",
			asm:  "  .text\n  .globl main\nmain:\n  li t0, 5\n  sub t0, x0, t0\n  mv a0, t0\n  ret\n",
		},
		{
			name: "constant declaration",
			src:  "int main() { const int a = 3; const int b = 4; return a + b; }",
			ir:   "fun @main(): i32 {\n%entry:\n  %0 = add 3, 4\n  ret %0\n}\n",
			asm:  "  .text\n  .globl main\nmain:\n  li t0, 3\n  li t1, 4\n  add t0, t0, t1\n  mv a0, t0\n  ret\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := compile(t, tt.src, ModeRiscv)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if res.IR != tt.ir {
				t.Errorf("IR:\n%s\nwant:\n%s", res.IR, tt.ir)
			}
			if res.Asm != tt.asm {
				t.Errorf("asm:\n%s\nwant:\n%s", res.Asm, tt.asm)
			}
		})
	}
}

func TestCompileKoopaModeSkipsBackend(t *testing.T) {
	var phases []string
	opts := Options{
		Mode: ModeKoopa,
		PhaseObserver: func(ev PhaseEvent) {
			if ev.Status == PhaseEnd {
				phases = append(phases, ev.Name)
			}
		},
	}
	res, err := CompileSource(context.Background(), "k.sy", []byte("int main() { return 1 + 2; }"), opts)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.Asm != "" || res.Output(ModeKoopa) != res.IR {
		t.Fatalf("unexpected artifacts: asm=%q", res.Asm)
	}
	if got := strings.Join(phases, ","); got != "parse,irgen" {
		t.Fatalf("phases = %s, want parse,irgen", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		stage Stage
		code  diag.Code
		is    error
	}{
		{"undefined identifier", "int main() { return x; }", StageIRGen, diag.SemaUndefinedSymbol, nil},
		{"const division by zero", "int main() { const int z = 0; const int a = 5 % z; return a; }", StageIRGen, diag.SemaArithmeticFault, arith.ErrDivisionByZero},
		{"register pool exhausted", "int main() { return " + wideSum(9) + "; }", StageCodegen, diag.GenRegisterPoolExhausted, riscv.ErrRegisterPoolExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := compile(t, tt.src, ModeRiscv)
			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("err = %v, want *Error", err)
			}
			if cerr.Stage != tt.stage || cerr.Code != tt.code {
				t.Fatalf("stage/code = %s/%s, want %s/%s", cerr.Stage, cerr.Code.ID(), tt.stage, tt.code.ID())
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("err %v is not %v", err, tt.is)
			}
			if res.IR != "" || res.Asm != "" {
				t.Fatalf("partial output returned")
			}
			first, ok := res.Bag.FirstError()
			if !ok || first.Code != tt.code {
				t.Fatalf("bag = %v", res.Bag.Items())
			}
		})
	}
}

// wideSum builds (1+2)*(3+4)*... so that every product keeps two live
// registers.
func wideSum(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("(%d + %d)", 2*i+1, 2*i+2)
	}
	return strings.Join(parts, " * ")
}

func TestUndefinedIdentifierSpan(t *testing.T) {
	src := "int main() { return x; }"
	res, err := compile(t, src, ModeKoopa)
	var undef *consteval.UndefinedSymbolError
	if !errors.As(err, &undef) || undef.Name != "x" {
		t.Fatalf("err = %v, want undefined x", err)
	}
	first, _ := res.Bag.FirstError()
	start, _ := res.FileSet.Resolve(first.Primary)
	if start.Line != 1 || start.Col != 21 {
		t.Fatalf("position = %d:%d, want 1:21", start.Line, start.Col)
	}
}

func TestCompileSyntaxErrors(t *testing.T) {
	res, err := compile(t, "int main() { return 1 }", ModeRiscv)
	if !errors.Is(err, ErrDiagnostics) {
		t.Fatalf("err = %v, want ErrDiagnostics", err)
	}
	first, ok := res.Bag.FirstError()
	if !ok || first.Code != diag.SynExpectSemicolon {
		t.Fatalf("bag = %v", res.Bag.Items())
	}
}

func TestCompileFileMissing(t *testing.T) {
	_, err := CompileFile(context.Background(), filepath.Join(t.TempDir(), "absent.sy"), Options{})
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Stage != StageLoad || cerr.Code != diag.IOLoadFileError {
		t.Fatalf("err = %v, want load error", err)
	}
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CompileSource(ctx, "c.sy", []byte("int main() { return 0; }"), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCompileTimings(t *testing.T) {
	res, err := CompileSource(context.Background(), "t.sy", []byte("int main() { return 0; }"), Options{EnableTimings: true})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(res.Timings.Phases) != 4 {
		t.Fatalf("phases = %+v", res.Timings.Phases)
	}
	items := res.Bag.Items()
	if len(items) == 0 || items[len(items)-1].Code != diag.ObsTimings {
		t.Fatalf("timing diagnostic missing: %v", items)
	}
}

func TestIndependentCompilationsRestartNames(t *testing.T) {
	src := "int main() { return 1 + 2; }"
	a, errA := compile(t, src, ModeRiscv)
	b, errB := compile(t, src, ModeRiscv)
	if errA != nil || errB != nil {
		t.Fatalf("compile: %v / %v", errA, errB)
	}
	if a.IR != b.IR || a.Asm != b.Asm {
		t.Fatalf("outputs differ between compilations")
	}

	shared := session.New()
	opts := Options{Mode: ModeKoopa, Session: shared}
	if _, err := CompileSource(context.Background(), "a.sy", []byte(src), opts); err != nil {
		t.Fatal(err)
	}
	second, err := CompileSource(context.Background(), "b.sy", []byte(src), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(second.IR, "%1 = add 1, 2") {
		t.Fatalf("shared session did not continue numbering:\n%s", second.IR)
	}
}

// genExpr builds a random constant expression with at most depth levels.
func genExpr(r *rand.Rand, depth int) string {
	if depth == 0 || r.IntN(4) == 0 {
		return fmt.Sprint(r.IntN(20))
	}
	switch r.IntN(6) {
	case 0:
		return "-(" + genExpr(r, depth-1) + ")"
	case 1:
		return "!(" + genExpr(r, depth-1) + ")"
	case 2:
		return "(" + genExpr(r, depth-1) + ")"
	}
	ops := []string{"+", "-", "*", "/", "%", "<", ">", "<=", ">=", "==", "!=", "&&", "||"}
	return "(" + genExpr(r, depth-1) + " " + ops[r.IntN(len(ops))] + " " + genExpr(r, depth-1) + ")"
}

// evalDirect parses src and interprets its first return expression.
func evalDirect(t *testing.T, src string) (int32, error) {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(8)
	b, fileID, err := parseFile(fs.Get(fs.AddVirtual("direct.sy", []byte(src))), bag)
	if err != nil || bag.HasErrors() {
		t.Fatalf("parse %q: %v %v", src, err, bag.Items())
	}
	fn, _ := b.Items.Func(b.Files.Get(fileID).Items[0])
	block, _ := b.Stmts.Block(fn.Body)
	ret, _ := b.Stmts.Return(block.Stmts[0])
	return consteval.Evaluate(b.Exprs, symbols.NewTable(b.StringsInterner), ret.Expr)
}

func TestDualPathConsistency(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	checkedAsm := 0
	for i := 0; i < 300; i++ {
		src := "int main() { return " + genExpr(r, 4) + "; }"
		want, err := evalDirect(t, src)
		if errors.Is(err, arith.ErrDivisionByZero) {
			continue
		}
		if err != nil {
			t.Fatalf("%s: evaluate: %v", src, err)
		}

		res, err := compile(t, src, ModeKoopa)
		if err != nil {
			t.Fatalf("%s: compile: %v", src, err)
		}
		prog, err := koopa.Parse(res.IR)
		if err != nil {
			t.Fatalf("%s: reload: %v", src, err)
		}
		folded, err := koopa.EvalReturn(prog.Funcs()[0])
		if err != nil {
			t.Fatalf("%s: fold: %v", src, err)
		}
		if folded != want {
			t.Fatalf("%s: IR fold = %d, direct = %d\n%s", src, folded, want, res.IR)
		}

		res, err = compile(t, src, ModeRiscv)
		if errors.Is(err, riscv.ErrRegisterPoolExhausted) {
			continue
		}
		if err != nil {
			t.Fatalf("%s: compile riscv: %v", src, err)
		}
		ran, err := rvsim.Run(res.Asm, "main")
		if err != nil {
			t.Fatalf("%s: simulate: %v\n%s", src, err, res.Asm)
		}
		if ran != want {
			t.Fatalf("%s: simulated = %d, direct = %d\n%s", src, ran, want, res.Asm)
		}
		checkedAsm++
	}
	if checkedAsm == 0 {
		t.Fatal("no expression reached the simulator")
	}
}

func TestTestdataPrograms(t *testing.T) {
	want := map[string]int32{
		"literal.sy":    7,
		"negate.sy":     -5,
		"consts.sy":     7,
		"precedence.sy": 27,
		"void_helper.c": 24,
	}
	for name, value := range want {
		t.Run(name, func(t *testing.T) {
			res, err := CompileFile(context.Background(), filepath.Join("..", "..", "testdata", name), Options{Mode: ModeRiscv})
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			prog, err := koopa.Parse(res.IR)
			if err != nil {
				t.Fatalf("reload IR: %v", err)
			}
			fn, ok := prog.Func("@main")
			if !ok {
				t.Fatal("no @main in IR")
			}
			folded, err := koopa.EvalReturn(fn)
			if err != nil {
				t.Fatalf("fold: %v", err)
			}
			simulated, err := rvsim.Run(res.Asm, "main")
			if err != nil {
				t.Fatalf("simulate: %v", err)
			}
			if folded != value || simulated != value {
				t.Fatalf("folded %d, simulated %d, want %d", folded, simulated, value)
			}
		})
	}
}
