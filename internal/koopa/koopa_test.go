package koopa

import (
	"errors"
	"strings"
	"testing"

	"sysyc/internal/arith"
)

func mustParse(t *testing.T, text string) *Program {
	t.Helper()
	prog, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return prog
}

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"fun @main(): i32 {\n%entry:\n  ret 7\n}\n",
		"fun @main(): i32 {\n%entry:\n  %0 = sub 0, 5\n  ret %0\n}\n",
		"fun @main(): i32 {\n%entry:\n  %0 = sub 0, -2147483648\n  ret %0\n}\n",
		"fun @f() {\n%entry:\n  ret\n}\n\nfun @main(): i32 {\n%entry:\n  %0 = mul 2, 3\n  %1 = add 1, %0\n  %2 = ne %1, 0\n  ret %2\n}\n",
		"fun @main(): i32 {\n%entry:\n  %x = alloc *i32\n  store 1, %x\n  %0 = load %x\n  br %0, %then, %end\n%then:\n  jump %end\n%end:\n  ret %0\n}\n",
	}
	for _, text := range cases {
		prog := mustParse(t, text)
		if got := prog.String(); got != text {
			t.Errorf("round trip mismatch:\n got: %q\nwant: %q", got, text)
		}
	}
}

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	prog := mustParse(t, "// header\n\nfun @main(): i32 {  // entry point\n%entry:\n\n  ret 1 // done\n}\n")
	fn, ok := prog.Func("@main")
	if !ok {
		t.Fatal("@main not found")
	}
	if !fn.ReturnsValue() || len(fn.Blocks()) != 1 {
		t.Fatalf("unexpected function shape: returns=%v blocks=%d", fn.ReturnsValue(), len(fn.Blocks()))
	}
}

func TestIntegerOccurrencesGetDistinctHandles(t *testing.T) {
	prog := mustParse(t, "fun @main(): i32 {\n%entry:\n  %0 = add 0, 0\n  ret %0\n}\n")
	fn := prog.Funcs()[0]
	bin, ok := fn.Value(fn.Blocks()[0].Insts()[0]).Kind().(Binary)
	if !ok {
		t.Fatal("first instruction is not binary")
	}
	if bin.LHS == bin.RHS {
		t.Fatalf("both zero operands share handle %d", bin.LHS)
	}
	if bin.Op != arith.OpAdd {
		t.Fatalf("op = %v, want add", bin.Op)
	}
	if fn.NumValues() != 4 {
		t.Fatalf("NumValues = %d, want 4", fn.NumValues())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
		msg  string
	}{
		{"use before def", "fun @main(): i32 {\n%entry:\n  ret %0\n}\n", 3, "used before definition"},
		{"redefined value", "fun @main(): i32 {\n%entry:\n  %0 = add 1, 2\n  %0 = add 1, 2\n  ret %0\n}\n", 4, "redefined"},
		{"unknown op", "fun @main(): i32 {\n%entry:\n  %0 = pow 1, 2\n  ret %0\n}\n", 3, "unknown operator"},
		{"unknown label", "fun @main(): i32 {\n%entry:\n  jump %nowhere\n}\n", 3, "unknown block label"},
		{"inst before label", "fun @main(): i32 {\n  ret 0\n}\n", 2, "outside of a basic block"},
		{"after terminator", "fun @main(): i32 {\n%entry:\n  ret 0\n  ret 1\n}\n", 4, "after terminator"},
		{"missing terminator", "fun @main(): i32 {\n%entry:\n  %0 = add 1, 2\n}\n", 4, "no terminator"},
		{"unclosed", "fun @main(): i32 {\n%entry:\n  ret 0\n", 4, "not closed"},
		{"bad operand", "fun @main(): i32 {\n%entry:\n  ret 99999999999\n}\n", 3, "bad operand"},
		{"bare ret in i32", "fun @main(): i32 {\n%entry:\n  ret\n}\n", 3, "bare ret"},
		{"params", "fun @f(%a: i32): i32 {\n%entry:\n  ret 0\n}\n", 1, "unsupported function signature"},
		{"stray text", "hello\n", 1, "expected function definition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if perr.Line != tt.line {
				t.Errorf("line = %d, want %d (%v)", perr.Line, tt.line, err)
			}
			if !strings.Contains(perr.Msg, tt.msg) {
				t.Errorf("msg = %q, want substring %q", perr.Msg, tt.msg)
			}
		})
	}
}

func TestEvalReturn(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int32
	}{
		{"literal", "fun @main(): i32 {\n%entry:\n  ret 7\n}\n", 7},
		{"negate", "fun @main(): i32 {\n%entry:\n  %0 = sub 0, 5\n  ret %0\n}\n", -5},
		{"chain", "fun @main(): i32 {\n%entry:\n  %0 = mul 2, 3\n  %1 = add 1, %0\n  %2 = le %1, 7\n  ret %2\n}\n", 1},
		{"min int", "fun @main(): i32 {\n%entry:\n  %0 = div -2147483648, -1\n  ret %0\n}\n", -2147483648},
		{"bare ret", "fun @main() {\n%entry:\n  ret\n}\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := mustParse(t, tt.text).Funcs()[0]
			got, err := EvalReturn(fn)
			if err != nil {
				t.Fatalf("EvalReturn: %v", err)
			}
			if got != tt.want {
				t.Fatalf("EvalReturn = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFoldErrors(t *testing.T) {
	fn := mustParse(t, "fun @main(): i32 {\n%entry:\n  %0 = div 1, 0\n  ret %0\n}\n").Funcs()[0]
	if _, err := EvalReturn(fn); !errors.Is(err, arith.ErrDivisionByZero) {
		t.Fatalf("err = %v, want division by zero", err)
	}

	fn = mustParse(t, "fun @main(): i32 {\n%entry:\n  %x = alloc i32\n  %0 = load %x\n  ret %0\n}\n").Funcs()[0]
	_, err := EvalReturn(fn)
	var unsupported *UnsupportedError
	if !errors.As(err, &unsupported) || unsupported.Kind != "load" {
		t.Fatalf("err = %v, want unsupported load", err)
	}
}
