package riscv

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"sysyc/internal/koopa"
	"sysyc/internal/session"
)

func load(t *testing.T, ir string) *koopa.Program {
	t.Helper()
	prog, err := koopa.Parse(ir)
	if err != nil {
		t.Fatalf("koopa.Parse: %v", err)
	}
	return prog
}

func mainIR(body ...string) string {
	var sb strings.Builder
	sb.WriteString("fun @main(): i32 {\n%entry:\n")
	for _, line := range body {
		sb.WriteString("  " + line + "\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

func mainAsm(lines ...string) string {
	var sb strings.Builder
	sb.WriteString("  .text\n  .globl main\nmain:\n")
	for _, line := range lines {
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		ir   string
		want string
	}{
		{
			name: "literal return",
			ir:   mainIR("ret 7"),
			want: mainAsm("li t0, 7", "mv a0, t0", "ret"),
		},
		{
			name: "unary negate reuses literal register",
			ir:   mainIR("%0 = sub 0, 5", "ret %0"),
			want: mainAsm("li t0, 5", "sub t0, x0, t0", "mv a0, t0", "ret"),
		},
		{
			name: "zero is free",
			ir:   mainIR("ret 0"),
			want: mainAsm("mv a0, x0", "ret"),
		},
		{
			name: "literal operands reuse lhs",
			ir:   mainIR("%0 = add 3, 4", "ret %0"),
			want: mainAsm("li t0, 3", "li t1, 4", "add t0, t0, t1", "mv a0, t0", "ret"),
		},
		{
			name: "rhs literal reused when lhs is computed",
			ir:   mainIR("%0 = mul 2, 3", "%1 = add %0, 1", "ret %1"),
			want: mainAsm("li t0, 2", "li t1, 3", "mul t0, t0, t1", "li t2, 1", "add t2, t0, t2", "mv a0, t2", "ret"),
		},
		{
			name: "two computed operands allocate fresh",
			ir:   mainIR("%0 = add 1, 2", "%1 = add 3, 4", "%2 = mul %0, %1", "ret %2"),
			want: mainAsm(
				"li t0, 1", "li t1, 2", "add t0, t0, t1",
				"li t2, 3", "li t3, 4", "add t2, t2, t3",
				"mul t4, t0, t2", "mv a0, t4", "ret",
			),
		},
		{
			name: "both operands zero allocate fresh",
			ir:   mainIR("%0 = add 0, 0", "ret %0"),
			want: mainAsm("add t0, x0, x0", "mv a0, t0", "ret"),
		},
		{
			name: "zero side with computed other side",
			ir:   mainIR("%0 = add 1, 2", "%1 = eq %0, 0", "ret %1"),
			want: mainAsm("li t0, 1", "li t1, 2", "add t0, t0, t1", "xor t2, t0, x0", "seqz t2, t2", "mv a0, t2", "ret"),
		},
		{
			name: "normalise to bool",
			ir:   mainIR("%0 = ne 5, 0", "ret %0"),
			want: mainAsm("li t0, 5", "xor t0, t0, x0", "snez t0, t0", "mv a0, t0", "ret"),
		},
		{
			name: "le and ge",
			ir:   mainIR("%0 = le 1, 2", "%1 = ge %0, 3", "ret %1"),
			want: mainAsm("li t0, 1", "li t1, 2", "sgt t0, t0, t1", "seqz t0, t0", "li t2, 3", "slt t2, t0, t2", "seqz t2, t2", "mv a0, t2", "ret"),
		},
		{
			name: "mod lowers to rem",
			ir:   mainIR("%0 = mod 7, 3", "ret %0"),
			want: mainAsm("li t0, 7", "li t1, 3", "rem t0, t0, t1", "mv a0, t0", "ret"),
		},
		{
			name: "shifts",
			ir:   mainIR("%0 = shl 1, 4", "%1 = sar %0, 2", "ret %1"),
			want: mainAsm("li t0, 1", "li t1, 4", "sll t0, t0, t1", "li t2, 2", "sra t2, t0, t2", "mv a0, t2", "ret"),
		},
		{
			name: "shared value generated once",
			ir:   mainIR("%0 = add 1, 2", "%1 = mul %0, %0", "ret %1"),
			want: mainAsm("li t0, 1", "li t1, 2", "add t0, t0, t1", "mul t2, t0, t0", "mv a0, t2", "ret"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(session.New(), load(t, tt.ir))
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got != tt.want {
				t.Fatalf("asm mismatch:\n got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestGenerateFunctionsShareRegisterCounter(t *testing.T) {
	ir := "fun @f(): i32 {\n%entry:\n  ret 1\n}\n\nfun @main(): i32 {\n%entry:\n  ret 2\n}\n"
	want := "  .text\n  .globl f\n  .globl main\nf:\n  li t0, 1\n  mv a0, t0\n  ret\nmain:\n  li t1, 2\n  mv a0, t1\n  ret\n"
	ctx := session.New()
	got, err := Generate(ctx, load(t, ir))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != want {
		t.Fatalf("asm mismatch:\n got:\n%s\nwant:\n%s", got, want)
	}
	if ctx.RegistersIssued() != 2 {
		t.Fatalf("RegistersIssued = %d, want 2", ctx.RegistersIssued())
	}

	again, err := Generate(session.New(), load(t, ir))
	if err != nil || again != want {
		t.Fatalf("fresh context produced different output (err %v)", err)
	}
}

func TestGenerateVoidReturn(t *testing.T) {
	got, err := Generate(session.New(), load(t, "fun @main() {\n%entry:\n  ret\n}\n"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if want := mainAsm("ret"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMemoIdempotence(t *testing.T) {
	prog := load(t, mainIR("%0 = add 1, 2", "ret %0"))
	fn := prog.Funcs()[0]
	g := &Generator{ctx: session.New()}
	fg := &funcGen{g: g, fn: fn, name: "main", memo: make(map[koopa.Value]Reg)}
	shared := fn.Blocks()[0].Insts()[0]

	first, err := fg.gen(shared)
	if err != nil {
		t.Fatalf("gen: %v", err)
	}
	before := g.buf.String()
	second, err := fg.gen(shared)
	if err != nil {
		t.Fatalf("gen: %v", err)
	}
	if first != second {
		t.Fatalf("second gen returned %s, want %s", second, first)
	}
	if g.buf.String() != before {
		t.Fatalf("second gen emitted %q", strings.TrimPrefix(g.buf.String(), before))
	}
}

func TestZeroNeverLoads(t *testing.T) {
	fg := &funcGen{g: &Generator{ctx: session.New()}, memo: make(map[koopa.Value]Reg)}
	r, err := fg.integer(0)
	if err != nil {
		t.Fatalf("integer: %v", err)
	}
	if r != Zero || r.String() != "x0" {
		t.Fatalf("integer(0) = %s, want x0", r)
	}
	if fg.g.buf.Len() != 0 || fg.g.ctx.RegistersIssued() != 0 {
		t.Fatalf("zero emitted %q and used %d registers", fg.g.buf.String(), fg.g.ctx.RegistersIssued())
	}
}

func TestRegisterPoolExhausted(t *testing.T) {
	var body []string
	prev := ""
	for i := 0; i < 8; i++ {
		body = append(body, fmt.Sprintf("%%%d = add %d, %d", i, 2*i+1, 2*i+2))
	}
	for i := 0; i < 7; i++ {
		if prev == "" {
			prev = "%0"
		}
		name := fmt.Sprintf("%%s%d", i)
		body = append(body, fmt.Sprintf("%s = add %s, %%%d", name, prev, i+1))
		prev = name
	}
	body = append(body, "ret "+prev)

	_, err := Generate(session.New(), load(t, mainIR(body...)))
	if !errors.Is(err, ErrRegisterPoolExhausted) {
		t.Fatalf("err = %v, want ErrRegisterPoolExhausted", err)
	}
	var verr *ValueError
	if !errors.As(err, &verr) || verr.Func != "@main" || verr.Line == 0 {
		t.Fatalf("err = %#v, want *ValueError in @main with a line", err)
	}
}

func TestUnsupportedConstruct(t *testing.T) {
	tests := []struct {
		name string
		ir   string
		kind string
	}{
		{"alloc", mainIR("%x = alloc i32", "ret 0"), "alloc"},
		{"jump", "fun @main(): i32 {\n%entry:\n  jump %next\n%next:\n  ret 0\n}\n", "jump"},
		{"branch", "fun @main(): i32 {\n%entry:\n  br 1, %a, %b\n%a:\n  ret 1\n%b:\n  ret 0\n}\n", "branch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Generate(session.New(), load(t, tt.ir))
			var uerr *UnsupportedError
			if !errors.As(err, &uerr) {
				t.Fatalf("err = %v, want *UnsupportedError", err)
			}
			if uerr.Kind != tt.kind || uerr.Func != "@main" {
				t.Fatalf("got kind %q in %q, want %q in @main", uerr.Kind, uerr.Func, tt.kind)
			}
			if out != "" {
				t.Fatalf("partial output returned: %q", out)
			}
		})
	}
}
