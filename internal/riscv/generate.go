package riscv

import (
	"fmt"
	"strings"

	"sysyc/internal/koopa"
	"sysyc/internal/session"
	"sysyc/internal/trace"
)

// Generator owns the output buffer for one program.
type Generator struct {
	ctx *session.Context
	buf strings.Builder
}

type funcGen struct {
	g    *Generator
	fn   *koopa.Function
	name string
	memo map[koopa.Value]Reg
	// cur is the value being generated; nested calls save and restore it.
	cur koopa.Value
}

// Generate emits assembly for every function of prog in layout order.
// Nothing is returned on error.
func Generate(ctx *session.Context, prog *koopa.Program) (string, error) {
	g := &Generator{ctx: ctx}
	g.buf.WriteString("  .text\n")
	for _, fn := range prog.Funcs() {
		fmt.Fprintf(&g.buf, "  .globl %s\n", symbol(fn))
	}
	for _, fn := range prog.Funcs() {
		if err := g.function(fn); err != nil {
			return "", err
		}
	}
	return g.buf.String(), nil
}

func symbol(fn *koopa.Function) string {
	return strings.TrimPrefix(fn.Name(), "@")
}

func (g *Generator) function(fn *koopa.Function) error {
	span := trace.Begin(g.ctx.Tracer, trace.ScopeFunc, "riscv "+fn.Name(), g.ctx.Span)
	fg := &funcGen{
		g:    g,
		fn:   fn,
		name: symbol(fn),
		memo: make(map[koopa.Value]Reg),
	}
	fmt.Fprintf(&g.buf, "%s:\n", fg.name)
	for i, b := range fn.Blocks() {
		if i > 0 {
			fmt.Fprintf(&g.buf, "%s_%s:\n", fg.name, strings.TrimPrefix(b.Name(), "%"))
		}
		for _, v := range b.Insts() {
			if _, err := fg.gen(v); err != nil {
				span.End("error")
				return err
			}
		}
	}
	span.End(fmt.Sprintf("%d values memoised", len(fg.memo)))
	return nil
}

// gen materialises v and returns the register holding it. Returns yield
// Zero.
func (fg *funcGen) gen(v koopa.Value) (Reg, error) {
	prev := fg.cur
	fg.cur = v
	defer func() { fg.cur = prev }()

	data := fg.fn.Value(v)
	if data == nil {
		return Zero, fmt.Errorf("riscv: %s: invalid value handle %d", fg.name, v)
	}
	switch k := data.Kind().(type) {
	case koopa.Integer:
		return fg.integer(k.Value)
	case koopa.Return:
		return Zero, fg.ret(k)
	case koopa.Binary:
		return fg.binary(v, k)
	default:
		return Zero, &UnsupportedError{Kind: data.Kind().KindName(), Func: fg.fn.Name(), Line: data.Line()}
	}
}

func (fg *funcGen) integer(n int32) (Reg, error) {
	if n == 0 {
		return Zero, nil
	}
	r, err := fg.alloc()
	if err != nil {
		return Zero, err
	}
	fmt.Fprintf(&fg.g.buf, "  li %s, %d\n", r, n)
	return r, nil
}

func (fg *funcGen) ret(k koopa.Return) error {
	if k.HasValue() {
		r, err := fg.gen(k.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(&fg.g.buf, "  mv %s, %s\n", A0, r)
	}
	fg.g.buf.WriteString("  ret\n")
	return nil
}

func (fg *funcGen) binary(v koopa.Value, k koopa.Binary) (Reg, error) {
	if r, ok := fg.memo[v]; ok {
		return r, nil
	}
	l, err := fg.gen(k.LHS)
	if err != nil {
		return Zero, err
	}
	r, err := fg.gen(k.RHS)
	if err != nil {
		return Zero, err
	}
	out, err := fg.output(k, l, r)
	if err != nil {
		return Zero, err
	}
	if err := lower(&fg.g.buf, k.Op, out, l, r); err != nil {
		if u, ok := err.(*UnsupportedError); ok {
			u.Func, u.Line = fg.fn.Name(), fg.fn.Value(v).Line()
		}
		return Zero, err
	}
	fg.memo[v] = out
	return out, nil
}

// output picks the destination register. A register holding an inline
// literal is single-use and may be overwritten; x0 never is.
func (fg *funcGen) output(k koopa.Binary, l, r Reg) (Reg, error) {
	switch {
	case l != Zero && r != Zero:
		if fg.isLiteral(k.LHS) {
			return l, nil
		}
		if fg.isLiteral(k.RHS) {
			return r, nil
		}
	case l != Zero:
		if fg.isLiteral(k.LHS) {
			return l, nil
		}
	case r != Zero:
		if fg.isLiteral(k.RHS) {
			return r, nil
		}
	}
	return fg.alloc()
}

func (fg *funcGen) isLiteral(v koopa.Value) bool {
	data := fg.fn.Value(v)
	if data == nil {
		return false
	}
	_, ok := data.Kind().(koopa.Integer)
	return ok
}

func (fg *funcGen) alloc() (Reg, error) {
	r, err := allocate(fg.g.ctx)
	if err != nil {
		return Zero, fg.wrap(err)
	}
	return r, nil
}

func (fg *funcGen) wrap(err error) error {
	data := fg.fn.Value(fg.cur)
	if data == nil {
		return err
	}
	name := data.Name()
	if name == "" {
		name = data.Kind().KindName()
	}
	return &ValueError{Func: fg.fn.Name(), Value: name, Line: data.Line(), Err: err}
}
