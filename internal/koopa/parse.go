package koopa

import (
	"fmt"
	"strconv"
	"strings"

	"sysyc/internal/arith"
)

// ParseError reports malformed IR at a 1-based line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("koopa: line %d: %s", e.Line, e.Msg)
}

// Parse loads IR text. Values must be defined before use; labels may be
// referenced before their block appears.
func Parse(text string) (*Program, error) {
	p := &loader{prog: &Program{}}
	for i, raw := range strings.Split(text, "\n") {
		p.line = i + 1
		if idx := strings.Index(raw, "//"); idx >= 0 {
			raw = raw[:idx]
		}
		toks := tokenize(raw)
		if len(toks) == 0 {
			continue
		}
		if err := p.statement(toks); err != nil {
			return nil, err
		}
	}
	if p.fn != nil {
		return nil, p.errorf("function %s is not closed", p.fn.name)
	}
	return p.prog, nil
}

type loader struct {
	prog *Program
	line int

	fn     *Function
	block  *Block
	names  map[string]Value
	labels map[string]*labelRef
}

type labelRef struct {
	block   *Block
	defined bool
	line    int
}

func (p *loader) errorf(format string, args ...any) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *loader) statement(toks []string) error {
	if p.fn == nil {
		if toks[0] != "fun" {
			return p.errorf("expected function definition, got %q", toks[0])
		}
		return p.header(toks)
	}
	switch {
	case len(toks) == 1 && toks[0] == "}":
		return p.closeFunc()
	case len(toks) == 2 && toks[1] == ":" && strings.HasPrefix(toks[0], "%"):
		return p.label(toks[0])
	}
	if p.block == nil {
		return p.errorf("instruction outside of a basic block")
	}
	if n := len(p.block.insts); n > 0 && IsTerminator(p.fn.Value(p.block.insts[n-1]).kind) {
		return p.errorf("instruction after terminator in block %s", p.block.name)
	}
	v, err := p.instruction(toks)
	if err != nil {
		return err
	}
	p.block.insts = append(p.block.insts, v)
	return nil
}

// header parses `fun @name(): i32 {` or `fun @name() {`.
func (p *loader) header(toks []string) error {
	if len(toks) < 5 || !strings.HasPrefix(toks[1], "@") || toks[2] != "(" {
		return p.errorf("malformed function header")
	}
	fn := &Function{name: toks[1]}
	if toks[3] != ")" {
		return p.errorf("unsupported function signature for %s; parameters are not supported", fn.name)
	}
	switch rest := toks[4:]; {
	case len(rest) == 1 && rest[0] == "{":
	case len(rest) == 3 && rest[0] == ":" && rest[1] == "i32" && rest[2] == "{":
		fn.returnsI32 = true
	default:
		return p.errorf("unsupported function signature for %s; only i32 results are supported", fn.name)
	}
	if _, dup := p.prog.Func(fn.name); dup {
		return p.errorf("function %s redefined", fn.name)
	}
	p.fn = fn
	p.block = nil
	p.names = make(map[string]Value)
	p.labels = make(map[string]*labelRef)
	return nil
}

func (p *loader) label(name string) error {
	ref := p.labelFor(name)
	if ref.defined {
		return p.errorf("block %s redefined", name)
	}
	if p.block != nil && !p.blockTerminated() {
		return p.errorf("block %s has no terminator", p.block.name)
	}
	ref.defined = true
	p.block = ref.block
	p.fn.blocks = append(p.fn.blocks, ref.block)
	return nil
}

func (p *loader) labelFor(name string) *labelRef {
	ref, ok := p.labels[name]
	if !ok {
		ref = &labelRef{block: &Block{name: name}, line: p.line}
		p.labels[name] = ref
	}
	return ref
}

func (p *loader) blockTerminated() bool {
	n := len(p.block.insts)
	return n > 0 && IsTerminator(p.fn.Value(p.block.insts[n-1]).kind)
}

func (p *loader) closeFunc() error {
	if len(p.fn.blocks) == 0 {
		return p.errorf("function %s has no basic blocks", p.fn.name)
	}
	if !p.blockTerminated() {
		return p.errorf("block %s has no terminator", p.block.name)
	}
	for name, ref := range p.labels {
		if !ref.defined {
			return &ParseError{Line: ref.line, Msg: fmt.Sprintf("unknown block label %s", name)}
		}
	}
	p.prog.funcs = append(p.prog.funcs, p.fn)
	p.fn, p.block = nil, nil
	return nil
}

func (p *loader) instruction(toks []string) (Value, error) {
	if len(toks) >= 3 && toks[1] == "=" {
		return p.binding(toks[0], toks[2:])
	}
	switch toks[0] {
	case "ret":
		switch len(toks) {
		case 1:
			if p.fn.returnsI32 {
				return NoValue, p.errorf("bare ret in function %s returning i32", p.fn.name)
			}
			return p.fn.newValue("", Return{}, p.line), nil
		case 2:
			if !p.fn.returnsI32 {
				return NoValue, p.errorf("ret with a value in unit function %s", p.fn.name)
			}
			v, err := p.operand(toks[1])
			if err != nil {
				return NoValue, err
			}
			return p.fn.newValue("", Return{Value: v}, p.line), nil
		}
	case "store":
		ops, err := p.operands(toks[1:], 2)
		if err != nil {
			return NoValue, err
		}
		return p.fn.newValue("", Store{Value: ops[0], Dest: ops[1]}, p.line), nil
	case "jump":
		if len(toks) == 2 && strings.HasPrefix(toks[1], "%") {
			return p.fn.newValue("", Jump{Target: p.labelFor(toks[1]).block}, p.line), nil
		}
	case "br":
		if len(toks) == 6 && toks[2] == "," && toks[4] == "," {
			cond, err := p.operand(toks[1])
			if err != nil {
				return NoValue, err
			}
			br := Branch{Cond: cond, True: p.labelFor(toks[3]).block, False: p.labelFor(toks[5]).block}
			return p.fn.newValue("", br, p.line), nil
		}
	default:
		return NoValue, p.errorf("unknown instruction %q", toks[0])
	}
	return NoValue, p.errorf("malformed %s instruction", toks[0])
}

// binding parses the right-hand side of `%name = ...`.
func (p *loader) binding(name string, rhs []string) (Value, error) {
	if !strings.HasPrefix(name, "%") {
		return NoValue, p.errorf("bad value name %q", name)
	}
	if _, dup := p.names[name]; dup {
		return NoValue, p.errorf("value %s redefined", name)
	}

	var kind Kind
	switch op := rhs[0]; op {
	case "alloc":
		if len(rhs) < 2 {
			return NoValue, p.errorf("malformed alloc")
		}
		kind = Alloc{Type: strings.Join(rhs[1:], "")}
	case "load":
		ops, err := p.operands(rhs[1:], 1)
		if err != nil {
			return NoValue, err
		}
		kind = Load{Src: ops[0]}
	default:
		binop, ok := arith.LookupOp(op)
		if !ok {
			return NoValue, p.errorf("unknown operator %q", op)
		}
		ops, err := p.operands(rhs[1:], 2)
		if err != nil {
			return NoValue, err
		}
		kind = Binary{Op: binop, LHS: ops[0], RHS: ops[1]}
	}
	v := p.fn.newValue(name, kind, p.line)
	p.names[name] = v
	return v, nil
}

// operands parses want comma-separated operands.
func (p *loader) operands(toks []string, want int) ([]Value, error) {
	if len(toks) != 2*want-1 {
		return nil, p.errorf("expected %d operand(s)", want)
	}
	out := make([]Value, 0, want)
	for i := 0; i < len(toks); i += 2 {
		if i > 0 && toks[i-1] != "," {
			return nil, p.errorf("expected ',' between operands")
		}
		v, err := p.operand(toks[i])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// operand resolves a name or materialises a fresh integer value.
func (p *loader) operand(tok string) (Value, error) {
	if strings.HasPrefix(tok, "%") || strings.HasPrefix(tok, "@") {
		v, ok := p.names[tok]
		if !ok {
			return NoValue, p.errorf("value %s used before definition", tok)
		}
		return v, nil
	}
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return NoValue, p.errorf("bad operand %q", tok)
	}
	return p.fn.newValue("", Integer{Value: int32(n)}, p.line), nil
}

// tokenize splits a line into names, numbers and single punctuation.
func tokenize(line string) []string {
	var toks []string
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case strings.IndexByte("(){}:,=*", c) >= 0:
			toks = append(toks, line[i:i+1])
			i++
		default:
			j := i
			for j < len(line) && strings.IndexByte(" \t\r(){}:,=*", line[j]) < 0 {
				j++
			}
			toks = append(toks, line[i:j])
			i = j
		}
	}
	return toks
}
