package koopa

import (
	"fmt"
	"strconv"
	"strings"
)

type Program struct {
	funcs []*Function
}

// Funcs returns the functions in layout order.
func (p *Program) Funcs() []*Function { return p.funcs }

// Func looks a function up by name, sigil included.
func (p *Program) Func(name string) (*Function, bool) {
	for _, f := range p.funcs {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

type Function struct {
	name       string
	returnsI32 bool
	blocks     []*Block
	values     []ValueData
}

// Name returns the function name with its @ sigil.
func (f *Function) Name() string { return f.name }

// ReturnsValue reports whether the function is declared `: i32`.
func (f *Function) ReturnsValue() bool { return f.returnsI32 }

// Blocks returns the basic blocks in layout order.
func (f *Function) Blocks() []*Block { return f.blocks }

// Value returns the data behind handle v, or nil for an unknown handle.
func (f *Function) Value(v Value) *ValueData {
	if !v.IsValid() || int(v) > len(f.values) {
		return nil
	}
	return &f.values[v-1]
}

// NumValues is the size of the value arena, inline integers included.
func (f *Function) NumValues() int { return len(f.values) }

func (f *Function) newValue(name string, kind Kind, line int) Value {
	f.values = append(f.values, ValueData{name: name, kind: kind, line: line})
	return Value(len(f.values))
}

type Block struct {
	name  string
	insts []Value
}

// Name returns the label with its % sigil.
func (b *Block) Name() string { return b.name }

// Insts returns the instructions in layout order.
func (b *Block) Insts() []Value { return b.insts }

// String renders the program back to IR text in the emitter's layout.
func (p *Program) String() string {
	var sb strings.Builder
	for i, f := range p.funcs {
		if i > 0 {
			sb.WriteString("\n")
		}
		f.write(&sb)
	}
	return sb.String()
}

func (f *Function) write(sb *strings.Builder) {
	if f.returnsI32 {
		fmt.Fprintf(sb, "fun %s(): i32 {\n", f.name)
	} else {
		fmt.Fprintf(sb, "fun %s() {\n", f.name)
	}
	for _, b := range f.blocks {
		sb.WriteString(b.name + ":\n")
		for _, v := range b.insts {
			sb.WriteString("  " + f.formatInst(v) + "\n")
		}
	}
	sb.WriteString("}\n")
}

func (f *Function) operand(v Value) string {
	data := f.Value(v)
	if data == nil {
		return "<invalid>"
	}
	if i, ok := data.kind.(Integer); ok {
		return strconv.Itoa(int(i.Value))
	}
	return data.name
}

func (f *Function) formatInst(v Value) string {
	data := f.Value(v)
	switch k := data.kind.(type) {
	case Binary:
		return fmt.Sprintf("%s = %s %s, %s", data.name, k.Op, f.operand(k.LHS), f.operand(k.RHS))
	case Return:
		if !k.HasValue() {
			return "ret"
		}
		return "ret " + f.operand(k.Value)
	case Alloc:
		return fmt.Sprintf("%s = alloc %s", data.name, k.Type)
	case Load:
		return fmt.Sprintf("%s = load %s", data.name, f.operand(k.Src))
	case Store:
		return fmt.Sprintf("store %s, %s", f.operand(k.Value), f.operand(k.Dest))
	case Jump:
		return "jump " + k.Target.name
	case Branch:
		return fmt.Sprintf("br %s, %s, %s", f.operand(k.Cond), k.True.name, k.False.name)
	}
	return "<" + data.kind.KindName() + ">"
}
