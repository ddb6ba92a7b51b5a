package koopa

import (
	"fmt"

	"sysyc/internal/arith"
)

// UnsupportedError reports a value kind that an evaluator cannot handle.
type UnsupportedError struct {
	Kind string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported value kind %s", e.Kind)
}

// Fold evaluates v with the shared integer semantics. Only integers and
// binary operations fold.
func Fold(fn *Function, v Value) (int32, error) {
	return folder{fn: fn, memo: make(map[Value]int32)}.fold(v)
}

type folder struct {
	fn   *Function
	memo map[Value]int32
}

func (f folder) fold(v Value) (int32, error) {
	if r, ok := f.memo[v]; ok {
		return r, nil
	}
	data := f.fn.Value(v)
	if data == nil {
		return 0, fmt.Errorf("koopa: invalid value handle %d", v)
	}
	var r int32
	switch k := data.kind.(type) {
	case Integer:
		r = k.Value
	case Binary:
		l, err := f.fold(k.LHS)
		if err != nil {
			return 0, err
		}
		rr, err := f.fold(k.RHS)
		if err != nil {
			return 0, err
		}
		r, err = arith.Apply(k.Op, l, rr)
		if err != nil {
			return 0, fmt.Errorf("koopa: line %d: %w", data.line, err)
		}
	default:
		return 0, &UnsupportedError{Kind: data.kind.KindName()}
	}
	f.memo[v] = r
	return r, nil
}

// EvalReturn folds the operand of the terminator of fn's entry block.
// A bare ret yields 0.
func EvalReturn(fn *Function) (int32, error) {
	blocks := fn.Blocks()
	if len(blocks) == 0 {
		return 0, fmt.Errorf("koopa: function %s has no blocks", fn.Name())
	}
	insts := blocks[0].Insts()
	last := fn.Value(insts[len(insts)-1])
	ret, ok := last.kind.(Return)
	if !ok {
		return 0, &UnsupportedError{Kind: last.kind.KindName()}
	}
	if !ret.HasValue() {
		return 0, nil
	}
	return Fold(fn, ret.Value)
}
