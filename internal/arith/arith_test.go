package arith

import (
	"errors"
	"math"
	"testing"
)

func TestTruncatingDivisionLaw(t *testing.T) {
	values := []int32{0, 1, -1, 2, -2, 3, -3, 7, -7, 100, -100, 12345, -98765,
		math.MaxInt32, math.MinInt32, math.MaxInt32 - 1, math.MinInt32 + 1}
	for _, a := range values {
		for _, b := range values {
			if b == 0 {
				continue
			}
			q, err := Div(a, b)
			if err != nil {
				t.Fatalf("Div(%d, %d): %v", a, b, err)
			}
			r, err := Rem(a, b)
			if err != nil {
				t.Fatalf("Rem(%d, %d): %v", a, b, err)
			}
			if q*b+r != a {
				t.Errorf("(%d / %d) * %d + (%d %% %d) = %d, want %d", a, b, b, a, b, q*b+r, a)
			}
			if r != 0 && (r < 0) != (a < 0) {
				t.Errorf("%d %% %d = %d: sign differs from dividend", a, b, r)
			}
			if a != math.MinInt32 || b != -1 {
				if want := int32(int64(a) / int64(b)); q != want {
					t.Errorf("%d / %d = %d, want %d", a, b, q, want)
				}
			}
		}
	}
}

func TestDivisionEdgeCases(t *testing.T) {
	tests := []struct {
		l, r int32
		div  int32
		rem  int32
	}{
		{7, 2, 3, 1},
		{-7, 2, -3, -1},
		{7, -2, -3, 1},
		{-7, -2, 3, -1},
		{math.MinInt32, -1, math.MinInt32, 0},
	}
	for _, tt := range tests {
		if got, _ := Div(tt.l, tt.r); got != tt.div {
			t.Errorf("Div(%d, %d) = %d, want %d", tt.l, tt.r, got, tt.div)
		}
		if got, _ := Rem(tt.l, tt.r); got != tt.rem {
			t.Errorf("Rem(%d, %d) = %d, want %d", tt.l, tt.r, got, tt.rem)
		}
	}
	if _, err := Div(1, 0); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Div by zero err = %v", err)
	}
	if _, err := Apply(OpMod, 1, 0); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("mod by zero err = %v", err)
	}
}

func TestApplyWrapsAndCompares(t *testing.T) {
	tests := []struct {
		op   Op
		l, r int32
		want int32
	}{
		{OpAdd, math.MaxInt32, 1, math.MinInt32},
		{OpSub, math.MinInt32, 1, math.MaxInt32},
		{OpMul, 65536, 65536, 0},
		{OpLt, -1, 0, 1},
		{OpGe, -1, 0, 0},
		{OpLe, 3, 3, 1},
		{OpNe, 3, 3, 0},
		{OpAnd, 6, 3, 2},
		{OpOr, 4, 1, 5},
		{OpShr, -1, 28, 15},
		{OpSar, -16, 2, -4},
		{OpShl, 1, 33, 2},
	}
	for _, tt := range tests {
		got, err := Apply(tt.op, tt.l, tt.r)
		if err != nil || got != tt.want {
			t.Errorf("%s(%d, %d) = %d, %v; want %d", tt.op, tt.l, tt.r, got, err, tt.want)
		}
	}
}

func TestLogicalNormalises(t *testing.T) {
	if LogicalAnd(2, 4) != 1 || LogicalAnd(2, 0) != 0 {
		t.Error("LogicalAnd")
	}
	if LogicalOr(0, -5) != 1 || LogicalOr(0, 0) != 0 {
		t.Error("LogicalOr")
	}
	if Not(0) != 1 || Not(9) != 0 || Neg(math.MinInt32) != math.MinInt32 {
		t.Error("unary")
	}
}

func TestLookupOp(t *testing.T) {
	for op := OpAdd; op <= OpSar; op++ {
		got, ok := LookupOp(op.String())
		if !ok || got != op {
			t.Errorf("LookupOp(%q) = %v, %v", op.String(), got, ok)
		}
	}
	if _, ok := LookupOp("bogus"); ok {
		t.Error("bogus op found")
	}
}
