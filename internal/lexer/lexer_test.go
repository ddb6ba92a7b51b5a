package lexer_test

import (
	"errors"
	"testing"

	"sysyc/internal/diag"
	"sysyc/internal/lexer"
	"sysyc/internal/source"
	"sysyc/internal/token"
)

func makeTestLexer(input string) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.sy", []byte(input)))
	bag := diag.NewBag(16)
	return lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}}), bag
}

func collectKinds(lx *lexer.Lexer) []token.Kind {
	var kinds []token.Kind
	for {
		tok := lx.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			return kinds
		}
	}
}

func expectKinds(t *testing.T, input string, want ...token.Kind) {
	t.Helper()
	lx, bag := makeTestLexer(input)
	got := collectKinds(lx)
	want = append(want, token.EOF)
	if len(got) != len(want) {
		t.Fatalf("%q: got %v, want %v", input, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: token %d = %v, want %v", input, i, got[i], want[i])
		}
	}
	if bag.Len() != 0 {
		t.Fatalf("%q: unexpected diagnostics: %v", input, bag.Items())
	}
}


func TestFunctionHeader(t *testing.T) {
	expectKinds(t, "int main() { return 0; }",
		token.KwInt, token.Ident, token.LParen, token.RParen, token.LBrace,
		token.KwReturn, token.IntLit, token.Semicolon, token.RBrace)
}

func TestOperatorsGreedy(t *testing.T) {
	expectKinds(t, "<= >= == != && || < > = ! + - * / %",
		token.LtEq, token.GtEq, token.EqEq, token.BangEq, token.AndAnd, token.OrOr,
		token.Lt, token.Gt, token.Assign, token.Bang,
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent)
}

func TestCommentsAreSkipped(t *testing.T) {
	expectKinds(t, "const // line\n int /* block\n * more */ x = 1, y;",
		token.KwConst, token.KwInt, token.Ident, token.Assign, token.IntLit,
		token.Comma, token.Ident, token.Semicolon)
}

func TestDivisionIsNotComment(t *testing.T) {
	expectKinds(t, "6/2", token.IntLit, token.Slash, token.IntLit)
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("return x")
	if p := lx.Peek(); p.Kind != token.KwReturn {
		t.Fatalf("Peek = %v", p.Kind)
	}
	if p := lx.Peek(); p.Kind != token.KwReturn {
		t.Fatalf("second Peek = %v", p.Kind)
	}
	if n := lx.Next(); n.Kind != token.KwReturn {
		t.Fatalf("Next = %v", n.Kind)
	}
	if n := lx.Next(); n.Kind != token.Ident || n.Text != "x" {
		t.Fatalf("Next = %v %q", n.Kind, n.Text)
	}
	for range 3 {
		if n := lx.Next(); n.Kind != token.EOF {
			t.Fatalf("after end got %v", n.Kind)
		}
	}
}

func TestSpans(t *testing.T) {
	lx, _ := makeTestLexer("  abc 12")
	id := lx.Next()
	if id.Span.Start != 2 || id.Span.End != 5 {
		t.Errorf("ident span = %v", id.Span)
	}
	num := lx.Next()
	if num.Span.Start != 6 || num.Span.End != 8 || num.Text != "12" {
		t.Errorf("number = %+v", num)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diag.Code
	}{
		{"unknown char", "int @", diag.LexUnknownChar},
		{"unterminated comment", "/* never closed", diag.LexUnterminatedBlockComment},
		{"literal too large", "2147483649", diag.LexBadNumber},
		{"bad octal", "09", diag.LexBadNumber},
		{"empty hex", "0x", diag.LexBadNumber},
		{"suffix", "12abc", diag.LexBadNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, bag := makeTestLexer(tt.input)
			collectKinds(lx)
			if bag.Len() != 1 {
				t.Fatalf("diagnostics = %d, want 1", bag.Len())
			}
			if got := bag.Items()[0].Code; got != tt.code {
				t.Errorf("code = %v, want %v", got.ID(), tt.code.ID())
			}
		})
	}
}

func TestParseIntLiteral(t *testing.T) {
	tests := []struct {
		text string
		want uint32
	}{
		{"0", 0},
		{"7", 7},
		{"017", 15},
		{"0x1F", 31},
		{"0XfF", 255},
		{"2147483647", 2147483647},
		{"2147483648", 0x80000000},
	}
	for _, tt := range tests {
		got, err := lexer.ParseIntLiteral(tt.text)
		if err != nil {
			t.Errorf("ParseIntLiteral(%q): %v", tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseIntLiteral(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
	if _, err := lexer.ParseIntLiteral("99999999999999999999999"); !errors.Is(err, lexer.ErrLiteralRange) {
		t.Errorf("huge literal err = %v", err)
	}
}

func TestTokenize(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.sy", []byte("return 1;")))
	toks := lexer.Tokenize(file, lexer.Options{})
	if len(toks) != 4 || toks[3].Kind != token.EOF {
		t.Fatalf("tokens = %v", toks)
	}
}
