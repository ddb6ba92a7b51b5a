package lexer

import (
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"sysyc/internal/diag"
	"sysyc/internal/token"
)

// MaxIntLiteral is the largest literal accepted. It equals 2^31 so that
// -2147483648 can be written.
const MaxIntLiteral = 1 << 31

var ErrLiteralRange = errors.New("integer literal out of range")

// scanNumber handles decimal, octal (leading 0) and hex (0x/0X) literals.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' && (b1 == 'x' || b1 == 'X') {
		lx.cursor.Bump()
		lx.cursor.Bump()
		for isHex(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	} else {
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}
	// 12abc is one malformed literal, not a literal followed by an identifier.
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}

	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	if _, err := ParseIntLiteral(text); err != nil {
		lx.errLex(diag.LexBadNumber, sp, err.Error())
		return token.Token{Kind: token.Invalid, Span: sp, Text: text}
	}
	return token.Token{Kind: token.IntLit, Span: sp, Text: text}
}

// ParseIntLiteral decodes a literal in the lexer's syntax and returns its
// 32-bit pattern. The literal 2147483648 maps to 0x80000000.
func ParseIntLiteral(text string) (uint32, error) {
	base, digits := 10, text
	switch {
	case len(text) > 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X'):
		base, digits = 16, text[2:]
	case len(text) > 1 && text[0] == '0':
		base, digits = 8, text[1:]
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", ErrLiteralRange, text)
		}
		return 0, fmt.Errorf("malformed integer literal %q", text)
	}
	if v > MaxIntLiteral {
		return 0, fmt.Errorf("%w: %s", ErrLiteralRange, text)
	}
	return safecast.Conv[uint32](v)
}
