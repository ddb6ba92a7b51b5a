package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// IntLit represents an integer literal (decimal, octal or hex).
	IntLit

	// KwInt represents the 'int' keyword.
	KwInt // int
	// KwVoid represents the 'void' keyword.
	KwVoid // void
	// KwConst represents the 'const' keyword.
	KwConst // const
	// KwReturn represents the 'return' keyword.
	KwReturn // return

	Plus    // +
	Minus   // -
	Star    // *
	Slash   // /
	Percent // %
	Assign  // =
	Bang    // !
	EqEq    // ==
	BangEq  // !=
	Lt      // <
	LtEq    // <=
	Gt      // >
	GtEq    // >=
	AndAnd  // &&
	OrOr    // ||

	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	Semicolon // ;
	Comma     // ,
)

var kindNames = [...]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Ident:     "Ident",
	IntLit:    "IntLit",
	KwInt:     "int",
	KwVoid:    "void",
	KwConst:   "const",
	KwReturn:  "return",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	Percent:   "%",
	Assign:    "=",
	Bang:      "!",
	EqEq:      "==",
	BangEq:    "!=",
	Lt:        "<",
	LtEq:      "<=",
	Gt:        ">",
	GtEq:      ">=",
	AndAnd:    "&&",
	OrOr:      "||",
	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	Semicolon: ";",
	Comma:     ",",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}
