package token

var keywords = map[string]Kind{
	"int":    KwInt,
	"void":   KwVoid,
	"const":  KwConst,
	"return": KwReturn,
}

// LookupKeyword reports whether ident is a keyword. Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
