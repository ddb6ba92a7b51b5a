package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004

	// syntax
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedParen      Code = 2006
	SynUnclosedBrace      Code = 2007
	SynExpectSemicolon    Code = 2012
	SynUnexpectedTopLevel Code = 2101
	SynExpectIdentifier   Code = 2102
	SynExpectType         Code = 2202
	SynExpectExpression   Code = 2203

	// semantic
	SemaInfo            Code = 3000
	SemaDuplicateSymbol Code = 3002
	SemaUndefinedSymbol Code = 3005
	SemaArithmeticFault Code = 3010
	SemaReturnMismatch  Code = 3011
	SemaMissingReturn   Code = 3012
	SemaUnreachableCode Code = 3013
	SemaDuplicateFunc   Code = 3014

	// io
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	// project
	ProjInfo              Code = 5000
	ProjManifestInvalid   Code = 5001
	ProjToolchainMismatch Code = 5002

	// observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// code generation
	GenInfo                  Code = 8000
	GenUnsupportedConstruct  Code = 8001
	GenRegisterPoolExhausted Code = 8002
	GenMalformedIR           Code = 8003
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Bad number",

	SynInfo:               "Syntax information",
	SynUnexpectedToken:    "Unexpected token",
	SynUnclosedParen:      "Unclosed parenthesis",
	SynUnclosedBrace:      "Unclosed brace",
	SynExpectSemicolon:    "Expected semicolon",
	SynUnexpectedTopLevel: "Unexpected top-level construct",
	SynExpectIdentifier:   "Expected identifier",
	SynExpectType:         "Expected type",
	SynExpectExpression:   "Expected expression",

	SemaInfo:            "Semantic information",
	SemaDuplicateSymbol: "Duplicate symbol",
	SemaUndefinedSymbol: "Undefined symbol",
	SemaArithmeticFault: "Arithmetic fault in constant expression",
	SemaReturnMismatch:  "Return value does not match function type",
	SemaMissingReturn:   "Missing return",
	SemaUnreachableCode: "Unreachable code",
	SemaDuplicateFunc:   "Duplicate function",

	IOLoadFileError:  "Failed to load file",
	IOWriteFileError: "Failed to write file",

	ProjInfo:              "Project information",
	ProjManifestInvalid:   "Invalid project manifest",
	ProjToolchainMismatch: "Toolchain version mismatch",

	ObsInfo:    "Observability information",
	ObsTimings: "Pipeline timings",

	GenInfo:                  "Code generation information",
	GenUnsupportedConstruct:  "Unsupported construct",
	GenRegisterPoolExhausted: "Register pool exhausted",
	GenMalformedIR:           "Malformed IR",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 8000 && ic < 9000:
		return fmt.Sprintf("GEN%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
