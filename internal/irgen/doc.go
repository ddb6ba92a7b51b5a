// Package irgen lowers the AST of a compilation unit to Koopa IR text.
//
// Every function becomes a single %entry block. Literals stay inline as
// operands; each non-trivial operation binds one fresh virtual name taken
// from the session Context, operands first. Constant declarations are folded
// into the symbol table and never reach the instruction stream.
package irgen
