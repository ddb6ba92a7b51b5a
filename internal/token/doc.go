// Package token defines lexical token kinds for the SysY front end.
// Invariants:
//   - Token.Text is exactly the source bytes covered by Token.Span.
//   - Comments and whitespace never appear in the token stream.
//   - Type names (int, void) are keywords, not identifiers.
package token
