// Package koopa loads Koopa IR text into a navigable graph:
// program -> functions -> basic blocks -> instructions -> values.
//
// Values are handles into a per-function arena. Every integer operand
// occurrence gets its own handle, so two uses of the literal 3 are two
// distinct values. The loader keeps the IR as written and folds nothing;
// Fold evaluates a value on demand.
package koopa
