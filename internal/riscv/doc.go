// Package riscv lowers a loaded IR program to RV32IM assembly text.
//
// Only straight-line code is handled: integers, binary operations and
// returns. Registers come from a fixed pool of fifteen names and are never
// reclaimed; a value shared by several users is materialised once through a
// per-function memo.
package riscv
