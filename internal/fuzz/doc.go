// Package fuzztests houses Go fuzz harnesses for the compilation pipeline:
// lexing, parsing, IR loading and code generation must never panic or hang,
// and a program that compiles must compute the same value in the IR folder
// and on the simulator.
package fuzztests
